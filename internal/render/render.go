// Package render formats quality reports and aggregation results as aligned
// plain-text sections for the insights file.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rpalomera/shopmetrics-backend/internal/integrity"
	"github.com/rpalomera/shopmetrics-backend/internal/reports"
)

// Absent marks a value with no defined result.
const Absent = "-"

// Insights renders the full report document.
func Insights(rs *reports.ResultSet, qr *integrity.QualityReport) string {
	var b strings.Builder
	b.WriteString("# E-Commerce Insights\n")

	if qr != nil {
		b.WriteString(qualitySection(qr))
	}
	if rs != nil {
		b.WriteString(section(reports.NameTopCustomers, topCustomerTable(rs.TopCustomers)))
		b.WriteString(section(reports.NameCategories, categoryTable(rs.Categories)))
		b.WriteString(section(reports.NameMonthlyTrend, trendTable(rs.MonthlyTrend)))
		b.WriteString(section(reports.NameCohorts, cohortTable(rs.Cohorts)))
		b.WriteString(section(reports.NameRatingImpact, ratingTable(rs.RatingImpact)))
	}
	return b.String()
}

// WriteInsights renders the document to path, creating parent directories.
func WriteInsights(path string, rs *reports.ResultSet, qr *integrity.QualityReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Insights(rs, qr)), 0o644); err != nil {
		return fmt.Errorf("write insights: %w", err)
	}
	return nil
}

func section(name string, body string) string {
	return "\n## " + name + "\n" + body
}

func qualitySection(qr *integrity.QualityReport) string {
	var b strings.Builder
	b.WriteString("\n## data_quality\n")

	entities := make([]string, 0, len(qr.TableCounts))
	for entity := range qr.TableCounts {
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	countRows := make([][]string, 0, len(entities))
	for _, entity := range entities {
		r := qr.DateRanges[entity]
		from, to := Absent, Absent
		if !r.Empty {
			from = r.Min.Format("2006-01-02")
			to = r.Max.Format("2006-01-02")
		}
		countRows = append(countRows, []string{entity, strconv.Itoa(qr.TableCounts[entity]), from, to})
	}
	b.WriteString(table([]string{"table", "rows", "min_date", "max_date"}, countRows))

	checkRows := make([][]string, 0, len(qr.Checks))
	for _, c := range qr.Checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		checkRows = append(checkRows, []string{c.Name, status, orAbsent(c.Detail)})
	}
	b.WriteString("\n")
	b.WriteString(table([]string{"check", "status", "detail"}, checkRows))

	if len(qr.Anomalies) > 0 {
		anomalyRows := make([][]string, 0, len(qr.Anomalies))
		for _, a := range qr.Anomalies {
			anomalyRows = append(anomalyRows, []string{a.Rule, a.Entity, strconv.FormatInt(a.EntityID, 10), a.Detail})
		}
		b.WriteString("\n")
		b.WriteString(table([]string{"anomaly", "entity", "id", "detail"}, anomalyRows))
	}
	return b.String()
}

func topCustomerTable(rows []reports.TopCustomerRow) string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		favorite := Absent
		if r.FavoriteCategory != nil {
			favorite = *r.FavoriteCategory
		}
		out = append(out, []string{
			strconv.FormatInt(r.CustomerID, 10), r.Name, float2(r.TotalRevenue),
			strconv.Itoa(r.OrderCount), float2(r.AvgOrderValue),
			strconv.Itoa(r.CustomerTenureDays), favorite,
		})
	}
	return table([]string{"customer_id", "name", "total_revenue", "order_count", "avg_order_value", "tenure_days", "favorite_category"}, out)
}

func categoryTable(rows []reports.CategoryRow) string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Category, float2(r.TotalRevenue), strconv.Itoa(r.TotalUnits),
			float2(r.AvgUnitPrice), floatPtr2(r.AvgRating),
			strconv.Itoa(r.ProductCount), float2(r.RevenuePerProduct),
		})
	}
	return table([]string{"category", "total_revenue", "total_units", "avg_unit_price", "avg_rating", "product_count", "revenue_per_product"}, out)
}

func trendTable(rows []reports.MonthlyTrendRow) string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Month, float2(r.TotalRevenue), strconv.Itoa(r.OrderCount),
			strconv.Itoa(r.UniqueCustomers), floatPtr2(r.AvgOrderValue),
			floatPtr2(r.MonthOverMonthGrowth),
		})
	}
	return table([]string{"month", "total_revenue", "order_count", "unique_customers", "avg_order_value", "growth_pct"}, out)
}

func cohortTable(rows []reports.CohortRow) string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Cohort, strconv.Itoa(r.CustomerCount), strconv.Itoa(r.Purchasers),
			float2(r.PurchaseRate), float2(r.TotalRevenue),
			float2(r.AvgOrdersPerCustomer), float2(r.AvgRevenuePerCustomer),
		})
	}
	return table([]string{"cohort", "customers", "purchasers", "purchase_rate", "total_revenue", "avg_orders", "avg_revenue"}, out)
}

func ratingTable(rows []reports.RatingImpactRow) string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Bucket, strconv.Itoa(r.ProductCount), float2(r.AvgUnitsSold),
			float2(r.AvgRevenuePerProduct), float2(r.TotalRevenue),
		})
	}
	return table([]string{"rating_bucket", "product_count", "avg_units_sold", "avg_revenue_per_product", "total_revenue"}, out)
}

// table renders rows under a header with every column left-aligned and padded
// to its widest cell.
func table(header []string, rows [][]string) string {
	if len(rows) == 0 {
		return "(no rows)\n"
	}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
			}
		}
		b.WriteString("\n")
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func float2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func floatPtr2(v *float64) string {
	if v == nil {
		return Absent
	}
	return float2(*v)
}

func orAbsent(v string) string {
	if v == "" {
		return Absent
	}
	return v
}
