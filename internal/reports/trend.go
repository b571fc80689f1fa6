package reports

import (
	"time"

	"github.com/rpalomera/shopmetrics-backend/pkg/money"
)

// MonthLayout formats a calendar month key.
const MonthLayout = "2006-01"

// MonthlyTrendRow is one calendar month of completed-order activity.
type MonthlyTrendRow struct {
	Month                string   `json:"month"`
	TotalRevenue         float64  `json:"total_revenue"`
	OrderCount           int      `json:"order_count"`
	UniqueCustomers      int      `json:"unique_customers"`
	AvgOrderValue        *float64 `json:"avg_order_value"`
	MonthOverMonthGrowth *float64 `json:"month_over_month_growth"`
}

// MonthlyTrend covers the trailing twelve calendar months ending at the month
// of the latest completed order, inclusive. Months without orders still
// appear with zero revenue. Growth compares against the immediately preceding
// month in the series and is absent for the first entry and after a
// zero-revenue month.
func (s *Service) MonthlyTrend() []MonthlyTrendRow {
	type acc struct {
		revenue   float64
		orders    int
		customers map[int64]struct{}
	}

	byMonth := make(map[string]*acc)
	var maxDate time.Time
	for _, o := range s.store.Orders() {
		if !o.IsCompleted() {
			continue
		}
		if o.OrderDate.After(maxDate) {
			maxDate = o.OrderDate
		}
		key := o.OrderDate.Format(MonthLayout)
		a := byMonth[key]
		if a == nil {
			a = &acc{customers: make(map[int64]struct{})}
			byMonth[key] = a
		}
		a.revenue += o.TotalAmount
		a.orders++
		a.customers[o.CustomerID] = struct{}{}
	}
	if len(byMonth) == 0 {
		return []MonthlyTrendRow{}
	}

	end := time.Date(maxDate.Year(), maxDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	rows := make([]MonthlyTrendRow, 0, 12)
	var prevRevenue float64
	for i := 11; i >= 0; i-- {
		month := end.AddDate(0, -i, 0)
		key := month.Format(MonthLayout)
		row := MonthlyTrendRow{Month: key}
		if a := byMonth[key]; a != nil {
			row.TotalRevenue = money.Round2(a.revenue)
			row.OrderCount = a.orders
			row.UniqueCustomers = len(a.customers)
			avg := money.Round2(a.revenue / float64(a.orders))
			row.AvgOrderValue = &avg

			if i < 11 && prevRevenue > 0 {
				growth := money.Round2((a.revenue - prevRevenue) / prevRevenue * 100)
				row.MonthOverMonthGrowth = &growth
			}
			prevRevenue = a.revenue
		} else {
			if i < 11 && prevRevenue > 0 {
				growth := -100.0
				row.MonthOverMonthGrowth = &growth
			}
			prevRevenue = 0
		}
		rows = append(rows, row)
	}
	return rows
}
