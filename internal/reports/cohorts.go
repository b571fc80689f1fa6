package reports

import (
	"sort"

	"github.com/rpalomera/shopmetrics-backend/pkg/money"
)

// CohortRow summarizes the customers registered in one calendar month.
type CohortRow struct {
	Cohort                string  `json:"cohort"`
	CustomerCount         int     `json:"customer_count"`
	Purchasers            int     `json:"purchasers"`
	PurchaseRate          float64 `json:"purchase_rate"`
	TotalRevenue          float64 `json:"total_revenue"`
	AvgOrdersPerCustomer  float64 `json:"avg_orders_per_customer"`
	AvgRevenuePerCustomer float64 `json:"avg_revenue_per_customer"`
}

// Cohorts groups every customer, purchaser or not, by registration
// year-month. The per-customer averages divide by the full cohort size, so a
// cohort of window shoppers reports zeros rather than omitting itself.
func (s *Service) Cohorts() []CohortRow {
	type acc struct {
		customers  int
		purchasers map[int64]struct{}
		orders     int
		revenue    float64
	}

	cohortOf := make(map[int64]string)
	byCohort := make(map[string]*acc)
	for _, c := range s.store.Customers() {
		key := c.RegistrationDate.Format(MonthLayout)
		cohortOf[c.ID] = key
		a := byCohort[key]
		if a == nil {
			a = &acc{purchasers: make(map[int64]struct{})}
			byCohort[key] = a
		}
		a.customers++
	}
	if len(byCohort) == 0 {
		return []CohortRow{}
	}

	for _, o := range s.store.Orders() {
		if !o.IsCompleted() {
			continue
		}
		a, ok := byCohort[cohortOf[o.CustomerID]]
		if !ok {
			continue
		}
		a.purchasers[o.CustomerID] = struct{}{}
		a.orders++
		a.revenue += o.TotalAmount
	}

	rows := make([]CohortRow, 0, len(byCohort))
	for cohort, a := range byCohort {
		size := float64(a.customers)
		rows = append(rows, CohortRow{
			Cohort:                cohort,
			CustomerCount:         a.customers,
			Purchasers:            len(a.purchasers),
			PurchaseRate:          money.Round2(float64(len(a.purchasers)) / size * 100),
			TotalRevenue:          money.Round2(a.revenue),
			AvgOrdersPerCustomer:  money.Round2(float64(a.orders) / size),
			AvgRevenuePerCustomer: money.Round2(a.revenue / size),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Cohort < rows[j].Cohort
	})
	return rows
}
