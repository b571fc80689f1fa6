package reports

import (
	"sort"
	"time"

	"github.com/rpalomera/shopmetrics-backend/pkg/money"
)

// TopCustomerRow ranks one customer by completed-order revenue.
type TopCustomerRow struct {
	CustomerID         int64   `json:"customer_id"`
	Name               string  `json:"name"`
	TotalRevenue       float64 `json:"total_revenue"`
	OrderCount         int     `json:"order_count"`
	AvgOrderValue      float64 `json:"avg_order_value"`
	CustomerTenureDays int     `json:"customer_tenure_days"`
	FavoriteCategory   *string `json:"favorite_category"`
}

// TopCustomers ranks customers by summed completed-order revenue, descending,
// capped at limit. Customers with no completed orders do not appear.
func (s *Service) TopCustomers(limit int) []TopCustomerRow {
	type acc struct {
		revenue     float64
		orders      int
		first, last time.Time
	}
	byCustomer := make(map[int64]*acc)
	completedOrders := make(map[int64]int64) // order id -> customer id

	for _, o := range s.store.Orders() {
		if !o.IsCompleted() {
			continue
		}
		completedOrders[o.ID] = o.CustomerID
		a := byCustomer[o.CustomerID]
		if a == nil {
			a = &acc{first: o.OrderDate, last: o.OrderDate}
			byCustomer[o.CustomerID] = a
		}
		a.revenue += o.TotalAmount
		a.orders++
		if o.OrderDate.Before(a.first) {
			a.first = o.OrderDate
		}
		if o.OrderDate.After(a.last) {
			a.last = o.OrderDate
		}
	}
	if len(byCustomer) == 0 {
		return []TopCustomerRow{}
	}

	// Spend per category per customer, completed items only.
	productCategory := make(map[int64]string)
	for _, p := range s.store.Products() {
		productCategory[p.ID] = p.Category
	}
	categorySpend := make(map[int64]map[string]float64)
	for _, it := range s.store.OrderItems() {
		customerID, ok := completedOrders[it.OrderID]
		if !ok {
			continue
		}
		spend := categorySpend[customerID]
		if spend == nil {
			spend = make(map[string]float64)
			categorySpend[customerID] = spend
		}
		spend[productCategory[it.ProductID]] += it.LineTotal
	}

	rows := make([]TopCustomerRow, 0, len(byCustomer))
	for _, c := range s.store.Customers() {
		a, ok := byCustomer[c.ID]
		if !ok {
			continue
		}
		rows = append(rows, TopCustomerRow{
			CustomerID:         c.ID,
			Name:               c.DisplayName(),
			TotalRevenue:       money.Round2(a.revenue),
			OrderCount:         a.orders,
			AvgOrderValue:      money.Round2(a.revenue / float64(a.orders)),
			CustomerTenureDays: dayDiff(a.first, a.last),
			FavoriteCategory:   favoriteCategory(categorySpend[c.ID]),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalRevenue != rows[j].TotalRevenue {
			return rows[i].TotalRevenue > rows[j].TotalRevenue
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// favoriteCategory picks the category with the highest spend, ties broken by
// name ascending. Nil when the customer bought nothing line-item-wise.
func favoriteCategory(spend map[string]float64) *string {
	var best string
	var bestSpend float64
	found := false
	for name, total := range spend {
		switch {
		case !found, total > bestSpend, total == bestSpend && name < best:
			best, bestSpend, found = name, total, true
		}
	}
	if !found {
		return nil
	}
	return &best
}

func dayDiff(first, last time.Time) int {
	return int(last.Sub(first).Hours() / 24)
}
