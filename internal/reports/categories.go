package reports

import (
	"sort"

	"github.com/rpalomera/shopmetrics-backend/pkg/money"
)

// CategoryRow summarizes sales and ratings for one product category.
type CategoryRow struct {
	Category          string   `json:"category"`
	TotalRevenue      float64  `json:"total_revenue"`
	TotalUnits        int      `json:"total_units"`
	AvgUnitPrice      float64  `json:"avg_unit_price"`
	AvgRating         *float64 `json:"avg_rating"`
	ProductCount      int      `json:"product_count"`
	RevenuePerProduct float64  `json:"revenue_per_product"`
}

// CategoryPerformance groups completed-order items by product category.
// Averages are weighted: unit price by quantity, rating by per-product review
// count. Categories without a completed sale are omitted; a sold category
// without reviews reports an absent rating.
func (s *Service) CategoryPerformance() []CategoryRow {
	type acc struct {
		revenue     float64
		units       int
		priceWeight float64 // Σ unit_price * quantity
		ratingSum   float64 // Σ rating over the category's reviews
		ratingCount int
		products    map[int64]struct{}
	}

	productCategory := make(map[int64]string)
	for _, p := range s.store.Products() {
		productCategory[p.ID] = p.Category
	}
	completed := make(map[int64]struct{})
	for _, o := range s.store.Orders() {
		if o.IsCompleted() {
			completed[o.ID] = struct{}{}
		}
	}

	byCategory := make(map[string]*acc)
	get := func(category string) *acc {
		a := byCategory[category]
		if a == nil {
			a = &acc{products: make(map[int64]struct{})}
			byCategory[category] = a
		}
		return a
	}

	for _, it := range s.store.OrderItems() {
		if _, ok := completed[it.OrderID]; !ok {
			continue
		}
		a := get(productCategory[it.ProductID])
		a.revenue += it.LineTotal
		a.units += it.Quantity
		a.priceWeight += it.UnitPrice * float64(it.Quantity)
		a.products[it.ProductID] = struct{}{}
	}
	if len(byCategory) == 0 {
		return []CategoryRow{}
	}

	// Ratings join through the product, independent of order status. Only
	// categories that sold something carry an entry at this point.
	for _, rv := range s.store.Reviews() {
		a, ok := byCategory[productCategory[rv.ProductID]]
		if !ok {
			continue
		}
		a.ratingSum += float64(rv.Rating)
		a.ratingCount++
	}

	rows := make([]CategoryRow, 0, len(byCategory))
	for category, a := range byCategory {
		row := CategoryRow{
			Category:          category,
			TotalRevenue:      money.Round2(a.revenue),
			TotalUnits:        a.units,
			AvgUnitPrice:      money.Round2(a.priceWeight / float64(a.units)),
			ProductCount:      len(a.products),
			RevenuePerProduct: money.Round2(a.revenue / float64(len(a.products))),
		}
		if a.ratingCount > 0 {
			avg := money.Round2(a.ratingSum / float64(a.ratingCount))
			row.AvgRating = &avg
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalRevenue != rows[j].TotalRevenue {
			return rows[i].TotalRevenue > rows[j].TotalRevenue
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}
