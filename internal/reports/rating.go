package reports

import (
	"github.com/rpalomera/shopmetrics-backend/pkg/money"
)

// Rating buckets, ascending. The last bucket is closed on both ends.
var ratingBuckets = []string{"1.0-1.9", "2.0-2.9", "3.0-3.9", "4.0-5.0"}

// RatingImpactRow correlates one average-rating bucket with sales volume.
type RatingImpactRow struct {
	Bucket               string  `json:"rating_bucket"`
	ProductCount         int     `json:"product_count"`
	AvgUnitsSold         float64 `json:"avg_units_sold"`
	AvgRevenuePerProduct float64 `json:"avg_revenue_per_product"`
	TotalRevenue         float64 `json:"total_revenue"`
}

// RatingImpact buckets reviewed products by their mean rating and sums their
// completed-order sales. Products without a review are excluded, not bucketed.
// Buckets with no products are omitted; the rest come back ascending.
func (s *Service) RatingImpact() []RatingImpactRow {
	type productAcc struct {
		ratingSum   float64
		ratingCount int
		units       int
		revenue     float64
	}

	byProduct := make(map[int64]*productAcc)
	get := func(id int64) *productAcc {
		a := byProduct[id]
		if a == nil {
			a = &productAcc{}
			byProduct[id] = a
		}
		return a
	}

	for _, rv := range s.store.Reviews() {
		a := get(rv.ProductID)
		a.ratingSum += float64(rv.Rating)
		a.ratingCount++
	}

	completed := make(map[int64]struct{})
	for _, o := range s.store.Orders() {
		if o.IsCompleted() {
			completed[o.ID] = struct{}{}
		}
	}
	for _, it := range s.store.OrderItems() {
		if _, ok := completed[it.OrderID]; !ok {
			continue
		}
		a := get(it.ProductID)
		a.units += it.Quantity
		a.revenue += it.LineTotal
	}

	type bucketAcc struct {
		products int
		units    int
		revenue  float64
	}
	buckets := make(map[string]*bucketAcc)
	for _, a := range byProduct {
		if a.ratingCount == 0 {
			continue
		}
		key := bucketFor(a.ratingSum / float64(a.ratingCount))
		b := buckets[key]
		if b == nil {
			b = &bucketAcc{}
			buckets[key] = b
		}
		b.products++
		b.units += a.units
		b.revenue += a.revenue
	}

	rows := make([]RatingImpactRow, 0, len(ratingBuckets))
	for _, key := range ratingBuckets {
		b, ok := buckets[key]
		if !ok {
			continue
		}
		rows = append(rows, RatingImpactRow{
			Bucket:               key,
			ProductCount:         b.products,
			AvgUnitsSold:         money.Round2(float64(b.units) / float64(b.products)),
			AvgRevenuePerProduct: money.Round2(b.revenue / float64(b.products)),
			TotalRevenue:         money.Round2(b.revenue),
		})
	}
	return rows
}

func bucketFor(avg float64) string {
	switch {
	case avg < 2:
		return ratingBuckets[0]
	case avg < 3:
		return ratingBuckets[1]
	case avg < 4:
		return ratingBuckets[2]
	default:
		return ratingBuckets[3]
	}
}
