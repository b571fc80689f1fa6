package reports

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
	"github.com/rpalomera/shopmetrics-backend/internal/store"
	pkgerrors "github.com/rpalomera/shopmetrics-backend/pkg/errors"
)

type fixture struct {
	t         *testing.T
	s         *store.Store
	products  []dataset.Record
	customers []dataset.Record
	orders    []dataset.Record
	items     []dataset.Record
	reviews   []dataset.Record
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, s: store.New()}
}

func (f *fixture) product(id int64, category string, price, cost float64) {
	f.products = append(f.products, dataset.Record{
		"product_id":     fmt.Sprint(id),
		"name":           fmt.Sprintf("Product %d", id),
		"category":       category,
		"subcategory":    "General",
		"price":          fmt.Sprintf("%.2f", price),
		"cost":           fmt.Sprintf("%.2f", cost),
		"stock_quantity": "10",
		"supplier":       "Acme Wholesale",
		"created_date":   "2020-06-01",
	})
}

func (f *fixture) customer(id int64, registered string) {
	f.customers = append(f.customers, dataset.Record{
		"customer_id":       fmt.Sprint(id),
		"first_name":        "Customer",
		"last_name":         fmt.Sprint(id),
		"email":             fmt.Sprintf("customer%d@example.com", id),
		"phone":             "",
		"address":           "1 Main St",
		"city":              "Austin",
		"state":             "TX",
		"zip":               "78701",
		"country":           "USA",
		"registration_date": registered,
	})
}

func (f *fixture) order(id, customerID int64, date, status string, total float64) {
	f.orders = append(f.orders, dataset.Record{
		"order_id":         fmt.Sprint(id),
		"customer_id":      fmt.Sprint(customerID),
		"order_date":       date,
		"status":           status,
		"payment_method":   "Credit Card",
		"shipping_address": "1 Main St",
		"shipping_city":    "Austin",
		"shipping_state":   "TX",
		"shipping_zip":     "78701",
		"shipping_country": "USA",
		"total_amount":     fmt.Sprintf("%.2f", total),
	})
}

func (f *fixture) item(id, orderID, productID int64, qty int, unitPrice, discount float64) {
	lineTotal := float64(qty) * unitPrice * (1 - discount)
	f.items = append(f.items, dataset.Record{
		"order_item_id": fmt.Sprint(id),
		"order_id":      fmt.Sprint(orderID),
		"product_id":    fmt.Sprint(productID),
		"quantity":      fmt.Sprint(qty),
		"unit_price":    fmt.Sprintf("%.2f", unitPrice),
		"discount":      fmt.Sprintf("%.2f", discount),
		"line_total":    fmt.Sprintf("%.4f", lineTotal),
	})
}

func (f *fixture) review(id, productID, customerID int64, rating int, date string) {
	f.reviews = append(f.reviews, dataset.Record{
		"review_id":   fmt.Sprint(id),
		"product_id":  fmt.Sprint(productID),
		"customer_id": fmt.Sprint(customerID),
		"rating":      fmt.Sprint(rating),
		"review_text": "",
		"review_date": date,
	})
}

func (f *fixture) service(limit int) *Service {
	f.t.Helper()

	_, rej, err := f.s.LoadProducts(f.products)
	require.NoError(f.t, err)
	require.Empty(f.t, rej)

	_, rej, err = f.s.LoadCustomers(f.customers)
	require.NoError(f.t, err)
	require.Empty(f.t, rej)

	_, rej, err = f.s.LoadOrders(f.orders)
	require.NoError(f.t, err)
	require.Empty(f.t, rej)

	_, rej, err = f.s.LoadOrderItems(f.items)
	require.NoError(f.t, err)
	require.Empty(f.t, rej)

	_, rej, err = f.s.LoadReviews(f.reviews)
	require.NoError(f.t, err)
	require.Empty(f.t, rej)

	f.s.Freeze()
	return NewService(f.s, limit)
}

func TestTopCustomersSingleCustomerScenario(t *testing.T) {
	f := newFixture(t)
	f.customer(1, "2023-01-01")
	f.order(100, 1, "2023-02-01", "Completed", 100)
	f.order(101, 1, "2023-03-01", "Completed", 300)
	svc := f.service(1)

	rows := svc.TopCustomers(1)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].CustomerID)
	assert.Equal(t, 400.00, rows[0].TotalRevenue)
	assert.Equal(t, 2, rows[0].OrderCount)
	assert.Equal(t, 200.00, rows[0].AvgOrderValue)
	assert.Equal(t, 28, rows[0].CustomerTenureDays)
	assert.Nil(t, rows[0].FavoriteCategory)
}

func TestTopCustomersRankingAndExclusion(t *testing.T) {
	f := newFixture(t)
	f.product(1, "Electronics", 200, 120)
	f.product(2, "Home", 50, 30)
	f.customer(1, "2022-01-01")
	f.customer(2, "2022-01-01")
	f.customer(3, "2022-01-01") // only a cancelled order
	f.order(100, 1, "2022-03-01", "Completed", 400)
	f.order(101, 2, "2022-03-02", "Completed", 150)
	f.order(102, 3, "2022-03-03", "Cancelled", 900)
	f.item(1000, 100, 1, 2, 200, 0)
	f.item(1001, 101, 2, 3, 50, 0)
	svc := f.service(20)

	rows := svc.TopCustomers(20)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].CustomerID)
	assert.Equal(t, int64(2), rows[1].CustomerID)
	require.NotNil(t, rows[0].FavoriteCategory)
	assert.Equal(t, "Electronics", *rows[0].FavoriteCategory)

	capped := svc.TopCustomers(1)
	require.Len(t, capped, 1)
	assert.Equal(t, int64(1), capped[0].CustomerID)
}

func TestTopCustomersFavoriteCategoryTie(t *testing.T) {
	f := newFixture(t)
	f.product(1, "Home", 100, 60)
	f.product(2, "Apparel", 100, 60)
	f.customer(1, "2022-01-01")
	f.order(100, 1, "2022-03-01", "Completed", 200)
	f.item(1000, 100, 1, 1, 100, 0)
	f.item(1001, 100, 2, 1, 100, 0)
	svc := f.service(20)

	rows := svc.TopCustomers(20)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].FavoriteCategory)
	assert.Equal(t, "Apparel", *rows[0].FavoriteCategory)
}

func TestTopCustomersEmptyStore(t *testing.T) {
	f := newFixture(t)
	svc := f.service(20)
	assert.Empty(t, svc.TopCustomers(20))
}

func TestCategoryPerformance(t *testing.T) {
	f := newFixture(t)
	f.product(1, "Electronics", 100, 60)
	f.product(2, "Electronics", 50, 30)
	f.product(3, "Home", 40, 25)
	f.customer(1, "2022-01-01")
	f.order(100, 1, "2022-03-01", "Completed", 260)
	f.order(101, 1, "2022-03-05", "Cancelled", 40)
	f.item(1000, 100, 1, 2, 100, 0)    // 200.00
	f.item(1001, 100, 2, 1, 50, 0.20)  // 40.00
	f.item(1002, 100, 3, 1, 40, 0.50)  // 20.00
	f.item(1003, 101, 3, 1, 40, 0)     // cancelled, ignored
	f.review(5000, 1, 1, 5, "2022-04-01")
	f.review(5001, 1, 1, 3, "2022-04-02")
	svc := f.service(20)

	rows := svc.CategoryPerformance()
	require.Len(t, rows, 2)

	electronics := rows[0]
	assert.Equal(t, "Electronics", electronics.Category)
	assert.Equal(t, 240.00, electronics.TotalRevenue)
	assert.Equal(t, 3, electronics.TotalUnits)
	// (100*2 + 50*1) / 3
	assert.Equal(t, 83.33, electronics.AvgUnitPrice)
	assert.Equal(t, 2, electronics.ProductCount)
	assert.Equal(t, 120.00, electronics.RevenuePerProduct)
	require.NotNil(t, electronics.AvgRating)
	assert.Equal(t, 4.00, *electronics.AvgRating)

	home := rows[1]
	assert.Equal(t, "Home", home.Category)
	assert.Equal(t, 20.00, home.TotalRevenue)
	assert.Nil(t, home.AvgRating)

	// Conservation: category revenue sums to completed line totals.
	var total float64
	for _, r := range rows {
		total += r.TotalRevenue
	}
	assert.InDelta(t, 260.00, total, 0.001)
}

func TestMonthlyTrendWindow(t *testing.T) {
	f := newFixture(t)
	f.customer(1, "2021-01-01")
	f.order(100, 1, "2022-01-15", "Completed", 100)
	f.order(101, 1, "2022-02-10", "Completed", 150)
	f.order(102, 1, "2022-12-20", "Completed", 50)
	f.order(103, 1, "2022-12-25", "Processing", 999) // not counted
	svc := f.service(20)

	rows := svc.MonthlyTrend()
	require.Len(t, rows, 12)
	assert.Equal(t, "2022-01", rows[0].Month)
	assert.Equal(t, "2022-12", rows[11].Month)

	assert.Equal(t, 100.00, rows[0].TotalRevenue)
	assert.Nil(t, rows[0].MonthOverMonthGrowth)

	require.NotNil(t, rows[1].MonthOverMonthGrowth)
	assert.Equal(t, 50.00, *rows[1].MonthOverMonthGrowth)

	// March had no orders: zero revenue, -100% against February.
	assert.Equal(t, 0.00, rows[2].TotalRevenue)
	assert.Equal(t, 0, rows[2].OrderCount)
	assert.Nil(t, rows[2].AvgOrderValue)
	require.NotNil(t, rows[2].MonthOverMonthGrowth)
	assert.Equal(t, -100.00, *rows[2].MonthOverMonthGrowth)

	// April follows a zero-revenue month: growth is absent.
	assert.Nil(t, rows[3].MonthOverMonthGrowth)

	assert.Equal(t, 50.00, rows[11].TotalRevenue)
	assert.Equal(t, 1, rows[11].OrderCount)
	assert.Equal(t, 1, rows[11].UniqueCustomers)
}

func TestMonthlyTrendEmpty(t *testing.T) {
	f := newFixture(t)
	f.customer(1, "2021-01-01")
	f.order(100, 1, "2022-01-15", "Cancelled", 100)
	svc := f.service(20)
	assert.Empty(t, svc.MonthlyTrend())
}

func TestCohorts(t *testing.T) {
	f := newFixture(t)
	f.customer(1, "2022-01-10")
	f.customer(2, "2022-01-20") // never buys
	f.customer(3, "2022-03-05")
	f.order(100, 1, "2022-02-01", "Completed", 100)
	f.order(101, 1, "2022-02-15", "Completed", 60)
	f.order(102, 3, "2022-04-01", "Returned", 75) // not completed
	svc := f.service(20)

	rows := svc.Cohorts()
	require.Len(t, rows, 2)

	jan := rows[0]
	assert.Equal(t, "2022-01", jan.Cohort)
	assert.Equal(t, 2, jan.CustomerCount)
	assert.Equal(t, 1, jan.Purchasers)
	assert.Equal(t, 50.00, jan.PurchaseRate)
	assert.Equal(t, 160.00, jan.TotalRevenue)
	// Per-capita: denominators include the non-purchaser.
	assert.Equal(t, 1.00, jan.AvgOrdersPerCustomer)
	assert.Equal(t, 80.00, jan.AvgRevenuePerCustomer)

	march := rows[1]
	assert.Equal(t, "2022-03", march.Cohort)
	assert.Equal(t, 1, march.CustomerCount)
	assert.Equal(t, 0, march.Purchasers)
	assert.Equal(t, 0.00, march.PurchaseRate)
	assert.Equal(t, 0.00, march.TotalRevenue)
}

func TestRatingImpact(t *testing.T) {
	f := newFixture(t)
	f.product(1, "Electronics", 100, 60) // avg rating 4.5
	f.product(2, "Electronics", 50, 30)  // avg rating 2.0
	f.product(3, "Home", 40, 25)         // no reviews, excluded
	f.customer(1, "2022-01-01")
	f.order(100, 1, "2022-03-01", "Completed", 330)
	f.item(1000, 100, 1, 2, 100, 0) // 200.00
	f.item(1001, 100, 2, 2, 50, 0)  // 100.00
	f.item(1002, 100, 3, 1, 40, 0)  // reviewed by nobody
	f.review(5000, 1, 1, 4, "2022-04-01")
	f.review(5001, 1, 1, 5, "2022-04-02")
	f.review(5002, 2, 1, 2, "2022-04-03")
	svc := f.service(20)

	rows := svc.RatingImpact()
	require.Len(t, rows, 2)

	assert.Equal(t, "2.0-2.9", rows[0].Bucket)
	assert.Equal(t, 1, rows[0].ProductCount)
	assert.Equal(t, 100.00, rows[0].TotalRevenue)
	assert.Equal(t, 2.00, rows[0].AvgUnitsSold)

	assert.Equal(t, "4.0-5.0", rows[1].Bucket)
	assert.Equal(t, 1, rows[1].ProductCount)
	assert.Equal(t, 200.00, rows[1].TotalRevenue)
	assert.Equal(t, 200.00, rows[1].AvgRevenuePerProduct)
}

func TestRunRequiresFrozenStore(t *testing.T) {
	svc := NewService(store.New(), 20)
	_, err := svc.Run(context.Background())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRunIsDeterministic(t *testing.T) {
	f := newFixture(t)
	f.product(1, "Electronics", 100, 60)
	f.product(2, "Home", 40, 25)
	f.customer(1, "2022-01-01")
	f.customer(2, "2022-02-01")
	f.order(100, 1, "2022-03-01", "Completed", 240)
	f.order(101, 2, "2022-04-01", "Completed", 40)
	f.item(1000, 100, 1, 2, 100, 0)
	f.item(1001, 100, 2, 1, 40, 0)
	f.item(1002, 101, 2, 1, 40, 0)
	f.review(5000, 1, 1, 4, "2022-05-01")
	svc := f.service(20)

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first.TopCustomers, 2)
	require.Len(t, first.MonthlyTrend, 12)
}
