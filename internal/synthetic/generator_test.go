package synthetic

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
	"github.com/rpalomera/shopmetrics-backend/internal/store"
)

func smallOptions() Options {
	return Options{Seed: 7, Products: 30, Customers: 40, Orders: 120}
}

func TestGenerateIsDeterministic(t *testing.T) {
	first := Generate(smallOptions())
	second := Generate(smallOptions())
	assert.Equal(t, first, second)

	third := Generate(Options{Seed: 8, Products: 30, Customers: 40, Orders: 120})
	assert.NotEqual(t, first.Orders, third.Orders)
}

func TestGenerateHonorsConstraints(t *testing.T) {
	d := Generate(smallOptions())
	require.Len(t, d.Products, 30)
	require.Len(t, d.Customers, 40)
	require.Len(t, d.Orders, 120)
	require.NotEmpty(t, d.OrderItems)

	for _, p := range d.Products {
		m := p.Margin()
		assert.GreaterOrEqual(t, m, 0.20, "product %d", p.ID)
		assert.LessOrEqual(t, m, 0.50, "product %d", p.ID)
		assert.Greater(t, p.Price, p.Cost)
	}

	registration := make(map[int64]string)
	for _, c := range d.Customers {
		registration[c.ID] = c.RegistrationDate.Format(dataset.DateLayout)
	}
	for _, o := range d.Orders {
		assert.False(t, o.OrderDate.Before(dataset.MinBusinessDate))
		assert.GreaterOrEqual(t, o.OrderDate.Format(dataset.DateLayout), registration[o.CustomerID])
	}

	for _, it := range d.OrderItems {
		expected := float64(it.Quantity) * it.UnitPrice * (1 - it.Discount)
		assert.Less(t, math.Abs(it.LineTotal-expected), 0.01, "order item %d", it.ID)
	}

	for _, rv := range d.Reviews {
		assert.GreaterOrEqual(t, rv.Rating, 1)
		assert.LessOrEqual(t, rv.Rating, 5)
	}
}

func TestGeneratedCSVsLoadCleanly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "synthetic")
	require.NoError(t, WriteCSVs(dir, Generate(smallOptions())))

	s := store.New()
	read := func(name string) []dataset.Record {
		rows, err := dataset.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return rows
	}

	_, rej, err := s.LoadProducts(read(dataset.ProductsFile))
	require.NoError(t, err)
	assert.Empty(t, rej)

	_, rej, err = s.LoadCustomers(read(dataset.CustomersFile))
	require.NoError(t, err)
	assert.Empty(t, rej)

	_, rej, err = s.LoadOrders(read(dataset.OrdersFile))
	require.NoError(t, err)
	assert.Empty(t, rej)

	_, rej, err = s.LoadOrderItems(read(dataset.OrderItemsFile))
	require.NoError(t, err)
	assert.Empty(t, rej)

	_, rej, err = s.LoadReviews(read(dataset.ReviewsFile))
	require.NoError(t, err)
	assert.Empty(t, rej)

	counts := s.Counts()
	assert.Equal(t, 30, counts[store.EntityProducts])
	assert.Equal(t, 120, counts[store.EntityOrders])
}
