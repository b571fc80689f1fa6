package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
	pkgerrors "github.com/rpalomera/shopmetrics-backend/pkg/errors"
)

func productRow(overrides map[string]string) dataset.Record {
	rec := dataset.Record{
		"product_id":     "1",
		"name":           "Trail Backpack",
		"category":       "Outdoors",
		"subcategory":    "Packs",
		"price":          "120.00",
		"cost":           "72.00",
		"stock_quantity": "40",
		"supplier":       "Summit Supply Co",
		"created_date":   "2021-03-14",
	}
	for k, v := range overrides {
		rec[k] = v
	}
	return rec
}

func customerRow(overrides map[string]string) dataset.Record {
	rec := dataset.Record{
		"customer_id":       "10",
		"first_name":        "Ana",
		"last_name":         "Reyes",
		"email":             "ana.reyes@example.com",
		"phone":             "555-0110",
		"address":           "12 Cedar Ln",
		"city":              "Austin",
		"state":             "TX",
		"zip":               "78701",
		"country":           "USA",
		"registration_date": "2021-01-05",
	}
	for k, v := range overrides {
		rec[k] = v
	}
	return rec
}

func orderRow(overrides map[string]string) dataset.Record {
	rec := dataset.Record{
		"order_id":         "100",
		"customer_id":      "10",
		"order_date":       "2022-06-01",
		"status":           "Completed",
		"payment_method":   "Credit Card",
		"shipping_address": "12 Cedar Ln",
		"shipping_city":    "Austin",
		"shipping_state":   "TX",
		"shipping_zip":     "78701",
		"shipping_country": "USA",
		"total_amount":     "120.00",
	}
	for k, v := range overrides {
		rec[k] = v
	}
	return rec
}

func itemRow(overrides map[string]string) dataset.Record {
	rec := dataset.Record{
		"order_item_id": "1000",
		"order_id":      "100",
		"product_id":    "1",
		"quantity":      "2",
		"unit_price":    "60.00",
		"discount":      "0",
		"line_total":    "120.00",
	}
	for k, v := range overrides {
		rec[k] = v
	}
	return rec
}

func reviewRow(overrides map[string]string) dataset.Record {
	rec := dataset.Record{
		"review_id":   "5000",
		"product_id":  "1",
		"customer_id": "10",
		"rating":      "4",
		"review_text": "Solid pack.",
		"review_date": "2022-07-01",
	}
	for k, v := range overrides {
		rec[k] = v
	}
	return rec
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := New()

	_, rej, err := s.LoadProducts([]dataset.Record{productRow(nil)})
	require.NoError(t, err)
	require.Empty(t, rej)

	_, rej, err = s.LoadCustomers([]dataset.Record{customerRow(nil)})
	require.NoError(t, err)
	require.Empty(t, rej)

	_, rej, err = s.LoadOrders([]dataset.Record{orderRow(nil)})
	require.NoError(t, err)
	require.Empty(t, rej)

	return s
}

func TestLoadProducts(t *testing.T) {
	t.Run("accepts a valid row", func(t *testing.T) {
		s := New()
		accepted, rejected, err := s.LoadProducts([]dataset.Record{productRow(nil)})
		require.NoError(t, err)
		assert.Empty(t, rejected)
		require.Len(t, accepted, 1)
		assert.Equal(t, int64(1), accepted[0].ID)
		assert.Equal(t, "Outdoors", accepted[0].Category)
	})

	t.Run("rejects missing required field", func(t *testing.T) {
		s := New()
		accepted, rejected, err := s.LoadProducts([]dataset.Record{productRow(map[string]string{"name": ""})})
		require.NoError(t, err)
		assert.Empty(t, accepted)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintRequiredField, rejected[0].Constraint)
		assert.Equal(t, "name", rejected[0].Field)
	})

	t.Run("rejects unparseable price", func(t *testing.T) {
		s := New()
		_, rejected, err := s.LoadProducts([]dataset.Record{productRow(map[string]string{"price": "twelve"})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintUnparseableField, rejected[0].Constraint)
	})

	t.Run("rejects nonpositive price", func(t *testing.T) {
		s := New()
		_, rejected, err := s.LoadProducts([]dataset.Record{productRow(map[string]string{"price": "0"})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, "price_gt", rejected[0].Constraint)
	})

	t.Run("rejects cost at or above price", func(t *testing.T) {
		s := New()
		_, rejected, err := s.LoadProducts([]dataset.Record{productRow(map[string]string{"cost": "120.00"})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, "cost_ltfield", rejected[0].Constraint)
	})

	t.Run("rejects margin outside window", func(t *testing.T) {
		s := New()
		// cost 110 on price 120 puts margin near 0.08
		_, rejected, err := s.LoadProducts([]dataset.Record{productRow(map[string]string{"cost": "110.00"})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintMarginRange, rejected[0].Constraint)
	})

	t.Run("rejects duplicate id and keeps the first row", func(t *testing.T) {
		s := New()
		accepted, rejected, err := s.LoadProducts([]dataset.Record{
			productRow(nil),
			productRow(map[string]string{"name": "Trail Backpack v2"}),
		})
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintDuplicateID, rejected[0].Constraint)

		p, err := s.Product(1)
		require.NoError(t, err)
		assert.Equal(t, "Trail Backpack", p.Name)
	})
}

func TestLoadCustomers(t *testing.T) {
	t.Run("rejects malformed email", func(t *testing.T) {
		s := New()
		_, rejected, err := s.LoadCustomers([]dataset.Record{customerRow(map[string]string{"email": "not-an-email"})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintEmailShape, rejected[0].Constraint)
	})

	t.Run("rejects duplicate email across rows", func(t *testing.T) {
		s := New()
		accepted, rejected, err := s.LoadCustomers([]dataset.Record{
			customerRow(nil),
			customerRow(map[string]string{"customer_id": "11"}),
		})
		require.NoError(t, err)
		require.Len(t, accepted, 1)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintDuplicateEmail, rejected[0].Constraint)
	})

	t.Run("blank phone stays optional", func(t *testing.T) {
		s := New()
		accepted, rejected, err := s.LoadCustomers([]dataset.Record{customerRow(map[string]string{"phone": ""})})
		require.NoError(t, err)
		assert.Empty(t, rejected)
		require.Len(t, accepted, 1)
		assert.Nil(t, accepted[0].Phone)
	})
}

func TestLoadOrders(t *testing.T) {
	t.Run("rejects unknown customer", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadOrders([]dataset.Record{orderRow(map[string]string{
			"order_id":    "101",
			"customer_id": "999",
		})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintUnknownCustomer, rejected[0].Constraint)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadOrders([]dataset.Record{orderRow(map[string]string{
			"order_id": "101",
			"status":   "Shipped",
		})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintInvalidStatus, rejected[0].Constraint)
	})

	t.Run("rejects order before the business epoch", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadOrders([]dataset.Record{orderRow(map[string]string{
			"order_id":   "101",
			"order_date": "2019-12-31",
		})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintMinBusinessDate, rejected[0].Constraint)
	})

	t.Run("order before registration still loads", func(t *testing.T) {
		// Soft rule: the integrity validator reports it, the store accepts it.
		s := seededStore(t)
		accepted, rejected, err := s.LoadOrders([]dataset.Record{orderRow(map[string]string{
			"order_id":   "101",
			"order_date": "2020-06-01",
		})})
		require.NoError(t, err)
		assert.Empty(t, rejected)
		assert.Len(t, accepted, 1)
	})
}

func TestLoadOrderItems(t *testing.T) {
	t.Run("accepts a consistent line", func(t *testing.T) {
		s := seededStore(t)
		accepted, rejected, err := s.LoadOrderItems([]dataset.Record{itemRow(nil)})
		require.NoError(t, err)
		assert.Empty(t, rejected)
		require.Len(t, accepted, 1)
		assert.InDelta(t, 120.0, accepted[0].LineTotal, 0.001)
	})

	t.Run("accepts a line within the cent tolerance", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadOrderItems([]dataset.Record{itemRow(map[string]string{
			"line_total": "120.005",
		})})
		require.NoError(t, err)
		assert.Empty(t, rejected)
	})

	t.Run("rejects a diverging line total", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadOrderItems([]dataset.Record{itemRow(map[string]string{
			"line_total": "119.00",
		})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintLineTotalMismatch, rejected[0].Constraint)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadOrderItems([]dataset.Record{itemRow(map[string]string{
			"quantity":   "0",
			"line_total": "0",
		})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, "quantity_gt", rejected[0].Constraint)
	})

	t.Run("rejects unknown order and product", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadOrderItems([]dataset.Record{
			itemRow(map[string]string{"order_item_id": "1001", "order_id": "999"}),
			itemRow(map[string]string{"order_item_id": "1002", "product_id": "999"}),
		})
		require.NoError(t, err)
		require.Len(t, rejected, 2)
		assert.Equal(t, ConstraintUnknownOrder, rejected[0].Constraint)
		assert.Equal(t, ConstraintUnknownProduct, rejected[1].Constraint)
	})
}

func TestLoadReviews(t *testing.T) {
	t.Run("rejects out-of-range rating", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadReviews([]dataset.Record{reviewRow(map[string]string{"rating": "6"})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, "rating_lte", rejected[0].Constraint)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		s := seededStore(t)
		_, rejected, err := s.LoadReviews([]dataset.Record{reviewRow(map[string]string{"product_id": "999"})})
		require.NoError(t, err)
		require.Len(t, rejected, 1)
		assert.Equal(t, ConstraintUnknownProduct, rejected[0].Constraint)
	})

	t.Run("blank review text stays optional", func(t *testing.T) {
		s := seededStore(t)
		accepted, rejected, err := s.LoadReviews([]dataset.Record{reviewRow(map[string]string{"review_text": ""})})
		require.NoError(t, err)
		assert.Empty(t, rejected)
		require.Len(t, accepted, 1)
		assert.Nil(t, accepted[0].ReviewText)
	})
}

func TestFreeze(t *testing.T) {
	s := seededStore(t)
	assert.False(t, s.Frozen())

	s.Freeze()
	assert.True(t, s.Frozen())

	_, _, err := s.LoadProducts([]dataset.Record{productRow(map[string]string{"product_id": "2"})})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestGetters(t *testing.T) {
	s := seededStore(t)

	c, err := s.Customer(10)
	require.NoError(t, err)
	assert.Equal(t, "Ana Reyes", c.DisplayName())

	_, err = s.Customer(999)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSnapshotsAreCopies(t *testing.T) {
	s := seededStore(t)

	orders := s.Orders()
	require.Len(t, orders, 1)
	orders[0].TotalAmount = -1

	again := s.Orders()
	assert.InDelta(t, 120.0, again[0].TotalAmount, 0.001)

	counts := s.Counts()
	assert.Equal(t, 1, counts[EntityProducts])
	assert.Equal(t, 1, counts[EntityCustomers])
	assert.Equal(t, 1, counts[EntityOrders])
	assert.Equal(t, 0, counts[EntityOrderItems])
}
