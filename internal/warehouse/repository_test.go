package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
	"github.com/rpalomera/shopmetrics-backend/internal/store"
	"github.com/rpalomera/shopmetrics-backend/pkg/config"
	"github.com/rpalomera/shopmetrics-backend/pkg/db"
	"github.com/rpalomera/shopmetrics-backend/pkg/db/models"
	pkgerrors "github.com/rpalomera/shopmetrics-backend/pkg/errors"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file::memory:",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	))
	return NewRepository(client)
}

func frozenStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()

	_, rej, err := s.LoadProducts([]dataset.Record{{
		"product_id": "1", "name": "Desk Lamp", "category": "Home", "subcategory": "Lighting",
		"price": "45.00", "cost": "27.00", "stock_quantity": "15",
		"supplier": "Brightline", "created_date": "2020-05-01",
	}})
	require.NoError(t, err)
	require.Empty(t, rej)

	_, rej, err = s.LoadCustomers([]dataset.Record{{
		"customer_id": "10", "first_name": "Ana", "last_name": "Reyes",
		"email": "ana.reyes@example.com", "phone": "",
		"address": "12 Cedar Ln", "city": "Austin", "state": "TX", "zip": "78701",
		"country": "USA", "registration_date": "2021-01-05",
	}})
	require.NoError(t, err)
	require.Empty(t, rej)

	_, rej, err = s.LoadOrders([]dataset.Record{{
		"order_id": "100", "customer_id": "10", "order_date": "2022-06-01",
		"status": "Completed", "payment_method": "PayPal",
		"shipping_address": "12 Cedar Ln", "shipping_city": "Austin",
		"shipping_state": "TX", "shipping_zip": "78701", "shipping_country": "USA",
		"total_amount": "90.00",
	}})
	require.NoError(t, err)
	require.Empty(t, rej)

	_, rej, err = s.LoadOrderItems([]dataset.Record{{
		"order_item_id": "1000", "order_id": "100", "product_id": "1",
		"quantity": "2", "unit_price": "45.00", "discount": "0", "line_total": "90.00",
	}})
	require.NoError(t, err)
	require.Empty(t, rej)

	s.Freeze()
	return s
}

func TestPersistSnapshot(t *testing.T) {
	repo := testRepository(t)
	s := frozenStore(t)
	ctx := context.Background()

	require.NoError(t, repo.PersistSnapshot(ctx, s))

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[store.EntityProducts])
	assert.Equal(t, int64(1), counts[store.EntityCustomers])
	assert.Equal(t, int64(1), counts[store.EntityOrders])
	assert.Equal(t, int64(1), counts[store.EntityOrderItems])
	assert.Equal(t, int64(0), counts[store.EntityReviews])
}

func TestPersistSnapshotRequiresFrozenStore(t *testing.T) {
	repo := testRepository(t)
	err := repo.PersistSnapshot(context.Background(), store.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestReset(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.PersistSnapshot(ctx, frozenStore(t)))
	require.NoError(t, repo.Reset(ctx))

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	for table, n := range counts {
		assert.Zero(t, n, table)
	}

	// Reset then persist again: idempotent round trip.
	require.NoError(t, repo.PersistSnapshot(ctx, frozenStore(t)))
	counts, err = repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[store.EntityOrders])
}
