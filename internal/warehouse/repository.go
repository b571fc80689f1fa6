// Package warehouse persists a frozen store snapshot to the relational
// database, making the dataset queryable outside the pipeline process.
package warehouse

import (
	"context"

	"gorm.io/gorm"

	"github.com/rpalomera/shopmetrics-backend/internal/store"
	"github.com/rpalomera/shopmetrics-backend/pkg/db"
	"github.com/rpalomera/shopmetrics-backend/pkg/db/models"
	pkgerrors "github.com/rpalomera/shopmetrics-backend/pkg/errors"
)

const batchSize = 500

// Repository writes and reads warehouse tables through the shared client.
type Repository struct {
	client *db.Client
}

// NewRepository wires the warehouse to a connected client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client}
}

// Reset empties every warehouse table, children before parents so the
// restrict rules on customers and products never fire.
func (r *Repository) Reset(ctx context.Context) error {
	tables := []any{
		&models.Review{},
		&models.OrderItem{},
		&models.Order{},
		&models.Customer{},
		&models.Product{},
	}
	return r.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Where("1 = 1").Delete(table).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset warehouse table")
			}
		}
		return nil
	})
}

// PersistSnapshot writes the store's collections inside one transaction,
// parents before children. The store must be frozen first.
func (r *Repository) PersistSnapshot(ctx context.Context, s *store.Store) error {
	if !s.Frozen() {
		return pkgerrors.New(pkgerrors.CodeConflict, "store must be frozen before persisting")
	}
	return r.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createBatch(tx, s.Products()); err != nil {
			return err
		}
		if err := createBatch(tx, s.Customers()); err != nil {
			return err
		}
		if err := createBatch(tx, s.Orders()); err != nil {
			return err
		}
		if err := createBatch(tx, s.OrderItems()); err != nil {
			return err
		}
		return createBatch(tx, s.Reviews())
	})
}

func createBatch[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(rows, batchSize).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist warehouse rows")
	}
	return nil
}

// Counts returns the persisted row count per table.
func (r *Repository) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, 5)
	for table, model := range map[string]any{
		store.EntityProducts:   &models.Product{},
		store.EntityCustomers:  &models.Customer{},
		store.EntityOrders:     &models.Order{},
		store.EntityOrderItems: &models.OrderItem{},
		store.EntityReviews:    &models.Review{},
	} {
		var n int64
		if err := r.client.DB().WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count warehouse rows")
		}
		out[table] = n
	}
	return out, nil
}
