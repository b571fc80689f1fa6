package store

import (
	"fmt"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
)

// Entity kind names, matching the warehouse table names.
const (
	EntityProducts   = "products"
	EntityCustomers  = "customers"
	EntityOrders     = "orders"
	EntityOrderItems = "order_items"
	EntityReviews    = "reviews"
)

// Constraint names carried on rejection reasons.
const (
	ConstraintRequiredField     = "required_field"
	ConstraintUnparseableField  = "unparseable_field"
	ConstraintDuplicateID       = "duplicate_id"
	ConstraintDuplicateEmail    = "duplicate_email"
	ConstraintEmailShape        = "email_shape"
	ConstraintInvalidStatus     = "invalid_status"
	ConstraintInvalidPayment    = "invalid_payment_method"
	ConstraintMarginRange       = "margin_range"
	ConstraintMinBusinessDate   = "min_business_date"
	ConstraintLineTotalMismatch = "line_total_mismatch"
	ConstraintUnknownCustomer   = "unknown_customer"
	ConstraintUnknownOrder      = "unknown_order"
	ConstraintUnknownProduct    = "unknown_product"
)

// Rejection explains why a raw row was refused. The row is never partially
// applied; rejections are accumulated and returned, not thrown per-row.
type Rejection struct {
	Entity     string         `json:"entity"`
	Row        dataset.Record `json:"row"`
	Constraint string         `json:"constraint"`
	Field      string         `json:"field,omitempty"`
	Value      string         `json:"value,omitempty"`
	Detail     string         `json:"detail,omitempty"`
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s: %s (field=%s value=%q): %s", r.Entity, r.Constraint, r.Field, r.Value, r.Detail)
}
