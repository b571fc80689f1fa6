package integrity

import "time"

// Check names attached to the quality report. The reference checks are fatal
// when they fail; the business-rule checks only downgrade to FAIL and emit
// anomalies.
const (
	CheckOrdersReferenceCustomers  = "orders_reference_customers"
	CheckItemsReferenceOrders      = "order_items_reference_orders"
	CheckItemsReferenceProducts    = "order_items_reference_products"
	CheckReviewsReferenceProducts  = "reviews_reference_products"
	CheckReviewsReferenceCustomers = "reviews_reference_customers"
	CheckProductMargins            = "product_margins_in_range"
	CheckLineTotals                = "line_totals_consistent"
	CheckOrdersAfterRegistration   = "orders_after_registration"
	CheckReviewsAfterPurchase      = "reviews_follow_purchase"
)

// Anomaly rule identifiers.
const (
	RuleOrderBeforeRegistration = "order_before_registration"
	RuleReviewBeforePurchase    = "review_before_purchase"
	RuleReviewWithoutPurchase   = "review_without_purchase"
	RuleMarginOutOfRange        = "margin_out_of_range"
	RuleLineTotalMismatch       = "line_total_mismatch"
)

// Anomaly is a non-blocking business-rule violation on an accepted entity.
type Anomaly struct {
	Rule     string `json:"rule"`
	Entity   string `json:"entity"`
	EntityID int64  `json:"entity_id"`
	Detail   string `json:"detail"`
}

// Check is one named verification with its outcome.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DateRange spans the observed dates of one collection. Empty is set when the
// collection has no rows.
type DateRange struct {
	Min   time.Time `json:"min"`
	Max   time.Time `json:"max"`
	Empty bool      `json:"empty"`
}

// QualityReport summarizes the post-load state of the dataset.
type QualityReport struct {
	TableCounts map[string]int       `json:"table_counts"`
	DateRanges  map[string]DateRange `json:"date_ranges"`
	Checks      []Check              `json:"checks"`
	Anomalies   []Anomaly            `json:"anomalies"`
}

// Passed reports whether every check passed.
func (r *QualityReport) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}
