// Package integrity verifies cross-entity consistency of an accepted dataset.
// Referential breaks are fatal and halt the pipeline; business-rule breaks
// are reported as anomalies and do not block aggregation.
package integrity

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/multierr"

	"github.com/rpalomera/shopmetrics-backend/internal/store"
	"github.com/rpalomera/shopmetrics-backend/pkg/db/models"
	pkgerrors "github.com/rpalomera/shopmetrics-backend/pkg/errors"
)

const (
	minMargin          = 0.20
	maxMargin          = 0.50
	lineTotalTolerance = 0.01
)

type purchaseKey struct {
	customerID int64
	productID  int64
}

// Validate scans the store's snapshots after loading completes. It returns a
// quality report, or a fatal consistency error when any entity references a
// parent that does not exist. The store's load-time checks make such orphans
// unreachable through normal ingestion; the scan guards snapshots arriving by
// any other path.
func Validate(s *store.Store) (*QualityReport, error) {
	products := s.Products()
	customers := s.Customers()
	orders := s.Orders()
	items := s.OrderItems()
	reviews := s.Reviews()

	productIDs := make(map[int64]struct{}, len(products))
	for _, p := range products {
		productIDs[p.ID] = struct{}{}
	}
	customerIDs := make(map[int64]struct{}, len(customers))
	registration := make(map[int64]time.Time, len(customers))
	for _, c := range customers {
		customerIDs[c.ID] = struct{}{}
		registration[c.ID] = c.RegistrationDate
	}
	orderByID := make(map[int64]models.Order, len(orders))
	for _, o := range orders {
		orderByID[o.ID] = o
	}

	report := &QualityReport{
		TableCounts: s.Counts(),
		DateRanges:  dateRanges(products, customers, orders, reviews),
	}

	var fatal error
	refFailures := map[string]int{}
	orphan := func(check, detail string) {
		refFailures[check]++
		fatal = multierr.Append(fatal, fmt.Errorf("%s: %s", check, detail))
	}

	for _, o := range orders {
		if _, ok := customerIDs[o.CustomerID]; !ok {
			orphan(CheckOrdersReferenceCustomers, fmt.Sprintf("order %d references customer %d", o.ID, o.CustomerID))
		}
	}
	for _, it := range items {
		if _, ok := orderByID[it.OrderID]; !ok {
			orphan(CheckItemsReferenceOrders, fmt.Sprintf("order item %d references order %d", it.ID, it.OrderID))
		}
		if _, ok := productIDs[it.ProductID]; !ok {
			orphan(CheckItemsReferenceProducts, fmt.Sprintf("order item %d references product %d", it.ID, it.ProductID))
		}
	}
	for _, rv := range reviews {
		if _, ok := productIDs[rv.ProductID]; !ok {
			orphan(CheckReviewsReferenceProducts, fmt.Sprintf("review %d references product %d", rv.ID, rv.ProductID))
		}
		if _, ok := customerIDs[rv.CustomerID]; !ok {
			orphan(CheckReviewsReferenceCustomers, fmt.Sprintf("review %d references customer %d", rv.ID, rv.CustomerID))
		}
	}

	if fatal != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeFatalConsistency, fatal, "dataset holds orphaned references")
	}
	for _, name := range []string{
		CheckOrdersReferenceCustomers,
		CheckItemsReferenceOrders,
		CheckItemsReferenceProducts,
		CheckReviewsReferenceProducts,
		CheckReviewsReferenceCustomers,
	} {
		report.Checks = append(report.Checks, Check{Name: name, Passed: refFailures[name] == 0})
	}

	// Earliest purchase date per (customer, product), over orders of any status.
	firstPurchase := make(map[purchaseKey]time.Time)
	for _, it := range items {
		o := orderByID[it.OrderID]
		key := purchaseKey{customerID: o.CustomerID, productID: it.ProductID}
		if at, ok := firstPurchase[key]; !ok || o.OrderDate.Before(at) {
			firstPurchase[key] = o.OrderDate
		}
	}

	addAnomaly := func(rule, entity string, id int64, detail string) {
		report.Anomalies = append(report.Anomalies, Anomaly{Rule: rule, Entity: entity, EntityID: id, Detail: detail})
	}

	marginFailures := 0
	for _, p := range products {
		if m := p.Margin(); m < minMargin || m > maxMargin {
			marginFailures++
			addAnomaly(RuleMarginOutOfRange, store.EntityProducts, p.ID,
				fmt.Sprintf("margin %.4f outside [%.2f, %.2f]", m, minMargin, maxMargin))
		}
	}

	orderDateFailures := 0
	for _, o := range orders {
		if reg, ok := registration[o.CustomerID]; ok && o.OrderDate.Before(reg) {
			orderDateFailures++
			addAnomaly(RuleOrderBeforeRegistration, store.EntityOrders, o.ID,
				fmt.Sprintf("order placed %s, customer %d registered %s",
					o.OrderDate.Format("2006-01-02"), o.CustomerID, reg.Format("2006-01-02")))
		}
	}

	lineTotalFailures := 0
	for _, it := range items {
		if math.Abs(it.LineTotal-it.ExpectedLineTotal()) >= lineTotalTolerance {
			lineTotalFailures++
			addAnomaly(RuleLineTotalMismatch, store.EntityOrderItems, it.ID,
				fmt.Sprintf("line_total %.2f, expected %.2f", it.LineTotal, it.ExpectedLineTotal()))
		}
	}

	reviewFailures := 0
	for _, rv := range reviews {
		key := purchaseKey{customerID: rv.CustomerID, productID: rv.ProductID}
		bought, ok := firstPurchase[key]
		switch {
		case !ok:
			reviewFailures++
			addAnomaly(RuleReviewWithoutPurchase, store.EntityReviews, rv.ID,
				fmt.Sprintf("customer %d never ordered product %d", rv.CustomerID, rv.ProductID))
		case rv.ReviewDate.Before(bought):
			reviewFailures++
			addAnomaly(RuleReviewBeforePurchase, store.EntityReviews, rv.ID,
				fmt.Sprintf("reviewed %s before first purchase %s",
					rv.ReviewDate.Format("2006-01-02"), bought.Format("2006-01-02")))
		}
	}

	report.Checks = append(report.Checks,
		businessCheck(CheckProductMargins, marginFailures),
		businessCheck(CheckOrdersAfterRegistration, orderDateFailures),
		businessCheck(CheckLineTotals, lineTotalFailures),
		businessCheck(CheckReviewsAfterPurchase, reviewFailures),
	)
	return report, nil
}

func businessCheck(name string, failures int) Check {
	c := Check{Name: name, Passed: failures == 0}
	if failures > 0 {
		c.Detail = fmt.Sprintf("%d violation(s)", failures)
	}
	return c
}

func dateRanges(products []models.Product, customers []models.Customer, orders []models.Order, reviews []models.Review) map[string]DateRange {
	productDates := make([]time.Time, 0, len(products))
	for _, p := range products {
		productDates = append(productDates, p.CreatedDate)
	}
	customerDates := make([]time.Time, 0, len(customers))
	for _, c := range customers {
		customerDates = append(customerDates, c.RegistrationDate)
	}
	orderDates := make([]time.Time, 0, len(orders))
	for _, o := range orders {
		orderDates = append(orderDates, o.OrderDate)
	}
	reviewDates := make([]time.Time, 0, len(reviews))
	for _, rv := range reviews {
		reviewDates = append(reviewDates, rv.ReviewDate)
	}
	return map[string]DateRange{
		store.EntityProducts:  span(productDates),
		store.EntityCustomers: span(customerDates),
		store.EntityOrders:    span(orderDates),
		store.EntityReviews:   span(reviewDates),
	}
}

func span(dates []time.Time) DateRange {
	if len(dates) == 0 {
		return DateRange{Empty: true}
	}
	r := DateRange{Min: dates[0], Max: dates[0]}
	for _, d := range dates[1:] {
		if d.Before(r.Min) {
			r.Min = d
		}
		if d.After(r.Max) {
			r.Max = d
		}
	}
	return r
}
