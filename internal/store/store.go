package store

import (
	"math"

	"github.com/rpalomera/shopmetrics-backend/internal/dataset"
	"github.com/rpalomera/shopmetrics-backend/pkg/db/models"
	"github.com/rpalomera/shopmetrics-backend/pkg/enums"
	pkgerrors "github.com/rpalomera/shopmetrics-backend/pkg/errors"
)

// Derived currency fields are accepted within a cent of the recomputed value.
const lineTotalTolerance = 0.01

// Product margins must land inside this window.
const (
	minMargin = 0.20
	maxMargin = 0.50
)

// Store is the typed, constraint-checked holding area for the five entity
// collections. Collections are populated once, in a fixed order (products and
// customers before orders, orders before order items and reviews), and are
// read-only after Freeze. The store exclusively owns every accepted entity;
// query methods hand out copies.
type Store struct {
	products  []models.Product
	customers []models.Customer
	orders    []models.Order
	items     []models.OrderItem
	reviews   []models.Review

	productIdx  map[int64]int
	customerIdx map[int64]int
	orderIdx    map[int64]int
	itemIdx     map[int64]int
	reviewIdx   map[int64]int
	emails      map[string]struct{}

	frozen bool
}

// New returns an empty, unfrozen store.
func New() *Store {
	return &Store{
		productIdx:  make(map[int64]int),
		customerIdx: make(map[int64]int),
		orderIdx:    make(map[int64]int),
		itemIdx:     make(map[int64]int),
		reviewIdx:   make(map[int64]int),
		emails:      make(map[string]struct{}),
	}
}

// Freeze marks the store read-only. Loads after Freeze fail with a conflict.
func (s *Store) Freeze() {
	s.frozen = true
}

// Frozen reports whether the store has been sealed for aggregation.
func (s *Store) Frozen() bool {
	return s.frozen
}

func (s *Store) loadGuard() error {
	if s.frozen {
		return pkgerrors.New(pkgerrors.CodeConflict, "record store is frozen")
	}
	return nil
}

// LoadProducts ingests raw product rows. Rows are accepted whole or rejected
// whole with a structured reason.
func (s *Store) LoadProducts(rows []dataset.Record) ([]models.Product, []Rejection, error) {
	if err := s.loadGuard(); err != nil {
		return nil, nil, err
	}

	var accepted []models.Product
	var rejected []Rejection
	for _, rec := range rows {
		r := newRowReader(EntityProducts, rec)
		p := models.Product{
			ID:            r.int64Field("product_id"),
			Name:          r.str("name"),
			Category:      r.str("category"),
			Subcategory:   r.str("subcategory"),
			Price:         r.floatField("price"),
			Cost:          r.floatField("cost"),
			StockQuantity: r.intField("stock_quantity"),
			Supplier:      r.str("supplier"),
			CreatedDate:   r.dateField("created_date"),
		}
		r.checkStruct(&p)
		if r.bad == nil {
			if m := p.Margin(); m < minMargin || m > maxMargin {
				r.fail(ConstraintMarginRange, "cost", rec["cost"], "margin outside [0.20, 0.50]")
			}
		}
		if r.bad == nil {
			if _, dup := s.productIdx[p.ID]; dup {
				r.fail(ConstraintDuplicateID, "product_id", rec["product_id"], "product id already loaded")
			}
		}
		if rej := r.rejection(); rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		s.productIdx[p.ID] = len(s.products)
		s.products = append(s.products, p)
		accepted = append(accepted, p)
	}
	return accepted, rejected, nil
}

// LoadCustomers ingests raw customer rows.
func (s *Store) LoadCustomers(rows []dataset.Record) ([]models.Customer, []Rejection, error) {
	if err := s.loadGuard(); err != nil {
		return nil, nil, err
	}

	var accepted []models.Customer
	var rejected []Rejection
	for _, rec := range rows {
		r := newRowReader(EntityCustomers, rec)
		c := models.Customer{
			ID:               r.int64Field("customer_id"),
			FirstName:        r.str("first_name"),
			LastName:         r.str("last_name"),
			Email:            r.str("email"),
			Phone:            r.optStr("phone"),
			Address:          r.str("address"),
			City:             r.str("city"),
			State:            r.str("state"),
			Zip:              r.str("zip"),
			Country:          r.str("country"),
			RegistrationDate: r.dateField("registration_date"),
		}
		r.checkStruct(&c)
		if r.bad == nil && !emailRe.MatchString(c.Email) {
			r.fail(ConstraintEmailShape, "email", c.Email, "expected local@domain.tld")
		}
		if r.bad == nil {
			if _, dup := s.customerIdx[c.ID]; dup {
				r.fail(ConstraintDuplicateID, "customer_id", rec["customer_id"], "customer id already loaded")
			}
		}
		if r.bad == nil {
			if _, dup := s.emails[c.Email]; dup {
				r.fail(ConstraintDuplicateEmail, "email", c.Email, "email already loaded")
			}
		}
		if rej := r.rejection(); rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		s.customerIdx[c.ID] = len(s.customers)
		s.emails[c.Email] = struct{}{}
		s.customers = append(s.customers, c)
		accepted = append(accepted, c)
	}
	return accepted, rejected, nil
}

// LoadOrders ingests raw order rows. Customers must already be loaded; an
// order referencing an unknown customer is rejected, not queued.
func (s *Store) LoadOrders(rows []dataset.Record) ([]models.Order, []Rejection, error) {
	if err := s.loadGuard(); err != nil {
		return nil, nil, err
	}

	var accepted []models.Order
	var rejected []Rejection
	for _, rec := range rows {
		r := newRowReader(EntityOrders, rec)
		o := models.Order{
			ID:              r.int64Field("order_id"),
			CustomerID:      r.int64Field("customer_id"),
			OrderDate:       r.dateField("order_date"),
			ShippingAddress: r.str("shipping_address"),
			ShippingCity:    r.str("shipping_city"),
			ShippingState:   r.str("shipping_state"),
			ShippingZip:     r.str("shipping_zip"),
			ShippingCountry: r.str("shipping_country"),
			TotalAmount:     r.floatField("total_amount"),
		}
		if raw, ok := r.raw("status"); ok {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				r.fail(ConstraintInvalidStatus, "status", raw, err.Error())
			}
			o.Status = status
		}
		if raw, ok := r.raw("payment_method"); ok {
			method, err := enums.ParsePaymentMethod(raw)
			if err != nil {
				r.fail(ConstraintInvalidPayment, "payment_method", raw, err.Error())
			}
			o.PaymentMethod = method
		}
		r.checkStruct(&o)
		if r.bad == nil && o.OrderDate.Before(dataset.MinBusinessDate) {
			r.fail(ConstraintMinBusinessDate, "order_date", rec["order_date"], "order predates the business epoch")
		}
		if r.bad == nil {
			if _, dup := s.orderIdx[o.ID]; dup {
				r.fail(ConstraintDuplicateID, "order_id", rec["order_id"], "order id already loaded")
			}
		}
		if r.bad == nil {
			if _, ok := s.customerIdx[o.CustomerID]; !ok {
				r.fail(ConstraintUnknownCustomer, "customer_id", rec["customer_id"], "customer not loaded")
			}
		}
		if rej := r.rejection(); rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		s.orderIdx[o.ID] = len(s.orders)
		s.orders = append(s.orders, o)
		accepted = append(accepted, o)
	}
	return accepted, rejected, nil
}

// LoadOrderItems ingests raw order line rows. Orders and products must
// already be loaded.
func (s *Store) LoadOrderItems(rows []dataset.Record) ([]models.OrderItem, []Rejection, error) {
	if err := s.loadGuard(); err != nil {
		return nil, nil, err
	}

	var accepted []models.OrderItem
	var rejected []Rejection
	for _, rec := range rows {
		r := newRowReader(EntityOrderItems, rec)
		it := models.OrderItem{
			ID:        r.int64Field("order_item_id"),
			OrderID:   r.int64Field("order_id"),
			ProductID: r.int64Field("product_id"),
			Quantity:  r.intField("quantity"),
			UnitPrice: r.floatField("unit_price"),
			Discount:  r.floatField("discount"),
			LineTotal: r.floatField("line_total"),
		}
		r.checkStruct(&it)
		if r.bad == nil && math.Abs(it.LineTotal-it.ExpectedLineTotal()) >= lineTotalTolerance {
			r.fail(ConstraintLineTotalMismatch, "line_total", rec["line_total"], "line_total diverges from quantity*unit_price*(1-discount)")
		}
		if r.bad == nil {
			if _, dup := s.itemIdx[it.ID]; dup {
				r.fail(ConstraintDuplicateID, "order_item_id", rec["order_item_id"], "order item id already loaded")
			}
		}
		if r.bad == nil {
			if _, ok := s.orderIdx[it.OrderID]; !ok {
				r.fail(ConstraintUnknownOrder, "order_id", rec["order_id"], "order not loaded")
			}
		}
		if r.bad == nil {
			if _, ok := s.productIdx[it.ProductID]; !ok {
				r.fail(ConstraintUnknownProduct, "product_id", rec["product_id"], "product not loaded")
			}
		}
		if rej := r.rejection(); rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		s.itemIdx[it.ID] = len(s.items)
		s.items = append(s.items, it)
		accepted = append(accepted, it)
	}
	return accepted, rejected, nil
}

// LoadReviews ingests raw review rows. Products and customers must already be
// loaded. Whether the reviewer actually purchased the product is a soft rule
// checked by the integrity validator, not a load constraint.
func (s *Store) LoadReviews(rows []dataset.Record) ([]models.Review, []Rejection, error) {
	if err := s.loadGuard(); err != nil {
		return nil, nil, err
	}

	var accepted []models.Review
	var rejected []Rejection
	for _, rec := range rows {
		r := newRowReader(EntityReviews, rec)
		rv := models.Review{
			ID:         r.int64Field("review_id"),
			ProductID:  r.int64Field("product_id"),
			CustomerID: r.int64Field("customer_id"),
			Rating:     r.intField("rating"),
			ReviewText: r.optStr("review_text"),
			ReviewDate: r.dateField("review_date"),
		}
		r.checkStruct(&rv)
		if r.bad == nil && rv.ReviewDate.Before(dataset.MinBusinessDate) {
			r.fail(ConstraintMinBusinessDate, "review_date", rec["review_date"], "review predates the business epoch")
		}
		if r.bad == nil {
			if _, dup := s.reviewIdx[rv.ID]; dup {
				r.fail(ConstraintDuplicateID, "review_id", rec["review_id"], "review id already loaded")
			}
		}
		if r.bad == nil {
			if _, ok := s.productIdx[rv.ProductID]; !ok {
				r.fail(ConstraintUnknownProduct, "product_id", rec["product_id"], "product not loaded")
			}
		}
		if r.bad == nil {
			if _, ok := s.customerIdx[rv.CustomerID]; !ok {
				r.fail(ConstraintUnknownCustomer, "customer_id", rec["customer_id"], "customer not loaded")
			}
		}
		if rej := r.rejection(); rej != nil {
			rejected = append(rejected, *rej)
			continue
		}
		s.reviewIdx[rv.ID] = len(s.reviews)
		s.reviews = append(s.reviews, rv)
		accepted = append(accepted, rv)
	}
	return accepted, rejected, nil
}

func notFound(entity string, id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found").
		WithDetails(map[string]any{"entity": entity, "id": id})
}

// Product returns the accepted product with the given id.
func (s *Store) Product(id int64) (*models.Product, error) {
	if i, ok := s.productIdx[id]; ok {
		p := s.products[i]
		return &p, nil
	}
	return nil, notFound(EntityProducts, id)
}

// Customer returns the accepted customer with the given id.
func (s *Store) Customer(id int64) (*models.Customer, error) {
	if i, ok := s.customerIdx[id]; ok {
		c := s.customers[i]
		return &c, nil
	}
	return nil, notFound(EntityCustomers, id)
}

// Order returns the accepted order with the given id.
func (s *Store) Order(id int64) (*models.Order, error) {
	if i, ok := s.orderIdx[id]; ok {
		o := s.orders[i]
		return &o, nil
	}
	return nil, notFound(EntityOrders, id)
}

// OrderItem returns the accepted order line with the given id.
func (s *Store) OrderItem(id int64) (*models.OrderItem, error) {
	if i, ok := s.itemIdx[id]; ok {
		it := s.items[i]
		return &it, nil
	}
	return nil, notFound(EntityOrderItems, id)
}

// Review returns the accepted review with the given id.
func (s *Store) Review(id int64) (*models.Review, error) {
	if i, ok := s.reviewIdx[id]; ok {
		rv := s.reviews[i]
		return &rv, nil
	}
	return nil, notFound(EntityReviews, id)
}

// Products returns an insertion-ordered snapshot copy.
func (s *Store) Products() []models.Product {
	return append([]models.Product(nil), s.products...)
}

// Customers returns an insertion-ordered snapshot copy.
func (s *Store) Customers() []models.Customer {
	return append([]models.Customer(nil), s.customers...)
}

// Orders returns an insertion-ordered snapshot copy.
func (s *Store) Orders() []models.Order {
	return append([]models.Order(nil), s.orders...)
}

// OrderItems returns an insertion-ordered snapshot copy.
func (s *Store) OrderItems() []models.OrderItem {
	return append([]models.OrderItem(nil), s.items...)
}

// Reviews returns an insertion-ordered snapshot copy.
func (s *Store) Reviews() []models.Review {
	return append([]models.Review(nil), s.reviews...)
}

// Counts returns the accepted row count per collection.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		EntityProducts:   len(s.products),
		EntityCustomers:  len(s.customers),
		EntityOrders:     len(s.orders),
		EntityOrderItems: len(s.items),
		EntityReviews:    len(s.reviews),
	}
}
