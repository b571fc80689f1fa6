package models

import (
	"time"

	"github.com/rpalomera/shopmetrics-backend/pkg/enums"
)

// Order references an accepted customer. Rows are immutable once accepted.
type Order struct {
	ID              int64               `gorm:"column:order_id;primaryKey" json:"order_id"`
	CustomerID      int64               `gorm:"column:customer_id;not null" json:"customer_id" validate:"gt=0"`
	OrderDate       time.Time           `gorm:"column:order_date;type:date;not null" json:"order_date"`
	Status          enums.OrderStatus   `gorm:"column:status;not null" json:"status"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null" json:"payment_method"`
	ShippingAddress string              `gorm:"column:shipping_address;not null" json:"shipping_address" validate:"required"`
	ShippingCity    string              `gorm:"column:shipping_city;not null" json:"shipping_city" validate:"required"`
	ShippingState   string              `gorm:"column:shipping_state;not null" json:"shipping_state" validate:"required"`
	ShippingZip     string              `gorm:"column:shipping_zip;not null" json:"shipping_zip" validate:"required"`
	ShippingCountry string              `gorm:"column:shipping_country;not null" json:"shipping_country" validate:"required"`
	TotalAmount     float64             `gorm:"column:total_amount;not null" json:"total_amount" validate:"gte=0"`
}

func (Order) TableName() string { return "orders" }

// IsCompleted reports whether the order counts toward revenue aggregates.
func (o Order) IsCompleted() bool {
	return o.Status == enums.OrderStatusCompleted
}
