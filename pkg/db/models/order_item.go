package models

// OrderItem is one sale line within an order.
type OrderItem struct {
	ID        int64   `gorm:"column:order_item_id;primaryKey" json:"order_item_id"`
	OrderID   int64   `gorm:"column:order_id;not null" json:"order_id" validate:"gt=0"`
	ProductID int64   `gorm:"column:product_id;not null" json:"product_id" validate:"gt=0"`
	Quantity  int     `gorm:"column:quantity;not null" json:"quantity" validate:"gt=0"`
	UnitPrice float64 `gorm:"column:unit_price;not null" json:"unit_price" validate:"gt=0"`
	Discount  float64 `gorm:"column:discount;not null" json:"discount" validate:"gte=0,lte=1"`
	LineTotal float64 `gorm:"column:line_total;not null" json:"line_total" validate:"gte=0"`
}

func (OrderItem) TableName() string { return "order_items" }

// ExpectedLineTotal recomputes the derived total from the raw components.
func (i OrderItem) ExpectedLineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice * (1 - i.Discount)
}
