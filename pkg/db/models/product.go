package models

import "time"

// Product is a catalog listing. Rows are immutable once accepted by the store.
type Product struct {
	ID            int64     `gorm:"column:product_id;primaryKey" json:"product_id"`
	Name          string    `gorm:"column:name;not null" json:"name" validate:"required"`
	Category      string    `gorm:"column:category;not null" json:"category" validate:"required"`
	Subcategory   string    `gorm:"column:subcategory;not null" json:"subcategory" validate:"required"`
	Price         float64   `gorm:"column:price;not null" json:"price" validate:"gt=0"`
	Cost          float64   `gorm:"column:cost;not null" json:"cost" validate:"gte=0,ltfield=Price"`
	StockQuantity int       `gorm:"column:stock_quantity;not null" json:"stock_quantity" validate:"gte=0"`
	Supplier      string    `gorm:"column:supplier;not null" json:"supplier" validate:"required"`
	CreatedDate   time.Time `gorm:"column:created_date;type:date;not null" json:"created_date"`
}

func (Product) TableName() string { return "products" }

// Margin returns (price-cost)/price. Callers must guard against Price == 0,
// which the store's load constraints already exclude.
func (p Product) Margin() float64 {
	return (p.Price - p.Cost) / p.Price
}
