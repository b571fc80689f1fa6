package models

import "time"

// Review is a customer's product rating with optional prose.
type Review struct {
	ID         int64     `gorm:"column:review_id;primaryKey" json:"review_id"`
	ProductID  int64     `gorm:"column:product_id;not null" json:"product_id" validate:"gt=0"`
	CustomerID int64     `gorm:"column:customer_id;not null" json:"customer_id" validate:"gt=0"`
	Rating     int       `gorm:"column:rating;not null" json:"rating" validate:"gte=1,lte=5"`
	ReviewText *string   `gorm:"column:review_text" json:"review_text,omitempty"`
	ReviewDate time.Time `gorm:"column:review_date;type:date;not null" json:"review_date"`
}

func (Review) TableName() string { return "reviews" }
