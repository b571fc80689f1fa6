package models

import "time"

// Customer is a registered shopper. Rows are immutable once accepted by the store.
type Customer struct {
	ID               int64     `gorm:"column:customer_id;primaryKey" json:"customer_id"`
	FirstName        string    `gorm:"column:first_name;not null" json:"first_name" validate:"required"`
	LastName         string    `gorm:"column:last_name;not null" json:"last_name" validate:"required"`
	Email            string    `gorm:"column:email;uniqueIndex;not null" json:"email" validate:"required"`
	Phone            *string   `gorm:"column:phone" json:"phone,omitempty"`
	Address          string    `gorm:"column:address;not null" json:"address" validate:"required"`
	City             string    `gorm:"column:city;not null" json:"city" validate:"required"`
	State            string    `gorm:"column:state;not null" json:"state" validate:"required"`
	Zip              string    `gorm:"column:zip;not null" json:"zip" validate:"required"`
	Country          string    `gorm:"column:country;not null" json:"country" validate:"required"`
	RegistrationDate time.Time `gorm:"column:registration_date;type:date;not null" json:"registration_date"`
}

func (Customer) TableName() string { return "customers" }

// DisplayName joins the name fields the way reports project them.
func (c Customer) DisplayName() string {
	return c.FirstName + " " + c.LastName
}
