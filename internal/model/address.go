package model

import "time"

// Address is a saved customer shipping address.
type Address struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	City        string    `json:"city"`
	District    string    `json:"district"`
	AddressLine string    `json:"address_line"`
	PostalCode  *string   `json:"postal_code,omitempty"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToShipping snapshots the address for an order.
func (a *Address) ToShipping() ShippingAddress {
	return ShippingAddress{
		FullName:    a.FullName,
		Phone:       a.Phone,
		City:        a.City,
		District:    a.District,
		AddressLine: a.AddressLine,
		PostalCode:  a.PostalCode,
	}
}
