package domain

import "time"

// Order represents a customer order: shipping attributes plus the set of
// line items. ID and OrderDate are assigned by the database on creation.
type Order struct {
	ID         int        `json:"id_order"`
	OrderDate  time.Time  `json:"order_date"`
	FirstName  string     `json:"firstname"`
	LastName   string     `json:"lastname"`
	City       string     `json:"city"`
	Country    string     `json:"country"`
	Address    string     `json:"address"`
	PostalCode string     `json:"postalcode"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Items      []LineItem `json:"products"`
}

// LineItem pairs a product with a quantity inside exactly one order. It has
// no identity of its own; ProductName is resolved from the catalog on reads
// and ignored on writes.
type LineItem struct {
	ProductID   int    `json:"id_product"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity"`
}
