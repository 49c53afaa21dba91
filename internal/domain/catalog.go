package domain

// Product is a catalog entry. Category and Supplier carry the joined names
// on reads; writes reference both by name.
type Product struct {
	ID          int     `json:"id_product"`
	Name        string  `json:"name"`
	Cost        float64 `json:"cost"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Supplier    string  `json:"supplier"`
}

// Category groups products.
type Category struct {
	ID   int    `json:"id_category"`
	Name string `json:"name"`
}

// Supplier is a product source with contact details.
type Supplier struct {
	ID      int    `json:"id_supplier"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}
