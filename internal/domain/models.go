package domain

// Product is a catalog entry. IDs are allocated by the repository and never
// change after creation.
type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	Price       float64  `json:"price"`
	Status      bool     `json:"status"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
}

// CartLine is one (product, quantity) pair inside a cart. The product id is
// checked against the catalog when the line is added or incremented, not
// afterwards: deleting a product leaves existing lines in place.
type CartLine struct {
	ProductID int `json:"product"`
	Quantity  int `json:"quantity"`
}

type Cart struct {
	ID    int        `json:"id"`
	Lines []CartLine `json:"products"`
}

// Line returns a pointer to the line for productID, or nil.
func (c *Cart) Line(productID int) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}
