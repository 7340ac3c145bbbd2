package models

import "time"

// RecognitionResult is a price/name guess for one price tag, produced either
// by the recognition service or by the local heuristic parser.
type RecognitionResult struct {
	Price       *int    `json:"price" yaml:"price"`
	ProductName *string `json:"productName" yaml:"productname"`
	RawText     string  `json:"rawText,omitempty" yaml:"rawtext,omitempty"`
}

// HasPrice reports whether the result carries a usable price
func (r RecognitionResult) HasPrice() bool {
	return r.Price != nil
}

// ScanRecord is an accepted scan handed to the cart
type ScanRecord struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// CartItem represents one line of the shopping cart
type CartItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Subtotal is price times quantity
func (i CartItem) Subtotal() int {
	return i.Price * i.Quantity
}
