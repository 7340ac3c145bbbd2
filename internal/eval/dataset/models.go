package dataset

import "strings"

// PriceTagRecord is one labeled price tag. Text is the recognized tag text
// the parser runs on; ProductName and Price are the ground truth.
type PriceTagRecord struct {
	ID          string `json:"id" parquet:"id"`
	Text        string `json:"text" parquet:"text"`
	ProductName string `json:"product_name" parquet:"product_name,optional"`
	Price       int    `json:"price" parquet:"price"`

	// Optional path to the tag photo, relative to the dataset file
	ImagePath string `json:"image_path,omitempty" parquet:"image_path,optional"`
}

// HasText reports whether the record carries tag text to parse
func (r PriceTagRecord) HasText() bool {
	return strings.TrimSpace(r.Text) != ""
}
