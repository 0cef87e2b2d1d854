package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ID is a backend identifier. The backend sends ids either as strings
// (document ids) or as numbers, so both are accepted and kept as text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// objects and arrays are not ids
		*id = ""
		return nil
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Price is an integer amount in the smallest display unit. Backend prices may
// arrive as numbers or numeric strings; the integer prefix is kept and anything
// unparseable becomes zero.
type Price int64

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = ParsePrice(string(bytes.TrimSpace(data)))
	return nil
}

// ParsePrice reads a price the way the storefront always has: leading integer
// part only ("2499.99" is 2499, "12abc" is 12, "1e3" is 1, "abc" is 0).
func ParsePrice(raw string) Price {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return 0
	}
	if !strings.ContainsAny(raw, "eE") {
		if d, err := decimal.NewFromString(raw); err == nil {
			return Price(d.IntPart())
		}
	}

	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil {
		return 0
	}
	return Price(n)
}

type Product struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// productWire is the product as the backend sends it; ids may be under
// "_id" or "id".
type productWire struct {
	ID          ID     `json:"id"`
	MongoID     ID     `json:"_id"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id := w.MongoID
	if id == "" {
		id = w.ID
	}
	*p = Product{
		ID:          id,
		Name:        w.Name,
		Price:       w.Price,
		Description: w.Description,
		Image:       w.Image,
	}
	return nil
}

// ProductForm holds the editable fields of a product.
type ProductForm struct {
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (f ProductForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fieldError("name")
	}
	if f.Price <= 0 {
		return fieldError("price")
	}
	if strings.TrimSpace(f.Image) == "" {
		return fieldError("image")
	}
	return nil
}
