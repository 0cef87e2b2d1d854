package cart

import (
	"bytes"
	"encoding/json"

	"github.com/fjod/storefront/internal/domain"
)

// Kind tells which of the two cart shapes the backend sent.
type Kind int

const (
	KindUnknown Kind = iota
	// KindFlat is an array of items whose fields may be missing and then
	// come from an embedded product object.
	KindFlat
	// KindNested is {"products": [{"product": {...}, "quantity": n}]}.
	KindNested
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindNested:
		return "nested"
	default:
		return "unknown"
	}
}

type productRef struct {
	ID          domain.ID    `json:"id"`
	MongoID     domain.ID    `json:"_id"`
	Name        string       `json:"name"`
	Price       domain.Price `json:"price"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
}

// UnmarshalJSON also accepts a bare id where the backend did not populate
// the product.
func (p *productRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var id domain.ID
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = productRef{ID: id}
		return nil
	}
	type plain productRef
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = productRef(v)
	return nil
}

func (p *productRef) id() domain.ID {
	if p.ID != "" {
		return p.ID
	}
	return p.MongoID
}

type FlatItem struct {
	ID          domain.ID    `json:"id"`
	Name        string       `json:"name"`
	Price       domain.Price `json:"price"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Quantity    int          `json:"quantity"`
	Product     *productRef  `json:"product"`
}

type NestedEntry struct {
	Product  *productRef `json:"product"`
	Quantity int         `json:"quantity"`
}

// Payload is a decoded cart in whichever shape it arrived.
type Payload struct {
	Kind   Kind
	Flat   []FlatItem
	Nested []NestedEntry
}

// Decode classifies the raw "cart" value. Anything that is neither an array
// nor an object with a products array decodes as KindUnknown.
func Decode(raw json.RawMessage) Payload {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Payload{Kind: KindUnknown}
	}

	switch raw[0] {
	case '[':
		var items []FlatItem
		if err := json.Unmarshal(raw, &items); err != nil {
			items = decodeFlatLenient(raw)
		}
		return Payload{Kind: KindFlat, Flat: items}
	case '{':
		var obj struct {
			Products json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Payload{Kind: KindUnknown}
		}
		products := bytes.TrimSpace(obj.Products)
		if len(products) == 0 || products[0] != '[' {
			return Payload{Kind: KindUnknown}
		}
		return Payload{Kind: KindNested, Nested: decodeNestedLenient(products)}
	default:
		return Payload{Kind: KindUnknown}
	}
}

// decodeFlatLenient decodes element by element so one malformed entry does
// not drop the whole cart.
func decodeFlatLenient(raw json.RawMessage) []FlatItem {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	items := make([]FlatItem, 0, len(elems))
	for _, e := range elems {
		var it FlatItem
		if err := json.Unmarshal(e, &it); err == nil {
			items = append(items, it)
		}
	}
	return items
}

func decodeNestedLenient(raw json.RawMessage) []NestedEntry {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	entries := make([]NestedEntry, 0, len(elems))
	for _, e := range elems {
		var entry NestedEntry
		if err := json.Unmarshal(e, &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Items converts the payload into the canonical cart list.
func (p Payload) Items() []domain.CartItem {
	items := []domain.CartItem{}
	switch p.Kind {
	case KindFlat:
		for _, it := range p.Flat {
			items = append(items, it.normalize())
		}
	case KindNested:
		for _, entry := range p.Nested {
			if entry.Product == nil {
				continue
			}
			items = append(items, domain.CartItem{
				ID:          entry.Product.id(),
				Name:        entry.Product.Name,
				Price:       entry.Product.Price,
				Description: entry.Product.Description,
				Image:       entry.Product.Image,
				Quantity:    atLeastOne(entry.Quantity),
			})
		}
	}
	return items
}

func (it FlatItem) normalize() domain.CartItem {
	item := domain.CartItem{
		ID:          it.ID,
		Name:        it.Name,
		Price:       it.Price,
		Description: it.Description,
		Image:       it.Image,
		Quantity:    atLeastOne(it.Quantity),
	}
	if p := it.Product; p != nil {
		if item.ID == "" {
			item.ID = p.id()
		}
		if item.Name == "" {
			item.Name = p.Name
		}
		if item.Price == 0 {
			item.Price = p.Price
		}
		if item.Description == "" {
			item.Description = p.Description
		}
		if item.Image == "" {
			item.Image = p.Image
		}
	}
	return item
}

func atLeastOne(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// Normalize turns whatever the backend returned as "cart" into the canonical
// item list. It never fails; an unrecognized shape is an empty cart.
func Normalize(raw json.RawMessage) []domain.CartItem {
	return Decode(raw).Items()
}
