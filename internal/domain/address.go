package domain

import "strings"

const DefaultCountry = "India"

type Address struct {
	FullName     string `json:"fullName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

// WithDefaults fills the country when it was left blank.
func (a Address) WithDefaults() Address {
	if strings.TrimSpace(a.Country) == "" {
		a.Country = DefaultCountry
	}
	return a
}

// Validate checks required fields. AddressLine2 is optional.
func (a Address) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", a.FullName},
		{"addressLine1", a.AddressLine1},
		{"city", a.City},
		{"state", a.State},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
		{"phone", a.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fieldError(f.name)
		}
	}
	return nil
}

type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentUPI:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}
