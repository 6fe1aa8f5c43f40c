package trade

import "strings"

// CustomerSnapshot is the customer data frozen into an order
type CustomerSnapshot struct {
	Name           string `json:"name"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

// Validate checks the fields an order needs
func (c CustomerSnapshot) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidCustomer.WithMessage("Customer name is required")
	}
	if strings.TrimSpace(c.DocumentNumber) == "" {
		return ErrInvalidCustomer.WithMessage("Customer document number is required")
	}
	return nil
}

// AddressSnapshot is the shipping address frozen into an order
type AddressSnapshot struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

// Validate checks the fields an order needs
func (a AddressSnapshot) Validate() error {
	if strings.TrimSpace(a.Line1) == "" || strings.TrimSpace(a.City) == "" {
		return ErrInvalidCustomer.WithMessage("Shipping address line and city are required")
	}
	return nil
}
