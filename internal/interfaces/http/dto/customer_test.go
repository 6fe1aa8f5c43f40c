package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCustomerPayload_Flat(t *testing.T) {
	req := NormalizeCustomerPayload(CheckoutPayload{
		CustomerName:   "  maría   josé  PÉREZ ",
		DocumentType:   "dni",
		DocumentNumber: " 12 345 678 ",
		Email:          "Maria@Example.COM",
		Phone:          "+51 999 000 111",
		AddressLine1:   "Av.  Arequipa 123",
		City:           "lima",
		Country:        "pe",
	})

	assert.Equal(t, "María José Pérez", req.Customer.Name)
	assert.Equal(t, "DNI", req.Customer.DocumentType)
	assert.Equal(t, "12345678", req.Customer.DocumentNumber)
	assert.Equal(t, "maria@example.com", req.Customer.Email)
	assert.Equal(t, "+51999000111", req.Customer.Phone)
	assert.Equal(t, "Av. Arequipa 123", req.Address.Line1)
	assert.Equal(t, "Lima", req.Address.City)
	assert.Equal(t, "PE", req.Address.Country)
	assert.NoError(t, req.Customer.Validate())
	assert.NoError(t, req.Address.Validate())
}

func TestNormalizeCustomerPayload_NestedWinsOverFlat(t *testing.T) {
	req := NormalizeCustomerPayload(CheckoutPayload{
		Customer: &CustomerPayload{Name: "ana torres", DocumentNumber: "X1"},
		Address:  &AddressPayload{Line1: "Calle 1", City: "cusco"},

		CustomerName: "someone else",
		Email:        "ana@example.com",
		City:         "arequipa",
	})

	assert.Equal(t, "Ana Torres", req.Customer.Name)
	assert.Equal(t, "X1", req.Customer.DocumentNumber)
	// flat fields fill gaps the nested objects leave
	assert.Equal(t, "ana@example.com", req.Customer.Email)
	assert.Equal(t, "Cusco", req.Address.City)
}

func TestNormalizeCustomerPayload_ComposesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent
	req := NormalizeCustomerPayload(CheckoutPayload{CustomerName: "jose\u0301"})

	assert.Equal(t, "Jos\u00e9", req.Customer.Name)
}

func TestNormalizeCustomerPayload_EmptyFailsValidation(t *testing.T) {
	req := NormalizeCustomerPayload(CheckoutPayload{CustomerName: "   "})

	assert.Empty(t, req.Customer.Name)
	assert.Error(t, req.Customer.Validate())
}
