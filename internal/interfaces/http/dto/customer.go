package dto

import (
	"strings"

	"github.com/erp/fulfillment/internal/application/trade"
	domaintrade "github.com/erp/fulfillment/internal/domain/trade"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CustomerPayload is the nested customer shape of a checkout request
type CustomerPayload struct {
	Name           string `json:"name" binding:"max=200"`
	DocumentType   string `json:"document_type" binding:"max=20"`
	DocumentNumber string `json:"document_number" binding:"max=50"`
	Email          string `json:"email" binding:"omitempty,email,max=200"`
	Phone          string `json:"phone" binding:"max=50"`
}

// AddressPayload is the nested shipping address shape of a checkout request
type AddressPayload struct {
	Line1      string `json:"line1" binding:"max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"max=100"`
	Region     string `json:"region" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=2"`
}

// CheckoutPayload accepts the customer either flat or nested. Nested
// values win; flat values fill whatever the nested objects leave empty.
type CheckoutPayload struct {
	Customer *CustomerPayload `json:"customer"`
	Address  *AddressPayload  `json:"address"`

	CustomerName   string `json:"customer_name" binding:"max=200"`
	DocumentType   string `json:"document_type" binding:"max=20"`
	DocumentNumber string `json:"document_number" binding:"max=50"`
	Email          string `json:"email" binding:"omitempty,email,max=200"`
	Phone          string `json:"phone" binding:"max=50"`
	AddressLine1   string `json:"address_line1" binding:"max=200"`
	AddressLine2   string `json:"address_line2" binding:"max=200"`
	City           string `json:"city" binding:"max=100"`
	Region         string `json:"region" binding:"max=100"`
	PostalCode     string `json:"postal_code" binding:"max=20"`
	Country        string `json:"country" binding:"max=2"`
}

// NormalizeCustomerPayload maps either payload shape to one canonical
// checkout request. Text is NFC-normalized and whitespace-collapsed; names
// and cities are title-cased, codes upper-cased, email lower-cased.
func NormalizeCustomerPayload(p CheckoutPayload) trade.CheckoutRequest {
	c := CustomerPayload{}
	if p.Customer != nil {
		c = *p.Customer
	}
	a := AddressPayload{}
	if p.Address != nil {
		a = *p.Address
	}

	// Casers carry state and are not safe to share across requests
	title := cases.Title(language.Und)

	return trade.CheckoutRequest{
		Customer: domaintrade.CustomerSnapshot{
			Name:           title.String(clean(first(c.Name, p.CustomerName))),
			DocumentType:   strings.ToUpper(clean(first(c.DocumentType, p.DocumentType))),
			DocumentNumber: compact(first(c.DocumentNumber, p.DocumentNumber)),
			Email:          strings.ToLower(clean(first(c.Email, p.Email))),
			Phone:          compact(first(c.Phone, p.Phone)),
		},
		Address: domaintrade.AddressSnapshot{
			Line1:      clean(first(a.Line1, p.AddressLine1)),
			Line2:      clean(first(a.Line2, p.AddressLine2)),
			City:       title.String(clean(first(a.City, p.City))),
			Region:     title.String(clean(first(a.Region, p.Region))),
			PostalCode: strings.ToUpper(compact(first(a.PostalCode, p.PostalCode))),
			Country:    strings.ToUpper(clean(first(a.Country, p.Country))),
		},
	}
}

func first(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// clean NFC-normalizes s and collapses runs of whitespace
func clean(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// compact NFC-normalizes s and drops all whitespace
func compact(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), "")
}
