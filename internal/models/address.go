package models

import (
	"fmt"
	"strings"
)

// Address is a postal address as required by the print provider
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Complete reports whether the address carries every field fulfillment
// requires. Line2 is optional.
func (a Address) Complete() bool {
	return a.Line1 != "" && a.City != "" && a.State != "" &&
		a.PostalCode != "" && a.Country != ""
}

// ShippingContact is the resolved recipient of a fulfillment order
type ShippingContact struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Email   string  `json:"email,omitempty"`
	Address Address `json:"address"`
}

// ReturnAddress is the operator's own address, used as the shipping "from"
// on every fulfillment order.
type ReturnAddress struct {
	CompanyName  string `json:"companyName"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
}

const returnAddressFields = 8

// ParseReturnAddress parses the configured comma-delimited return address.
// The expected layout is exactly eight positions:
//
//	companyName,addressLine1,city,state,postalCode,country,email,phone
//
// e.g. "John Doe,123 Main St,Anytown,CA,12345,US,returns@co,555-555-5555".
// There is no addressLine2 position. Parsed on every order submission,
// never cached, and validated only by position count.
func ParseReturnAddress(s string) (ReturnAddress, error) {
	parts := strings.Split(s, ",")
	if len(parts) != returnAddressFields {
		return ReturnAddress{}, fmt.Errorf("return address: expected %d comma-separated fields, got %d", returnAddressFields, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return ReturnAddress{
		CompanyName:  parts[0],
		AddressLine1: parts[1],
		City:         parts[2],
		State:        parts[3],
		PostalCode:   parts[4],
		Country:      parts[5],
		Email:        parts[6],
		Phone:        parts[7],
	}, nil
}
