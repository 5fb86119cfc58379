// Package record defines the business records the agent acts upon.
package record

import (
	"fmt"
	"math"
)

// Rule is a free-text instruction attached to a customer.
type Rule struct {
	Email string `json:"email"`
	Rule  string `json:"rule"`
}

// Invoice is an issued invoice. Total is the list-price sum; the discount
// amount is informational and never subtracted.
type Invoice struct {
	ID              string   `json:"id"`
	Email           string   `json:"email"`
	File            string   `json:"file"`
	SKUs            []string `json:"skus"`
	DiscountPercent int      `json:"discount_percent"`
	DiscountAmount  float64  `json:"discount_amount"`
	Total           float64  `json:"total"`
	Void            bool     `json:"void"`
	VoidReason      string   `json:"void_reason,omitempty"`
}

// EmailRecord is an outgoing email captured by the store.
type EmailRecord struct {
	To      string   `json:"to"`
	Subject string   `json:"subject"`
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

// Product is a catalog entry.
type Product struct {
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CustomerData is everything stored for one email address.
type CustomerData struct {
	Rules    []Rule        `json:"rules"`
	Invoices []Invoice     `json:"invoices"`
	Emails   []EmailRecord `json:"emails"`
}

// Stats counts the mutable records in a store.
type Stats struct {
	Rules    int
	Invoices int
	Emails   int
}

// InvoiceID formats the n-th invoice identifier.
func InvoiceID(n int) string {
	return fmt.Sprintf("INV-%d", n)
}

// InvoiceFile returns the document path for an invoice id.
func InvoiceFile(id string) string {
	return "/invoices/" + id + ".pdf"
}

// DiscountAmount returns percent of total rounded to cents, half away from zero.
func DiscountAmount(total float64, percent int) float64 {
	return math.Round(total*float64(percent)) / 100
}

// DefaultCatalog returns the built-in product catalog.
func DefaultCatalog() []Product {
	return []Product{
		{SKU: "SKU-205", Name: "AGI Course 101 Personal", Price: 258},
		{SKU: "SKU-210", Name: "AGI 101 Course Team", Price: 1290},
		{SKU: "SKU-220", Name: "Building AGI - Online Exercises", Price: 315},
	}
}
