package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/sgr-go/domain/record"
)

// RecordStore is an in-memory implementation of record.Store.
type RecordStore struct {
	products map[string]record.Product
	rules    []record.Rule
	invoices []record.Invoice
	emails   []record.EmailRecord
	mu       sync.RWMutex
}

// NewRecordStore creates a store seeded with the given catalog.
func NewRecordStore(products []record.Product) (*RecordStore, error) {
	catalog := make(map[string]record.Product, len(products))
	for _, p := range products {
		if _, exists := catalog[p.SKU]; exists {
			return nil, fmt.Errorf("%w: %s", record.ErrDuplicateSKU, p.SKU)
		}
		catalog[p.SKU] = p
	}
	return &RecordStore{products: catalog}, nil
}

// CreateRule appends a rule for a customer.
func (s *RecordStore) CreateRule(ctx context.Context, email, rule string) (record.Rule, error) {
	if err := ctx.Err(); err != nil {
		return record.Rule{}, err
	}

	r := record.Rule{Email: email, Rule: rule}

	s.mu.Lock()
	s.rules = append(s.rules, r)
	s.mu.Unlock()

	return r, nil
}

// QueryCustomer returns every record matching the email exactly.
func (s *RecordStore) QueryCustomer(ctx context.Context, email string) (record.CustomerData, error) {
	if err := ctx.Err(); err != nil {
		return record.CustomerData{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data := record.CustomerData{
		Rules:    []record.Rule{},
		Invoices: []record.Invoice{},
		Emails:   []record.EmailRecord{},
	}
	for _, r := range s.rules {
		if r.Email == email {
			data.Rules = append(data.Rules, r)
		}
	}
	for _, inv := range s.invoices {
		if inv.Email == email {
			data.Invoices = append(data.Invoices, copyInvoice(inv))
		}
	}
	for _, e := range s.emails {
		if e.To == email {
			data.Emails = append(data.Emails, copyEmail(e))
		}
	}
	return data, nil
}

// IssueInvoice creates an invoice priced from the catalog.
func (s *RecordStore) IssueInvoice(ctx context.Context, email string, skus []string, discountPercent int) (record.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return record.Invoice{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, sku := range skus {
		p, ok := s.products[sku]
		if !ok {
			return record.Invoice{}, &record.NotFoundError{Entity: record.EntityProduct, ID: sku}
		}
		total += p.Price
	}

	id := record.InvoiceID(len(s.invoices) + 1)
	inv := record.Invoice{
		ID:              id,
		Email:           email,
		File:            record.InvoiceFile(id),
		SKUs:            append([]string(nil), skus...),
		DiscountPercent: discountPercent,
		DiscountAmount:  record.DiscountAmount(total, discountPercent),
		Total:           total,
	}
	s.invoices = append(s.invoices, inv)

	return copyInvoice(inv), nil
}

// CancelInvoice marks an invoice void and records the reason.
func (s *RecordStore) CancelInvoice(ctx context.Context, id, reason string) (record.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return record.Invoice{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.invoices {
		if s.invoices[i].ID == id {
			s.invoices[i].Void = true
			s.invoices[i].VoidReason = reason
			return copyInvoice(s.invoices[i]), nil
		}
	}
	return record.Invoice{}, &record.NotFoundError{Entity: record.EntityInvoice, ID: id}
}

// RecordEmail appends an outgoing email.
func (s *RecordStore) RecordEmail(ctx context.Context, to, subject, message string, files []string) (record.EmailRecord, error) {
	if err := ctx.Err(); err != nil {
		return record.EmailRecord{}, err
	}

	e := record.EmailRecord{
		To:      to,
		Subject: subject,
		Message: message,
		Files:   append([]string{}, files...),
	}

	s.mu.Lock()
	s.emails = append(s.emails, e)
	s.mu.Unlock()

	return copyEmail(e), nil
}

// Product looks up a catalog entry.
func (s *RecordStore) Product(ctx context.Context, sku string) (record.Product, error) {
	if err := ctx.Err(); err != nil {
		return record.Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[sku]
	if !ok {
		return record.Product{}, &record.NotFoundError{Entity: record.EntityProduct, ID: sku}
	}
	return p, nil
}

// Products lists the catalog sorted by SKU.
func (s *RecordStore) Products(ctx context.Context) ([]record.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	products := make([]record.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	s.mu.RUnlock()

	sort.Slice(products, func(i, j int) bool {
		return products[i].SKU < products[j].SKU
	})
	return products, nil
}

// Stats counts stored records.
func (s *RecordStore) Stats(ctx context.Context) (record.Stats, error) {
	if err := ctx.Err(); err != nil {
		return record.Stats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return record.Stats{
		Rules:    len(s.rules),
		Invoices: len(s.invoices),
		Emails:   len(s.emails),
	}, nil
}

func copyInvoice(inv record.Invoice) record.Invoice {
	inv.SKUs = append([]string{}, inv.SKUs...)
	return inv
}

func copyEmail(e record.EmailRecord) record.EmailRecord {
	e.Files = append([]string{}, e.Files...)
	return e
}

var _ record.Store = (*RecordStore)(nil)
