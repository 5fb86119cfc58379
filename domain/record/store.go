package record

import "context"

// Store holds rules, invoices, emails and the product catalog.
// Implementations must be safe for concurrent use.
type Store interface {
	// CreateRule appends a rule for a customer.
	CreateRule(ctx context.Context, email, rule string) (Rule, error)

	// QueryCustomer returns rules, invoices and emails matching the email exactly.
	QueryCustomer(ctx context.Context, email string) (CustomerData, error)

	// IssueInvoice creates an invoice priced from the catalog.
	// Returns *NotFoundError for the first unknown SKU; nothing is created then.
	IssueInvoice(ctx context.Context, email string, skus []string, discountPercent int) (Invoice, error)

	// CancelInvoice marks an invoice void.
	// Returns *NotFoundError for an unknown id; nothing is mutated then.
	CancelInvoice(ctx context.Context, id, reason string) (Invoice, error)

	// RecordEmail appends an outgoing email.
	RecordEmail(ctx context.Context, to, subject, message string, files []string) (EmailRecord, error)

	// Product looks up a catalog entry.
	Product(ctx context.Context, sku string) (Product, error)

	// Products lists the catalog in SKU order.
	Products(ctx context.Context) ([]Product, error)

	// Stats counts stored records.
	Stats(ctx context.Context) (Stats, error)
}
