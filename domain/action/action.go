// Package action defines the closed catalog of typed actions a decision may request.
package action

import (
	"encoding/json"
	"strings"
)

// Kind is the discriminant tag carried by every action on the wire.
type Kind string

const (
	KindSendEmail        Kind = "send_email"        // Record an outgoing email
	KindGetCustomerData  Kind = "get_customer_data" // Query rules, invoices and emails for a customer
	KindIssueInvoice     Kind = "issue_invoice"     // Issue a new invoice
	KindCancelInvoice    Kind = "cancel_invoice"    // Void an existing invoice
	KindCreateRule       Kind = "remember"          // Save a custom rule for a customer
	KindReportCompletion Kind = "report_completion" // Terminal: end the run
)

// Kinds returns every catalog kind in schema order.
func Kinds() []Kind {
	return []Kind{
		KindReportCompletion,
		KindSendEmail,
		KindGetCustomerData,
		KindIssueInvoice,
		KindCancelInvoice,
		KindCreateRule,
	}
}

// IsValid returns true if the kind belongs to the catalog.
func (k Kind) IsValid() bool {
	switch k {
	case KindSendEmail, KindGetCustomerData, KindIssueInvoice,
		KindCancelInvoice, KindCreateRule, KindReportCompletion:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the kind ends a run.
func (k Kind) IsTerminal() bool {
	return k == KindReportCompletion
}

// String returns the wire tag.
func (k Kind) String() string {
	return string(k)
}

// MaxDiscountPercent is the largest discount an invoice may carry.
const MaxDiscountPercent = 50

// Outcome is the code a ReportCompletion action declares.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// IsValid returns true for a recognized outcome code.
func (o Outcome) IsValid() bool {
	return o == OutcomeCompleted || o == OutcomeFailed
}

// Action is one typed, validated intent. The set of implementations is closed.
type Action interface {
	// Kind returns the discriminant tag.
	Kind() Kind

	// Validate checks field-level constraints.
	Validate() error

	sealed()
}

// SendEmail records an email to a recipient, optionally with file references.
type SendEmail struct {
	Subject        string   `json:"subject"`
	Message        string   `json:"message"`
	Files          []string `json:"files"`
	RecipientEmail string   `json:"recipient_email"`
}

// GetCustomerData queries everything stored for an email address.
type GetCustomerData struct {
	Email string `json:"email"`
}

// IssueInvoice issues an invoice for the customer and the given SKUs.
type IssueInvoice struct {
	Email           string   `json:"email"`
	SKUs            []string `json:"skus"`
	DiscountPercent int      `json:"discount_percent"`
}

// CancelInvoice voids an invoice with the provided reason.
type CancelInvoice struct {
	InvoiceID string `json:"invoice_id"`
	Reason    string `json:"reason"`
}

// CreateRule saves a custom rule for interacting with a customer.
type CreateRule struct {
	Email string `json:"email"`
	Rule  string `json:"rule"`
}

// ReportCompletion ends the run with a laconic list of completed steps.
type ReportCompletion struct {
	CompletedSteps []string `json:"completed_steps_laconic"`
	Code           Outcome  `json:"code"`
}

func (SendEmail) Kind() Kind        { return KindSendEmail }
func (GetCustomerData) Kind() Kind  { return KindGetCustomerData }
func (IssueInvoice) Kind() Kind     { return KindIssueInvoice }
func (CancelInvoice) Kind() Kind    { return KindCancelInvoice }
func (CreateRule) Kind() Kind       { return KindCreateRule }
func (ReportCompletion) Kind() Kind { return KindReportCompletion }

func (SendEmail) sealed()        {}
func (GetCustomerData) sealed()  {}
func (IssueInvoice) sealed()     {}
func (CancelInvoice) sealed()    {}
func (CreateRule) sealed()       {}
func (ReportCompletion) sealed() {}

// Validate implements Action.
func (a SendEmail) Validate() error {
	return requireText(KindSendEmail, "recipient_email", a.RecipientEmail)
}

// Validate implements Action.
func (a GetCustomerData) Validate() error {
	return requireText(KindGetCustomerData, "email", a.Email)
}

// Validate implements Action.
func (a IssueInvoice) Validate() error {
	if err := requireText(KindIssueInvoice, "email", a.Email); err != nil {
		return err
	}
	if len(a.SKUs) == 0 {
		return &ValidationError{Kind: KindIssueInvoice, Field: "skus", Reason: "at least one sku is required"}
	}
	for _, sku := range a.SKUs {
		if strings.TrimSpace(sku) == "" {
			return &ValidationError{Kind: KindIssueInvoice, Field: "skus", Reason: "sku cannot be empty"}
		}
	}
	if a.DiscountPercent < 0 || a.DiscountPercent > MaxDiscountPercent {
		return &ValidationError{
			Kind:   KindIssueInvoice,
			Field:  "discount_percent",
			Reason: "must be between 0 and 50",
		}
	}
	return nil
}

// Validate implements Action.
func (a CancelInvoice) Validate() error {
	return requireText(KindCancelInvoice, "invoice_id", a.InvoiceID)
}

// Validate implements Action.
func (a CreateRule) Validate() error {
	if err := requireText(KindCreateRule, "email", a.Email); err != nil {
		return err
	}
	return requireText(KindCreateRule, "rule", a.Rule)
}

// Validate implements Action.
func (a ReportCompletion) Validate() error {
	if !a.Code.IsValid() {
		return &ValidationError{
			Kind:   KindReportCompletion,
			Field:  "code",
			Reason: "must be one of completed, failed",
		}
	}
	return nil
}

func requireText(kind Kind, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Kind: kind, Field: field, Reason: "is required"}
	}
	return nil
}

// MarshalJSON writes the payload together with its tool tag.
func (a SendEmail) MarshalJSON() ([]byte, error) {
	type payload SendEmail
	p := payload(a)
	if p.Files == nil {
		p.Files = []string{}
	}
	return marshalTagged(KindSendEmail, p)
}

// MarshalJSON writes the payload together with its tool tag.
func (a GetCustomerData) MarshalJSON() ([]byte, error) {
	type payload GetCustomerData
	return marshalTagged(KindGetCustomerData, payload(a))
}

// MarshalJSON writes the payload together with its tool tag.
func (a IssueInvoice) MarshalJSON() ([]byte, error) {
	type payload IssueInvoice
	return marshalTagged(KindIssueInvoice, payload(a))
}

// MarshalJSON writes the payload together with its tool tag.
func (a CancelInvoice) MarshalJSON() ([]byte, error) {
	type payload CancelInvoice
	return marshalTagged(KindCancelInvoice, payload(a))
}

// MarshalJSON writes the payload together with its tool tag.
func (a CreateRule) MarshalJSON() ([]byte, error) {
	type payload CreateRule
	return marshalTagged(KindCreateRule, payload(a))
}

// MarshalJSON writes the payload together with its tool tag.
func (a ReportCompletion) MarshalJSON() ([]byte, error) {
	type payload ReportCompletion
	p := payload(a)
	if p.CompletedSteps == nil {
		p.CompletedSteps = []string{}
	}
	return marshalTagged(KindReportCompletion, p)
}

// marshalTagged prepends the "tool" discriminant to an encoded object.
func marshalTagged(kind Kind, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(body)+len(tag)+9)
	out = append(out, `{"tool":`...)
	out = append(out, tag...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}
