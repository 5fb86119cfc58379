package action_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/sgr-go/domain/action"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want action.Action
	}{
		{
			name: "send email",
			raw:  `{"tool":"send_email","subject":"Invoice","message":"Attached","files":["/invoices/INV-1.pdf"],"recipient_email":"sama@openai.com"}`,
			want: action.SendEmail{
				Subject:        "Invoice",
				Message:        "Attached",
				Files:          []string{"/invoices/INV-1.pdf"},
				RecipientEmail: "sama@openai.com",
			},
		},
		{
			name: "get customer data",
			raw:  `{"tool":"get_customer_data","email":"elon@x.com"}`,
			want: action.GetCustomerData{Email: "elon@x.com"},
		},
		{
			name: "issue invoice",
			raw:  `{"tool":"issue_invoice","email":"elon@x.com","skus":["SKU-205","SKU-210"],"discount_percent":15}`,
			want: action.IssueInvoice{Email: "elon@x.com", SKUs: []string{"SKU-205", "SKU-210"}, DiscountPercent: 15},
		},
		{
			name: "cancel invoice",
			raw:  `{"tool":"cancel_invoice","invoice_id":"INV-2","reason":"redo"}`,
			want: action.CancelInvoice{InvoiceID: "INV-2", Reason: "redo"},
		},
		{
			name: "remember",
			raw:  `{"tool":"remember","email":"sama@openai.com","rule":"5% discount"}`,
			want: action.CreateRule{Email: "sama@openai.com", Rule: "5% discount"},
		},
		{
			name: "report completion",
			raw:  `{"tool":"report_completion","completed_steps_laconic":["rule saved"],"code":"completed"}`,
			want: action.ReportCompletion{CompletedSteps: []string{"rule saved"}, Code: action.OutcomeCompleted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := action.Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `send an email`},
		{name: "array", raw: `["send_email"]`},
		{name: "missing tag", raw: `{"email":"a@b.c"}`},
		{name: "tag not a string", raw: `{"tool":7,"email":"a@b.c"}`},
		{name: "unknown tag", raw: `{"tool":"delete_customer","email":"a@b.c"}`},
		{name: "unknown field", raw: `{"tool":"get_customer_data","email":"a@b.c","priority":"high"}`},
		{name: "missing field", raw: `{"tool":"cancel_invoice","invoice_id":"INV-1"}`},
		{name: "wrong type", raw: `{"tool":"issue_invoice","email":"a@b.c","skus":"SKU-205","discount_percent":0}`},
		{name: "null discount", raw: `{"tool":"issue_invoice","email":"a@b.c","skus":["SKU-205"],"discount_percent":null}`},
		{name: "null reason", raw: `{"tool":"cancel_invoice","invoice_id":"INV-1","reason":null}`},
		{name: "null skus", raw: `{"tool":"issue_invoice","email":"a@b.c","skus":null,"discount_percent":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := action.Decode([]byte(tt.raw))
			if !errors.Is(err, action.ErrDecode) {
				t.Errorf("Decode() error = %v, want ErrDecode", err)
			}
		})
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := action.Decode([]byte(`{"tool":"refund"}`))
	if !errors.Is(err, action.ErrUnknownKind) {
		t.Errorf("Decode() error = %v, want ErrUnknownKind", err)
	}
}

func TestDecode_DoesNotValidate(t *testing.T) {
	t.Parallel()

	a, err := action.Decode([]byte(`{"tool":"issue_invoice","email":"a@b.c","skus":["SKU-205"],"discount_percent":90}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := a.Validate(); !errors.Is(err, action.ErrValidation) {
		t.Errorf("Validate() error = %v, want ErrValidation", err)
	}
}

func TestRequiredFields(t *testing.T) {
	t.Parallel()

	for _, k := range action.Kinds() {
		if len(action.RequiredFields(k)) == 0 {
			t.Errorf("RequiredFields(%q) is empty", k)
		}
	}

	fields := action.RequiredFields(action.KindIssueInvoice)
	fields[0] = "mutated"
	if action.RequiredFields(action.KindIssueInvoice)[0] == "mutated" {
		t.Error("RequiredFields returned shared slice")
	}
}
