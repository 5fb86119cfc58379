package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/felixgeelhaar/sgr-go/domain/record"
)

func newTestStore(t *testing.T, opts ...Option) *RecordStore {
	t.Helper()

	store, err := NewRecordStore(record.DefaultCatalog(), DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("NewRecordStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestNewRecordStore_Errors(t *testing.T) {
	t.Parallel()

	t.Run("duplicate sku", func(t *testing.T) {
		t.Parallel()

		_, err := NewRecordStore([]record.Product{
			{SKU: "SKU-1", Name: "a", Price: 1},
			{SKU: "SKU-1", Name: "b", Price: 2},
		}, DefaultConfig())
		if !errors.Is(err, record.ErrDuplicateSKU) {
			t.Errorf("NewRecordStore() error = %v, want ErrDuplicateSKU", err)
		}
	})

	t.Run("on-disk mode", func(t *testing.T) {
		t.Parallel()

		_, err := NewRecordStore(record.DefaultCatalog(), Config{})
		if !errors.Is(err, ErrNotInMemory) {
			t.Errorf("NewRecordStore() error = %v, want ErrNotInMemory", err)
		}
	})
}

func TestRecordStore_IssueInvoice(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	inv, err := store.IssueInvoice(ctx, "sama@openai.com", []string{"SKU-205", "SKU-210", "SKU-220"}, 5)
	if err != nil {
		t.Fatalf("IssueInvoice() error = %v", err)
	}
	if inv.ID != "INV-1" || inv.File != "/invoices/INV-1.pdf" {
		t.Errorf("invoice = %+v", inv)
	}
	if inv.Total != 1863 {
		t.Errorf("Total = %v, want 1863", inv.Total)
	}
	if inv.DiscountAmount != 93.15 {
		t.Errorf("DiscountAmount = %v, want 93.15", inv.DiscountAmount)
	}

	_, err = store.IssueInvoice(ctx, "sama@openai.com", []string{"SKU-205", "SKU-999"}, 0)
	var nf *record.NotFoundError
	if !errors.As(err, &nf) || nf.Entity != record.EntityProduct || nf.ID != "SKU-999" {
		t.Fatalf("IssueInvoice() error = %v, want product SKU-999 not found", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Invoices != 1 {
		t.Errorf("Invoices = %d, want 1", stats.Invoices)
	}

	next, err := store.IssueInvoice(ctx, "elon@x.com", []string{"SKU-205"}, 0)
	if err != nil {
		t.Fatalf("IssueInvoice() error = %v", err)
	}
	if next.ID != "INV-2" {
		t.Errorf("ID after failed issue = %q, want INV-2", next.ID)
	}
}

func TestRecordStore_CancelInvoice(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := store.IssueInvoice(ctx, "elon@x.com", []string{"SKU-210"}, 0); err != nil {
			t.Fatalf("IssueInvoice() error = %v", err)
		}
	}

	inv, err := store.CancelInvoice(ctx, "INV-2", "wrong discount")
	if err != nil {
		t.Fatalf("CancelInvoice() error = %v", err)
	}
	if !inv.Void || inv.VoidReason != "wrong discount" {
		t.Errorf("invoice = %+v, want void with reason", inv)
	}

	if _, err := store.CancelInvoice(ctx, "INV-42", "gone"); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("CancelInvoice() error = %v, want ErrNotFound", err)
	}

	data, err := store.QueryCustomer(ctx, "elon@x.com")
	if err != nil {
		t.Fatalf("QueryCustomer() error = %v", err)
	}
	if len(data.Invoices) != 2 {
		t.Fatalf("Invoices = %d, want 2", len(data.Invoices))
	}
	if data.Invoices[0].Void || !data.Invoices[1].Void {
		t.Errorf("void flags = %v, %v; want only INV-2 void", data.Invoices[0].Void, data.Invoices[1].Void)
	}

	third, err := store.IssueInvoice(ctx, "elon@x.com", []string{"SKU-205"}, 0)
	if err != nil {
		t.Fatalf("IssueInvoice() error = %v", err)
	}
	if third.ID != "INV-3" {
		t.Errorf("ID after cancel = %q, want INV-3", third.ID)
	}
}

func TestRecordStore_QueryCustomerExactMatch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	steps := []func() error{
		func() error { _, err := store.CreateRule(ctx, "sama@openai.com", "5% discount"); return err },
		func() error { _, err := store.CreateRule(ctx, "Sama@OpenAI.com", "other"); return err },
		func() error { _, err := store.CreateRule(ctx, "sama@openai.com", "call him The SAMA"); return err },
		func() error {
			_, err := store.RecordEmail(ctx, "sama@openai.com", "Invoice", "Attached", []string{"/invoices/INV-1.pdf"})
			return err
		},
		func() error { _, err := store.RecordEmail(ctx, "finances@x.com", "Invoice", "Attached", nil); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	data, err := store.QueryCustomer(ctx, "sama@openai.com")
	if err != nil {
		t.Fatalf("QueryCustomer() error = %v", err)
	}
	if len(data.Rules) != 2 || data.Rules[0].Rule != "5% discount" || data.Rules[1].Rule != "call him The SAMA" {
		t.Errorf("Rules = %+v", data.Rules)
	}
	if len(data.Emails) != 1 || data.Emails[0].Files[0] != "/invoices/INV-1.pdf" {
		t.Errorf("Emails = %+v", data.Emails)
	}

	empty, err := store.QueryCustomer(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("QueryCustomer() error = %v", err)
	}
	if empty.Rules == nil || empty.Invoices == nil || empty.Emails == nil {
		t.Error("empty result has nil slices")
	}

	stats, _ := store.Stats(ctx)
	if stats != (record.Stats{Rules: 3, Emails: 2}) {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestRecordStore_InsertionOrderPastOneByte(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	const n = 300
	for i := 0; i < n; i++ {
		if _, err := store.CreateRule(ctx, "a@b.c", fmt.Sprintf("rule %d", i)); err != nil {
			t.Fatalf("CreateRule() error = %v", err)
		}
	}

	data, err := store.QueryCustomer(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("QueryCustomer() error = %v", err)
	}
	if len(data.Rules) != n {
		t.Fatalf("Rules = %d, want %d", len(data.Rules), n)
	}
	for i, r := range data.Rules {
		if want := fmt.Sprintf("rule %d", i); r.Rule != want {
			t.Fatalf("Rules[%d] = %q, want %q", i, r.Rule, want)
		}
	}
}

func TestRecordStore_ConcurrentIssueUniqueIDs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := store.IssueInvoice(ctx, "a@b.c", []string{"SKU-205"}, 0)
			if err != nil {
				t.Errorf("IssueInvoice() error = %v", err)
				return
			}
			ids <- inv.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Errorf("unique ids = %d, want %d", len(seen), n)
	}
}

func TestRecordStore_Products(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, WithKeyPrefix("sgr:"))
	ctx := context.Background()

	products, err := store.Products(ctx)
	if err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if len(products) != 3 || products[0].SKU != "SKU-205" || products[2].SKU != "SKU-220" {
		t.Errorf("Products() = %+v", products)
	}

	p, err := store.Product(ctx, "SKU-210")
	if err != nil {
		t.Fatalf("Product() error = %v", err)
	}
	if p.Name != "AGI 101 Course Team" || p.Price != 1290 {
		t.Errorf("Product() = %+v", p)
	}

	if _, err := store.Product(ctx, "SKU-000"); !errors.Is(err, record.ErrNotFound) {
		t.Errorf("Product() error = %v, want ErrNotFound", err)
	}
}

func TestRecordStore_CancelledContext(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.CreateRule(ctx, "a@b.c", "r"); !errors.Is(err, context.Canceled) {
		t.Errorf("CreateRule() error = %v, want context.Canceled", err)
	}
	if _, err := store.QueryCustomer(ctx, "a@b.c"); !errors.Is(err, context.Canceled) {
		t.Errorf("QueryCustomer() error = %v, want context.Canceled", err)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats != (record.Stats{}) {
		t.Errorf("Stats() = %+v, want empty", stats)
	}
}
