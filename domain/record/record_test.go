package record_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/sgr-go/domain/record"
)

func TestDiscountAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total   float64
		percent int
		want    float64
	}{
		{total: 1863, percent: 5, want: 93.15},
		{total: 258, percent: 0, want: 0},
		{total: 258, percent: 50, want: 129},
		{total: 315, percent: 15, want: 47.25},
		{total: 0.5, percent: 1, want: 0.01},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v@%d", tt.total, tt.percent), func(t *testing.T) {
			t.Parallel()

			if got := record.DiscountAmount(tt.total, tt.percent); got != tt.want {
				t.Errorf("DiscountAmount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvoiceIDAndFile(t *testing.T) {
	t.Parallel()

	id := record.InvoiceID(3)
	if id != "INV-3" {
		t.Errorf("InvoiceID(3) = %q", id)
	}
	if f := record.InvoiceFile(id); f != "/invoices/INV-3.pdf" {
		t.Errorf("InvoiceFile() = %q", f)
	}
}

func TestNotFoundError(t *testing.T) {
	t.Parallel()

	var err error = &record.NotFoundError{Entity: record.EntityProduct, ID: "SKU-999"}
	if !errors.Is(err, record.ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false")
	}
	if err.Error() != "product SKU-999 not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	catalog := record.DefaultCatalog()
	if len(catalog) != 3 {
		t.Fatalf("len(DefaultCatalog()) = %d, want 3", len(catalog))
	}
	seen := make(map[string]bool)
	for _, p := range catalog {
		if seen[p.SKU] {
			t.Errorf("duplicate sku %s", p.SKU)
		}
		seen[p.SKU] = true
		if p.Price <= 0 {
			t.Errorf("%s price = %v", p.SKU, p.Price)
		}
	}
}
