package record

import (
	"errors"
	"fmt"
)

// Domain errors for the record store.
var (
	// ErrNotFound indicates a referenced product or invoice does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateSKU indicates a catalog lists the same SKU twice.
	ErrDuplicateSKU = errors.New("duplicate sku in catalog")
)

// Entity names used in NotFoundError.
const (
	EntityProduct = "product"
	EntityInvoice = "invoice"
)

// NotFoundError identifies the missing record.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// Is reports whether the target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
