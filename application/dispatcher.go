package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/sgr-go/domain/action"
	"github.com/felixgeelhaar/sgr-go/domain/record"
)

// Dispatcher performs actions against the record store.
type Dispatcher struct {
	store record.Store
}

// NewDispatcher creates a dispatcher over the store.
func NewDispatcher(store record.Store) (*Dispatcher, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	return &Dispatcher{store: store}, nil
}

// Dispatch performs one action and returns its result. Validation and
// not-found failures are returned as failed results; only context errors
// and unexpected store failures are returned as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, a action.Action) (action.Result, error) {
	if err := ctx.Err(); err != nil {
		return action.Result{}, err
	}
	if a == nil {
		return action.Fail(action.FailureUnsupported, "no action"), nil
	}
	if err := a.Validate(); err != nil {
		return action.FailValidation(err), nil
	}

	var (
		data any
		err  error
	)
	switch act := a.(type) {
	case action.SendEmail:
		data, err = d.store.RecordEmail(ctx, act.RecipientEmail, act.Subject, act.Message, act.Files)
	case action.GetCustomerData:
		data, err = d.store.QueryCustomer(ctx, act.Email)
	case action.IssueInvoice:
		data, err = d.store.IssueInvoice(ctx, act.Email, act.SKUs, act.DiscountPercent)
	case action.CancelInvoice:
		data, err = d.store.CancelInvoice(ctx, act.InvoiceID, act.Reason)
	case action.CreateRule:
		data, err = d.store.CreateRule(ctx, act.Email, act.Rule)
	default:
		return action.Fail(action.FailureUnsupported, fmt.Sprintf("unsupported action: %s", a.Kind())), nil
	}

	if err != nil {
		var nf *record.NotFoundError
		if errors.As(err, &nf) {
			return action.Fail(action.FailureNotFound, notFoundMessage(nf)), nil
		}
		return action.Result{}, fmt.Errorf("dispatch %s: %w", a.Kind(), err)
	}

	res, err := action.Success(data)
	if err != nil {
		return action.Result{}, fmt.Errorf("encode %s result: %w", a.Kind(), err)
	}
	return res, nil
}

// notFoundMessage matches the phrasing the oracle sees for missing records,
// e.g. "Product SKU-9 not found".
func notFoundMessage(nf *record.NotFoundError) string {
	entity := nf.Entity
	if entity != "" {
		entity = strings.ToUpper(entity[:1]) + entity[1:]
	}
	return fmt.Sprintf("%s %s not found", entity, nf.ID)
}
