package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/felixgeelhaar/sgr-go/domain/record"
)

// Key namespaces. Sequenced records use an 8-byte big-endian suffix so that
// prefix iteration returns them in insertion order.
const (
	nsProduct   = "product:"
	nsRule      = "rule:"
	nsInvoice   = "invoice:"
	nsInvoiceID = "invoice-id:"
	nsEmail     = "email:"
	nsSeq       = "seq:"
)

// RecordStore is a BadgerDB-backed implementation of record.Store.
type RecordStore struct {
	db        *badger.DB
	keyPrefix string
	// writes serializes read-modify-write transactions so that sequence
	// counters never conflict.
	writes sync.Mutex
}

// NewRecordStore opens an in-memory database seeded with the given catalog.
func NewRecordStore(products []record.Product, cfg Config, opts ...Option) (*RecordStore, error) {
	// Apply options
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &RecordStore{db: db, keyPrefix: cfg.KeyPrefix}
	if err := s.seed(products); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

func (s *RecordStore) seed(products []record.Product) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range products {
			key := s.key(nsProduct, p.SKU)
			if _, err := txn.Get(key); err == nil {
				return fmt.Errorf("%w: %s", record.ErrDuplicateSKU, p.SKU)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := setJSON(txn, key, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *RecordStore) key(ns, id string) []byte {
	return []byte(s.keyPrefix + ns + id)
}

// seqKey formats the key of the n-th record of a namespace.
func (s *RecordStore) seqKey(ns string, n uint64) []byte {
	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, n)
	return append([]byte(s.keyPrefix+ns), seq...)
}

// next increments and returns the counter of a namespace.
func (s *RecordStore) next(txn *badger.Txn, ns string) (uint64, error) {
	n, err := s.count(txn, ns)
	if err != nil {
		return 0, err
	}
	n++

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	if err := txn.Set(s.key(nsSeq, ns), buf); err != nil {
		return 0, err
	}
	return n, nil
}

// count returns the number of records appended to a namespace.
func (s *RecordStore) count(txn *badger.Txn, ns string) (uint64, error) {
	item, err := txn.Get(s.key(nsSeq, ns))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var n uint64
	err = item.Value(func(val []byte) error {
		if len(val) == 8 {
			n = binary.BigEndian.Uint64(val)
		}
		return nil
	})
	return n, err
}

// appendRecord stores v as the next record of a namespace.
func (s *RecordStore) appendRecord(ns string, v any) error {
	s.writes.Lock()
	defer s.writes.Unlock()

	return s.db.Update(func(txn *badger.Txn) error {
		n, err := s.next(txn, ns)
		if err != nil {
			return err
		}
		return setJSON(txn, s.seqKey(ns, n), v)
	})
}

// CreateRule appends a rule for a customer.
func (s *RecordStore) CreateRule(ctx context.Context, email, rule string) (record.Rule, error) {
	if err := ctx.Err(); err != nil {
		return record.Rule{}, err
	}

	r := record.Rule{Email: email, Rule: rule}
	if err := s.appendRecord(nsRule, r); err != nil {
		return record.Rule{}, err
	}
	return r, nil
}

// QueryCustomer returns every record matching the email exactly.
func (s *RecordStore) QueryCustomer(ctx context.Context, email string) (record.CustomerData, error) {
	if err := ctx.Err(); err != nil {
		return record.CustomerData{}, err
	}

	data := record.CustomerData{
		Rules:    []record.Rule{},
		Invoices: []record.Invoice{},
		Emails:   []record.EmailRecord{},
	}

	err := s.db.View(func(txn *badger.Txn) error {
		if err := scan(txn, s.keyPrefix+nsRule, func(r record.Rule) {
			if r.Email == email {
				data.Rules = append(data.Rules, r)
			}
		}); err != nil {
			return err
		}
		if err := scan(txn, s.keyPrefix+nsInvoice, func(inv record.Invoice) {
			if inv.Email == email {
				data.Invoices = append(data.Invoices, inv)
			}
		}); err != nil {
			return err
		}
		return scan(txn, s.keyPrefix+nsEmail, func(e record.EmailRecord) {
			if e.To == email {
				data.Emails = append(data.Emails, e)
			}
		})
	})
	if err != nil {
		return record.CustomerData{}, err
	}
	return data, nil
}

// IssueInvoice creates an invoice priced from the catalog.
func (s *RecordStore) IssueInvoice(ctx context.Context, email string, skus []string, discountPercent int) (record.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return record.Invoice{}, err
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	var inv record.Invoice
	err := s.db.Update(func(txn *badger.Txn) error {
		var total float64
		for _, sku := range skus {
			var p record.Product
			if err := getJSON(txn, s.key(nsProduct, sku), &p); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return &record.NotFoundError{Entity: record.EntityProduct, ID: sku}
				}
				return err
			}
			total += p.Price
		}

		n, err := s.next(txn, nsInvoice)
		if err != nil {
			return err
		}
		id := record.InvoiceID(int(n))
		inv = record.Invoice{
			ID:              id,
			Email:           email,
			File:            record.InvoiceFile(id),
			SKUs:            append([]string{}, skus...),
			DiscountPercent: discountPercent,
			DiscountAmount:  record.DiscountAmount(total, discountPercent),
			Total:           total,
		}

		primary := s.seqKey(nsInvoice, n)
		if err := setJSON(txn, primary, inv); err != nil {
			return err
		}
		return txn.Set(s.key(nsInvoiceID, id), primary)
	})
	if err != nil {
		return record.Invoice{}, err
	}
	return inv, nil
}

// CancelInvoice marks an invoice void and records the reason.
func (s *RecordStore) CancelInvoice(ctx context.Context, id, reason string) (record.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return record.Invoice{}, err
	}

	s.writes.Lock()
	defer s.writes.Unlock()

	var inv record.Invoice
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(nsInvoiceID, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &record.NotFoundError{Entity: record.EntityInvoice, ID: id}
		}
		if err != nil {
			return err
		}
		primary, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		if err := getJSON(txn, primary, &inv); err != nil {
			return err
		}
		inv.Void = true
		inv.VoidReason = reason
		return setJSON(txn, primary, inv)
	})
	if err != nil {
		return record.Invoice{}, err
	}
	return inv, nil
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
	if err := s.appendRecord(nsEmail, e); err != nil {
		return record.EmailRecord{}, err
	}
	return e, nil
}

// Product looks up a catalog entry.
func (s *RecordStore) Product(ctx context.Context, sku string) (record.Product, error) {
	if err := ctx.Err(); err != nil {
		return record.Product{}, err
	}

	var p record.Product
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, s.key(nsProduct, sku), &p)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return record.Product{}, &record.NotFoundError{Entity: record.EntityProduct, ID: sku}
	}
	if err != nil {
		return record.Product{}, err
	}
	return p, nil
}

// Products lists the catalog in SKU order, which is key order.
func (s *RecordStore) Products(ctx context.Context) ([]record.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products := []record.Product{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, s.keyPrefix+nsProduct, func(p record.Product) {
			products = append(products, p)
		})
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Stats counts stored records.
func (s *RecordStore) Stats(ctx context.Context) (record.Stats, error) {
	if err := ctx.Err(); err != nil {
		return record.Stats{}, err
	}

	var stats record.Stats
	err := s.db.View(func(txn *badger.Txn) error {
		for ns, dst := range map[string]*int{nsRule: &stats.Rules, nsInvoice: &stats.Invoices, nsEmail: &stats.Emails} {
			n, err := s.count(txn, ns)
			if err != nil {
				return err
			}
			*dst = int(n)
		}
		return nil
	})
	return stats, err
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// scan decodes every value under prefix in key order.
func scan[T any](txn *badger.Txn, prefix string, fn func(T)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return err
		}
		fn(v)
	}
	return nil
}

var _ record.Store = (*RecordStore)(nil)
