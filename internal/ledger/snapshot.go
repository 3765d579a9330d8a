package ledger

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Snapshot is the whole store, one named collection per kind, each in store order.
type Snapshot struct {
	Clients              []*Client              `json:"clients"`
	Transactions         []*Transaction         `json:"transactions"`
	Sales                []*Sale                `json:"sales"`
	Expenses             []*Expense             `json:"expenses"`
	Products             []*Product             `json:"products"`
	Creditors            []*Creditor            `json:"creditors"`
	CreditorTransactions []*CreditorTransaction `json:"creditor_transactions"`
}

// Records returns the records of one collection.
func (s *Snapshot) Records(kind Kind) []Record {
	switch kind {
	case KindClient:
		return toRecords(s.Clients)
	case KindTransaction:
		return toRecords(s.Transactions)
	case KindSale:
		return toRecords(s.Sales)
	case KindExpense:
		return toRecords(s.Expenses)
	case KindProduct:
		return toRecords(s.Products)
	case KindCreditor:
		return toRecords(s.Creditors)
	case KindCreditorTransaction:
		return toRecords(s.CreditorTransactions)
	}

	return nil
}

// Len is the total number of records across collections.
func (s *Snapshot) Len() int {
	n := 0
	for _, k := range Kinds {
		n += len(s.Records(k))
	}

	return n
}

// Validate checks that every record is present and has a unique id within its
// collection, and that every ledger entry points at an existing client or creditor.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: no snapshot", ErrInvalidSnapshot)
	}

	ids := make(map[Kind]map[uuid.UUID]struct{}, len(Kinds))

	for _, k := range Kinds {
		if i := s.nullAt(k); i >= 0 {
			return fmt.Errorf("%w: %s record %d is null", ErrInvalidSnapshot, k, i)
		}

		seen := make(map[uuid.UUID]struct{})

		for _, r := range s.Records(k) {
			if r.RecordID() == uuid.Nil {
				return fmt.Errorf("%w: %s record without id", ErrInvalidSnapshot, k)
			}

			if _, dup := seen[r.RecordID()]; dup {
				return fmt.Errorf("%w: duplicate %s id %s", ErrInvalidSnapshot, k, r.RecordID())
			}

			seen[r.RecordID()] = struct{}{}
		}

		ids[k] = seen
	}

	for _, t := range s.Transactions {
		if _, ok := ids[KindClient][t.ClientID]; !ok {
			return fmt.Errorf("%w: transaction %s references missing client %s", ErrInvalidSnapshot, t.ID, t.ClientID)
		}
	}

	for _, t := range s.CreditorTransactions {
		if _, ok := ids[KindCreditor][t.CreditorID]; !ok {
			return fmt.Errorf("%w: creditor transaction %s references missing creditor %s", ErrInvalidSnapshot, t.ID, t.CreditorID)
		}
	}

	return nil
}

// Snapshot reads every collection inside one unit of work so the result is consistent.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot

	err := s.inTx(ctx, "snapshot", func(tx Tx) error {
		for _, k := range Kinds {
			recs, err := tx.List(ctx, k)
			if err != nil {
				return fmt.Errorf("listing %s: %w", k, err)
			}

			if err := snap.set(k, recs); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// Restore replaces the whole store with snap. Either every collection is replaced or
// nothing changes.
func (s *Service) Restore(ctx context.Context, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	return s.inTx(ctx, "restore", func(tx Tx) error {
		for _, k := range slices.Backward(Kinds) {
			if err := tx.Truncate(ctx, k); err != nil {
				return fmt.Errorf("clearing %s: %w", k, err)
			}
		}

		for _, k := range Kinds {
			for _, r := range snap.Records(k) {
				normalizeDates(r)

				if err := tx.Upsert(ctx, r); err != nil {
					return fmt.Errorf("restoring %s %s: %w", k, r.RecordID(), err)
				}
			}
		}

		return nil
	})
}

// ImportResult splits imported products into new ones and restocked existing ones.
type ImportResult struct {
	Created []*Product
	Updated []*Product
}

// ImportProducts merges products into the inventory in one unit of work. A product
// whose name matches an existing one (ignoring case and surrounding space) replaces
// its price, keeps its description unless a new one is given, and adds to its stock.
func (s *Service) ImportProducts(ctx context.Context, products []*Product) (*ImportResult, error) {
	for _, p := range products {
		if p.Quantity < 0 {
			return nil, fmt.Errorf("import products: %w: %q has %d", ErrInvalidQuantity, p.Name, p.Quantity)
		}
	}

	var res ImportResult

	err := s.inTx(ctx, "import products", func(tx Tx) error {
		recs, err := tx.List(ctx, KindProduct)
		if err != nil {
			return fmt.Errorf("listing products: %w", err)
		}

		byName := make(map[string]*Product, len(recs))

		for _, r := range recs {
			if p, ok := r.(*Product); ok {
				byName[productKey(p.Name)] = p
			}
		}

		for _, in := range products {
			existing, ok := byName[productKey(in.Name)]
			if !ok {
				p := &Product{Name: strings.TrimSpace(in.Name), Description: in.Description, Price: in.Price, Quantity: in.Quantity}
				if err := insertOrReplace(ctx, tx, p); err != nil {
					return fmt.Errorf("creating %q: %w", p.Name, err)
				}

				byName[productKey(p.Name)] = p
				res.Created = append(res.Created, p)

				continue
			}

			if existing.Quantity > math.MaxInt64-in.Quantity {
				return fmt.Errorf("%w: stock of %q would overflow", ErrInvalidQuantity, existing.Name)
			}

			existing.Price = in.Price
			existing.Quantity += in.Quantity

			if in.Description != "" {
				existing.Description = in.Description
			}

			if err := tx.Upsert(ctx, existing); err != nil {
				return fmt.Errorf("updating %q: %w", existing.Name, err)
			}

			if !slices.Contains(res.Created, existing) && !slices.Contains(res.Updated, existing) {
				res.Updated = append(res.Updated, existing)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

func productKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// nullAt is the index of the first nil record in a collection, or -1.
func (s *Snapshot) nullAt(kind Kind) int {
	switch kind {
	case KindClient:
		return firstNil(s.Clients)
	case KindTransaction:
		return firstNil(s.Transactions)
	case KindSale:
		return firstNil(s.Sales)
	case KindExpense:
		return firstNil(s.Expenses)
	case KindProduct:
		return firstNil(s.Products)
	case KindCreditor:
		return firstNil(s.Creditors)
	case KindCreditorTransaction:
		return firstNil(s.CreditorTransactions)
	}

	return -1
}

func firstNil[R comparable](items []R) int {
	var zero R

	for i, it := range items {
		if it == zero {
			return i
		}
	}

	return -1
}

func (s *Snapshot) set(kind Kind, recs []Record) error {
	var err error

	switch kind {
	case KindClient:
		s.Clients, err = fromRecords[*Client](recs)
	case KindTransaction:
		s.Transactions, err = fromRecords[*Transaction](recs)
	case KindSale:
		s.Sales, err = fromRecords[*Sale](recs)
	case KindExpense:
		s.Expenses, err = fromRecords[*Expense](recs)
	case KindProduct:
		s.Products, err = fromRecords[*Product](recs)
	case KindCreditor:
		s.Creditors, err = fromRecords[*Creditor](recs)
	case KindCreditorTransaction:
		s.CreditorTransactions, err = fromRecords[*CreditorTransaction](recs)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	return err
}

func toRecords[R Record](items []R) []Record {
	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = it
	}

	return out
}

func fromRecords[R Record](recs []Record) ([]R, error) {
	out := make([]R, 0, len(recs))

	for _, rec := range recs {
		r, ok := rec.(R)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected record type %T", ErrPersistence, rec)
		}

		out = append(out, r)
	}

	return out, nil
}
