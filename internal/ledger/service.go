package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Get(ctx context.Context, kind Kind, id uuid.UUID) (Record, error)
	List(ctx context.Context, kind Kind) ([]Record, error)
	ListTransactions(ctx context.Context, clientID uuid.UUID) ([]*Transaction, error)
	ListCreditorTransactions(ctx context.Context, creditorID uuid.UUID) ([]*CreditorTransaction, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is a unit of work over the store. Nothing written through it is visible to
// readers until Commit succeeds.
type Tx interface {
	Get(ctx context.Context, kind Kind, id uuid.UUID) (Record, error)
	List(ctx context.Context, kind Kind) ([]Record, error)
	Upsert(ctx context.Context, r Record) error
	Delete(ctx context.Context, kind Kind, id uuid.UUID) error
	DeleteByParent(ctx context.Context, kind Kind, parentID uuid.UUID) (int64, error)
	Truncate(ctx context.Context, kind Kind) error
	Commit() error
	Rollback() error
}

// Service is the ledger's entry point. Writes are serialized; every write that touches
// more than one record goes through a single Tx.
type Service struct {
	repo Repository
	mu   sync.Mutex
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Upsert inserts r when its id is unset, assigning a new one, or replaces the stored
// record with the same id in place.
func (s *Service) Upsert(ctx context.Context, r Record) (Record, error) {
	if r == nil {
		return nil, fmt.Errorf("upsert: %w: nil record", ErrUnknownKind)
	}

	isNew := r.RecordID() == uuid.Nil

	err := s.inTx(ctx, "upsert "+string(r.Kind()), func(tx Tx) error {
		if err := checkParent(ctx, tx, r); err != nil {
			return err
		}

		return insertOrReplace(ctx, tx, r)
	})
	if err != nil {
		// Never hand back an id that was not persisted.
		if isNew {
			r.setID(uuid.Nil)
		}

		return nil, err
	}

	return r, nil
}

func (s *Service) SaveClient(ctx context.Context, c *Client) (*Client, error) {
	_, err := s.Upsert(ctx, c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) SaveTransaction(ctx context.Context, t *Transaction) (*Transaction, error) {
	_, err := s.Upsert(ctx, t)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// SaveSale records a manual sale. Stock is not checked or touched.
func (s *Service) SaveSale(ctx context.Context, sale *Sale) (*Sale, error) {
	_, err := s.Upsert(ctx, sale)
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func (s *Service) SaveProduct(ctx context.Context, p *Product) (*Product, error) {
	_, err := s.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) SaveCreditor(ctx context.Context, c *Creditor) (*Creditor, error) {
	_, err := s.Upsert(ctx, c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// SaveCreditorTransaction stores a creditor ledger entry without touching stock.
// Use RecordPurchase to receive inventory with it.
func (s *Service) SaveCreditorTransaction(ctx context.Context, t *CreditorTransaction) (*CreditorTransaction, error) {
	_, err := s.Upsert(ctx, t)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// Delete removes a record. Deleting a client or a creditor also removes its ledger
// entries in the same unit of work.
func (s *Service) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	if !kind.Valid() {
		return fmt.Errorf("delete: %w: %q", ErrUnknownKind, kind)
	}

	return s.inTx(ctx, "delete "+string(kind), func(tx Tx) error {
		if err := tx.Delete(ctx, kind, id); err != nil {
			return err
		}

		switch kind {
		case KindClient:
			_, err := tx.DeleteByParent(ctx, KindTransaction, id)
			return err
		case KindCreditor:
			_, err := tx.DeleteByParent(ctx, KindCreditorTransaction, id)
			return err
		}

		return nil
	})
}

// Get returns the record of the given kind, or an error wrapping ErrNotFound.
func (s *Service) Get(ctx context.Context, kind Kind, id uuid.UUID) (Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("get: %w: %q", ErrUnknownKind, kind)
	}

	r, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, classify("get "+string(kind), err)
	}

	return r, nil
}

// All returns every record of a kind in store order.
func (s *Service) All(ctx context.Context, kind Kind) ([]Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("list: %w: %q", ErrUnknownKind, kind)
	}

	rs, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, classify("list "+string(kind), err)
	}

	return rs, nil
}

func (s *Service) Client(ctx context.Context, id uuid.UUID) (*Client, error) {
	return get[*Client](ctx, s, KindClient, id)
}

func (s *Service) Creditor(ctx context.Context, id uuid.UUID) (*Creditor, error) {
	return get[*Creditor](ctx, s, KindCreditor, id)
}

func (s *Service) Product(ctx context.Context, id uuid.UUID) (*Product, error) {
	return get[*Product](ctx, s, KindProduct, id)
}

func (s *Service) Sale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return get[*Sale](ctx, s, KindSale, id)
}

func (s *Service) Expense(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return get[*Expense](ctx, s, KindExpense, id)
}

func (s *Service) Clients(ctx context.Context) ([]*Client, error) {
	return list[*Client](ctx, s, KindClient)
}

func (s *Service) Creditors(ctx context.Context) ([]*Creditor, error) {
	return list[*Creditor](ctx, s, KindCreditor)
}

func (s *Service) Products(ctx context.Context) ([]*Product, error) {
	return list[*Product](ctx, s, KindProduct)
}

func (s *Service) Sales(ctx context.Context) ([]*Sale, error) {
	return list[*Sale](ctx, s, KindSale)
}

func (s *Service) Expenses(ctx context.Context) ([]*Expense, error) {
	return list[*Expense](ctx, s, KindExpense)
}

// TransactionsFor returns a client's ledger entries. Ordering for display is up to the caller.
func (s *Service) TransactionsFor(ctx context.Context, clientID uuid.UUID) ([]*Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx, clientID)
	if err != nil {
		return nil, classify("list client transactions", err)
	}

	return txs, nil
}

func (s *Service) TransactionsForCreditor(ctx context.Context, creditorID uuid.UUID) ([]*CreditorTransaction, error) {
	txs, err := s.repo.ListCreditorTransactions(ctx, creditorID)
	if err != nil {
		return nil, classify("list creditor transactions", err)
	}

	return txs, nil
}

// ClientBalance is the sum of the client's transaction amounts. Positive means the
// client owes the owner.
func (s *Service) ClientBalance(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error) {
	txs, err := s.TransactionsFor(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}

	return sumAmounts(txs, func(t *Transaction) decimal.Decimal { return t.Amount }), nil
}

// CreditorBalance is the sum of the creditor's transaction amounts. Positive means the
// owner owes the creditor.
func (s *Service) CreditorBalance(ctx context.Context, creditorID uuid.UUID) (decimal.Decimal, error) {
	txs, err := s.TransactionsForCreditor(ctx, creditorID)
	if err != nil {
		return decimal.Zero, err
	}

	return sumAmounts(txs, func(t *CreditorTransaction) decimal.Decimal { return t.Amount }), nil
}

// TotalClientDebt adds up positive client balances only. Credits held by one client
// never offset another client's debt.
func (s *Service) TotalClientDebt(ctx context.Context) (decimal.Decimal, error) {
	balances, err := s.ClientBalances(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero

	for _, b := range balances {
		if b.Balance.IsPositive() {
			total = total.Add(b.Balance)
		}
	}

	return total, nil
}

// inTx runs fn in one store transaction while holding the write lock. Errors are
// classified so that storage failures always wrap ErrPersistence.
func (s *Service) inTx(ctx context.Context, op string, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return classify(op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return classify(op, err)
	}

	if err := tx.Commit(); err != nil {
		return classify(op, fmt.Errorf("commit: %w", err))
	}

	return nil
}

// insertOrReplace assigns an id to new records, dates undated entries today and
// writes r.
func insertOrReplace(ctx context.Context, tx Tx, r Record) error {
	if r.RecordID() == uuid.Nil {
		r.setID(NewID())
	}

	defaultDates(r, time.Now())
	normalizeDates(r)

	return tx.Upsert(ctx, r)
}

// checkParent refuses ledger entries whose owning client or creditor does not exist.
func checkParent(ctx context.Context, tx Tx, r Record) error {
	switch v := r.(type) {
	case *Transaction:
		if _, err := tx.Get(ctx, KindClient, v.ClientID); err != nil {
			return fmt.Errorf("client %s: %w", v.ClientID, err)
		}
	case *CreditorTransaction:
		if _, err := tx.Get(ctx, KindCreditor, v.CreditorID); err != nil {
			return fmt.Errorf("creditor %s: %w", v.CreditorID, err)
		}
	}

	return nil
}

func defaultDates(r Record, now time.Time) {
	switch v := r.(type) {
	case *Transaction:
		v.Date = orDay(v.Date, now)
	case *Sale:
		v.Date = orDay(v.Date, now)
	case *Expense:
		v.Date = orDay(v.Date, now)
	case *CreditorTransaction:
		v.Date = orDay(v.Date, now)
	}
}

func orDay(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}

	return t
}

func normalizeDates(r Record) {
	switch v := r.(type) {
	case *Transaction:
		v.Date = Day(v.Date)
	case *Sale:
		v.Date = Day(v.Date)
	case *Expense:
		v.Date = Day(v.Date)
	case *CreditorTransaction:
		v.Date = Day(v.Date)
	}
}

// classify keeps ledger rule violations as they are and marks everything else as a
// persistence failure.
func classify(op string, err error) error {
	for _, rule := range []error{
		ErrNotFound, ErrUnknownKind, ErrInsufficientStock, ErrInvalidQuantity, ErrInvalidSnapshot, ErrPersistence,
	} {
		if errors.Is(err, rule) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func get[R Record](ctx context.Context, s *Service, kind Kind, id uuid.UUID) (R, error) {
	var zero R

	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return zero, err
	}

	r, ok := rec.(R)
	if !ok {
		return zero, fmt.Errorf("get %s: %w: unexpected record type %T", kind, ErrPersistence, rec)
	}

	return r, nil
}

func list[R Record](ctx context.Context, s *Service, kind Kind) ([]R, error) {
	recs, err := s.All(ctx, kind)
	if err != nil {
		return nil, err
	}

	out := make([]R, 0, len(recs))

	for _, rec := range recs {
		r, ok := rec.(R)
		if !ok {
			return nil, fmt.Errorf("list %s: %w: unexpected record type %T", kind, ErrPersistence, rec)
		}

		out = append(out, r)
	}

	return out, nil
}

func sumAmounts[T any](items []T, amount func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(amount(it))
	}

	return total
}
