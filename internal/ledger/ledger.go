package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind names a persisted collection. Each kind is backed by its own table.
type Kind string

const (
	KindClient              Kind = "clients"
	KindTransaction         Kind = "transactions"
	KindSale                Kind = "sales"
	KindExpense             Kind = "expenses"
	KindProduct             Kind = "products"
	KindCreditor            Kind = "creditors"
	KindCreditorTransaction Kind = "creditor_transactions"
)

// Kinds lists every collection in the order they are persisted and restored.
// Parents come before the records that reference them.
var Kinds = []Kind{
	KindClient,
	KindTransaction,
	KindSale,
	KindExpense,
	KindProduct,
	KindCreditor,
	KindCreditorTransaction,
}

// ParseKind maps a collection name to its Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}

	return k, nil
}

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// Record is implemented by the seven persisted entity types only.
type Record interface {
	Kind() Kind
	RecordID() uuid.UUID
	setID(id uuid.UUID)
}

// Client is a party that buys on credit or borrows from the owner.
type Client struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// Transaction is an entry in a client's ledger. A positive amount is a charge or loan
// (the client owes more), a negative amount is a payment.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Sale is a standalone sale not tied to any client.
type Sale struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Expense is money spent by the owner. CreditorID is a weak reference: the creditor
// may be deleted later and the expense keeps pointing at it.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreditorID  *uuid.UUID      `json:"creditor_id,omitempty"`
}

// Product is a sellable item. Quantity is the current stock.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

// Creditor is a party the owner buys from or owes money to.
type Creditor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

// CreditorTransaction is an entry in a creditor's ledger. A positive amount is a
// purchase (the owner owes more), a negative amount is a payment.
type CreditorTransaction struct {
	ID          uuid.UUID       `json:"id"`
	CreditorID  uuid.UUID       `json:"creditor_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

func (*Client) Kind() Kind              { return KindClient }
func (*Transaction) Kind() Kind         { return KindTransaction }
func (*Sale) Kind() Kind                { return KindSale }
func (*Expense) Kind() Kind             { return KindExpense }
func (*Product) Kind() Kind             { return KindProduct }
func (*Creditor) Kind() Kind            { return KindCreditor }
func (*CreditorTransaction) Kind() Kind { return KindCreditorTransaction }

func (c *Client) RecordID() uuid.UUID              { return c.ID }
func (t *Transaction) RecordID() uuid.UUID         { return t.ID }
func (s *Sale) RecordID() uuid.UUID                { return s.ID }
func (e *Expense) RecordID() uuid.UUID             { return e.ID }
func (p *Product) RecordID() uuid.UUID             { return p.ID }
func (c *Creditor) RecordID() uuid.UUID            { return c.ID }
func (t *CreditorTransaction) RecordID() uuid.UUID { return t.ID }

func (c *Client) setID(id uuid.UUID)              { c.ID = id }
func (t *Transaction) setID(id uuid.UUID)         { t.ID = id }
func (s *Sale) setID(id uuid.UUID)                { s.ID = id }
func (e *Expense) setID(id uuid.UUID)             { e.ID = id }
func (p *Product) setID(id uuid.UUID)             { p.ID = id }
func (c *Creditor) setID(id uuid.UUID)            { c.ID = id }
func (t *CreditorTransaction) setID(id uuid.UUID) { t.ID = id }

// NewID returns a fresh time-ordered identifier.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return uuid.New()
	}

	return id
}

// Day strips the time of day, keeping the calendar date as seen in t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
