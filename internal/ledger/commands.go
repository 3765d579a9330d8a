package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventorySale sells Quantity units of a product. With a ClientID the sale is
// charged to that client's ledger, otherwise it is recorded as a standalone Sale.
type InventorySale struct {
	ProductID   uuid.UUID
	Quantity    int64
	ClientID    *uuid.UUID
	Description string
	Date        time.Time
}

// SaleResult holds every record written by SellFromInventory. Exactly one of Sale
// and Transaction is set.
type SaleResult struct {
	Product     *Product
	Sale        *Sale
	Transaction *Transaction
}

func (r *SaleResult) Records() []Record {
	out := []Record{r.Product}
	if r.Sale != nil {
		out = append(out, r.Sale)
	}

	if r.Transaction != nil {
		out = append(out, r.Transaction)
	}

	return out
}

// Amount is the value of the sale, price times quantity.
func (r *SaleResult) Amount() decimal.Decimal {
	if r.Sale != nil {
		return r.Sale.Amount
	}

	return r.Transaction.Amount
}

// SellFromInventory decrements stock and records the sale in one unit of work. Asking
// for more units than are in stock fails with ErrInsufficientStock and writes nothing.
func (s *Service) SellFromInventory(ctx context.Context, cmd InventorySale) (*SaleResult, error) {
	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("sell from inventory: %w: %d", ErrInvalidQuantity, cmd.Quantity)
	}

	date := cmd.Date
	if date.IsZero() {
		date = time.Now()
	}

	var res SaleResult

	err := s.inTx(ctx, "sell from inventory", func(tx Tx) error {
		p, err := txGet[*Product](ctx, tx, KindProduct, cmd.ProductID)
		if err != nil {
			return fmt.Errorf("product %s: %w", cmd.ProductID, err)
		}

		if p.Quantity < cmd.Quantity {
			return fmt.Errorf("%w: %q has %d, requested %d", ErrInsufficientStock, p.Name, p.Quantity, cmd.Quantity)
		}

		amount := p.Price.Mul(decimal.NewFromInt(cmd.Quantity))

		desc := cmd.Description
		if desc == "" {
			desc = fmt.Sprintf("%s x%d", p.Name, cmd.Quantity)
		}

		var entry Record

		if cmd.ClientID != nil {
			t := &Transaction{ClientID: *cmd.ClientID, Amount: amount, Description: desc, Date: date}
			if err := checkParent(ctx, tx, t); err != nil {
				return err
			}

			res.Transaction = t
			entry = t
		} else {
			sale := &Sale{Amount: amount, Description: desc, Date: date}
			res.Sale = sale
			entry = sale
		}

		p.Quantity -= cmd.Quantity
		if err := tx.Upsert(ctx, p); err != nil {
			return fmt.Errorf("updating stock: %w", err)
		}

		res.Product = p

		return insertOrReplace(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// ExpenseResult holds the stored expense and, for new expenses paid to a creditor,
// the companion payment entry in that creditor's ledger.
type ExpenseResult struct {
	Expense *Expense
	Payment *CreditorTransaction
}

func (r *ExpenseResult) Records() []Record {
	out := []Record{r.Expense}
	if r.Payment != nil {
		out = append(out, r.Payment)
	}

	return out
}

// RecordExpense saves an expense. When the expense is new and names a creditor, a
// payment of -|amount| is added to that creditor's ledger in the same unit of work.
// Edits of existing expenses never touch the creditor's ledger.
func (s *Service) RecordExpense(ctx context.Context, e *Expense) (*ExpenseResult, error) {
	isNew := e.ID == uuid.Nil
	res := ExpenseResult{Expense: e}

	err := s.inTx(ctx, "record expense", func(tx Tx) error {
		syncCreditor := isNew && e.CreditorID != nil

		if syncCreditor {
			if _, err := tx.Get(ctx, KindCreditor, *e.CreditorID); err != nil {
				return fmt.Errorf("creditor %s: %w", *e.CreditorID, err)
			}
		}

		if err := insertOrReplace(ctx, tx, e); err != nil {
			return err
		}

		if !syncCreditor {
			return nil
		}

		res.Payment = &CreditorTransaction{
			CreditorID:  *e.CreditorID,
			Amount:      e.Amount.Abs().Neg(),
			Description: "Payment for expense: " + e.Description,
			Date:        e.Date,
		}

		return insertOrReplace(ctx, tx, res.Payment)
	})
	if err != nil {
		if isNew {
			e.ID = uuid.Nil
		}

		return nil, err
	}

	return &res, nil
}

// Purchase is a creditor ledger entry that may also bring stock in.
type Purchase struct {
	Transaction *CreditorTransaction
	ProductID   *uuid.UUID
	Quantity    int64
}

// PurchaseResult holds the stored entry and the restocked product, if any.
type PurchaseResult struct {
	Transaction *CreditorTransaction
	Product     *Product
}

func (r *PurchaseResult) Records() []Record {
	out := []Record{r.Transaction}
	if r.Product != nil {
		out = append(out, r.Product)
	}

	return out
}

// RecordPurchase saves a creditor transaction and, when it is new and carries a
// product with a positive quantity, adds that quantity to the product's stock.
// Editing an existing entry leaves stock alone.
func (s *Service) RecordPurchase(ctx context.Context, cmd Purchase) (*PurchaseResult, error) {
	if cmd.Transaction == nil {
		return nil, fmt.Errorf("record purchase: %w: missing creditor transaction", ErrNotFound)
	}

	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("record purchase: %w: %d", ErrInvalidQuantity, cmd.Quantity)
	}

	ct := cmd.Transaction
	isNew := ct.ID == uuid.Nil
	res := PurchaseResult{Transaction: ct}

	err := s.inTx(ctx, "record purchase", func(tx Tx) error {
		if err := checkParent(ctx, tx, ct); err != nil {
			return err
		}

		if isNew && cmd.ProductID != nil && cmd.Quantity > 0 {
			p, err := txGet[*Product](ctx, tx, KindProduct, *cmd.ProductID)
			if err != nil {
				return fmt.Errorf("product %s: %w", *cmd.ProductID, err)
			}

			if p.Quantity > math.MaxInt64-cmd.Quantity {
				return fmt.Errorf("%w: stock of %q would overflow", ErrInvalidQuantity, p.Name)
			}

			p.Quantity += cmd.Quantity
			if err := tx.Upsert(ctx, p); err != nil {
				return fmt.Errorf("updating stock: %w", err)
			}

			res.Product = p
		}

		return insertOrReplace(ctx, tx, ct)
	})
	if err != nil {
		if isNew {
			ct.ID = uuid.Nil
		}

		return nil, err
	}

	return &res, nil
}

func txGet[R Record](ctx context.Context, tx Tx, kind Kind, id uuid.UUID) (R, error) {
	var zero R

	rec, err := tx.Get(ctx, kind, id)
	if err != nil {
		return zero, err
	}

	r, ok := rec.(R)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected %s record type %T", ErrPersistence, kind, rec)
	}

	return r, nil
}
