package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ClientBalance struct {
	Client  *Client
	Balance decimal.Decimal
}

type CreditorBalance struct {
	Creditor *Creditor
	Balance  decimal.Decimal
}

// ClientBalances returns every client with its current balance, in store order.
func (s *Service) ClientBalances(ctx context.Context) ([]ClientBalance, error) {
	clients, err := s.Clients(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := list[*Transaction](ctx, s, KindTransaction)
	if err != nil {
		return nil, err
	}

	byClient := make(map[uuid.UUID]decimal.Decimal, len(clients))
	for _, t := range txs {
		byClient[t.ClientID] = byClient[t.ClientID].Add(t.Amount)
	}

	out := make([]ClientBalance, len(clients))
	for i, c := range clients {
		out[i] = ClientBalance{Client: c, Balance: byClient[c.ID]}
	}

	return out, nil
}

// CreditorBalances returns every creditor with its current balance, in store order.
func (s *Service) CreditorBalances(ctx context.Context) ([]CreditorBalance, error) {
	creditors, err := s.Creditors(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := list[*CreditorTransaction](ctx, s, KindCreditorTransaction)
	if err != nil {
		return nil, err
	}

	byCreditor := make(map[uuid.UUID]decimal.Decimal, len(creditors))
	for _, t := range txs {
		byCreditor[t.CreditorID] = byCreditor[t.CreditorID].Add(t.Amount)
	}

	out := make([]CreditorBalance, len(creditors))
	for i, c := range creditors {
		out[i] = CreditorBalance{Creditor: c, Balance: byCreditor[c.ID]}
	}

	return out, nil
}

// TotalCreditorDebt adds up what the owner owes, counting positive creditor balances only.
func (s *Service) TotalCreditorDebt(ctx context.Context) (decimal.Decimal, error) {
	balances, err := s.CreditorBalances(ctx)
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

// Period is an inclusive range of calendar dates. A zero bound is open.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(d time.Time) bool {
	d = Day(d)
	if !p.Start.IsZero() && d.Before(Day(p.Start)) {
		return false
	}

	if !p.End.IsZero() && d.After(Day(p.End)) {
		return false
	}

	return true
}

// Summary is a snapshot of the business over a period. The debt totals are current
// balances and ignore the period.
type Summary struct {
	Period            Period
	Sales             decimal.Decimal
	Charges           decimal.Decimal
	PaymentsReceived  decimal.Decimal
	Expenses          decimal.Decimal
	TotalClientDebt   decimal.Decimal
	TotalCreditorDebt decimal.Decimal
}

// CashFlow is money in (sales and client payments) minus money out (expenses).
func (s *Summary) CashFlow() decimal.Decimal {
	return s.Sales.Add(s.PaymentsReceived).Sub(s.Expenses)
}

func (s *Service) Summary(ctx context.Context, period Period) (*Summary, error) {
	sum := Summary{Period: period}

	sales, err := s.Sales(ctx)
	if err != nil {
		return nil, err
	}

	for _, sale := range sales {
		if period.Contains(sale.Date) {
			sum.Sales = sum.Sales.Add(sale.Amount)
		}
	}

	expenses, err := s.Expenses(ctx)
	if err != nil {
		return nil, err
	}

	for _, e := range expenses {
		if period.Contains(e.Date) {
			sum.Expenses = sum.Expenses.Add(e.Amount)
		}
	}

	txs, err := list[*Transaction](ctx, s, KindTransaction)
	if err != nil {
		return nil, err
	}

	for _, t := range txs {
		if !period.Contains(t.Date) {
			continue
		}

		if t.Amount.IsNegative() {
			sum.PaymentsReceived = sum.PaymentsReceived.Add(t.Amount.Neg())
		} else {
			sum.Charges = sum.Charges.Add(t.Amount)
		}
	}

	if sum.TotalClientDebt, err = s.TotalClientDebt(ctx); err != nil {
		return nil, err
	}

	if sum.TotalCreditorDebt, err = s.TotalCreditorDebt(ctx); err != nil {
		return nil, err
	}

	return &sum, nil
}
