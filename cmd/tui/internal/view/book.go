package view

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type partyRow struct {
	id      uuid.UUID
	name    string
	phone   string
	balance decimal.Decimal
}

// partyBook is the ledger of one side of the business, clients or creditors.
type partyBook interface {
	Noun() string
	Load(ctx context.Context) ([]partyRow, decimal.Decimal, error)
	Create(ctx context.Context, name, phone string) error
	AddEntry(ctx context.Context, id uuid.UUID, amount decimal.Decimal, description string) error
	Statement(ctx context.Context, id uuid.UUID) (string, error)
}

type clientBook struct {
	svc    *ledger.Service
	export *export.Service
}

func newClientBook(svc *ledger.Service, exp *export.Service) partyBook {
	return clientBook{svc: svc, export: exp}
}

func (clientBook) Noun() string { return "Client" }

func (b clientBook) Load(ctx context.Context) ([]partyRow, decimal.Decimal, error) {
	balances, err := b.svc.ClientBalances(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total, err := b.svc.TotalClientDebt(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	rows := make([]partyRow, len(balances))
	for i, cb := range balances {
		rows[i] = partyRow{id: cb.Client.ID, name: cb.Client.Name, phone: cb.Client.Phone, balance: cb.Balance}
	}

	return rows, total, nil
}

func (b clientBook) Create(ctx context.Context, name, phone string) error {
	_, err := b.svc.SaveClient(ctx, &ledger.Client{Name: name, Phone: phone})
	return err
}

func (b clientBook) AddEntry(ctx context.Context, id uuid.UUID, amount decimal.Decimal, description string) error {
	_, err := b.svc.SaveTransaction(ctx, &ledger.Transaction{
		ClientID:    id,
		Amount:      amount,
		Description: description,
		Date:        ledger.Day(timeNow()),
	})

	return err
}

func (b clientBook) Statement(ctx context.Context, id uuid.UUID) (string, error) {
	st, err := b.export.Statement(ctx, export.PartyClient, id)
	if err != nil {
		return "", err
	}

	return b.export.FormatStatement(st), nil
}

type creditorBook struct {
	svc    *ledger.Service
	export *export.Service
}

func newCreditorBook(svc *ledger.Service, exp *export.Service) partyBook {
	return creditorBook{svc: svc, export: exp}
}

func (creditorBook) Noun() string { return "Creditor" }

func (b creditorBook) Load(ctx context.Context) ([]partyRow, decimal.Decimal, error) {
	balances, err := b.svc.CreditorBalances(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	total, err := b.svc.TotalCreditorDebt(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	rows := make([]partyRow, len(balances))
	for i, cb := range balances {
		rows[i] = partyRow{id: cb.Creditor.ID, name: cb.Creditor.Name, phone: cb.Creditor.Phone, balance: cb.Balance}
	}

	return rows, total, nil
}

func (b creditorBook) Create(ctx context.Context, name, phone string) error {
	_, err := b.svc.SaveCreditor(ctx, &ledger.Creditor{Name: name, Phone: phone})
	return err
}

func (b creditorBook) AddEntry(ctx context.Context, id uuid.UUID, amount decimal.Decimal, description string) error {
	_, err := b.svc.SaveCreditorTransaction(ctx, &ledger.CreditorTransaction{
		CreditorID:  id,
		Amount:      amount,
		Description: description,
		Date:        ledger.Day(timeNow()),
	})

	return err
}

func (b creditorBook) Statement(ctx context.Context, id uuid.UUID) (string, error) {
	st, err := b.export.Statement(ctx, export.PartyCreditor, id)
	if err != nil {
		return "", err
	}

	return b.export.FormatStatement(st), nil
}
