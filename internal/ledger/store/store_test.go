package store_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fiado/internal/database"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
	"github.com/MrJamesThe3rd/fiado/internal/ledger/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "fiado.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(db)
}

func write(t *testing.T, s *store.Store, recs ...ledger.Record) {
	t.Helper()

	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	for _, r := range recs {
		require.NoError(t, tx.Upsert(ctx, r))
	}

	require.NoError(t, tx.Commit())
}

func TestStore_RoundTrip(t *testing.T) {
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	creditorID := ledger.NewID()
	clientID := ledger.NewID()

	tests := []struct {
		name string
		rec  ledger.Record
	}{
		{name: "Client", rec: &ledger.Client{ID: clientID, Name: "Ana", Phone: "555-1234"}},
		{name: "Transaction", rec: &ledger.Transaction{ID: ledger.NewID(), ClientID: clientID, Amount: decimal.RequireFromString("-12.50"), Description: "pago", Date: date}},
		{name: "Sale", rec: &ledger.Sale{ID: ledger.NewID(), Amount: decimal.RequireFromString("3.75"), Description: "pan", Date: date}},
		{name: "ExpenseWithCreditor", rec: &ledger.Expense{ID: ledger.NewID(), Amount: decimal.NewFromInt(40), Category: "Supplies", Description: "bolsas", Date: date, CreditorID: &creditorID}},
		{name: "ExpenseWithoutCreditor", rec: &ledger.Expense{ID: ledger.NewID(), Amount: decimal.NewFromInt(8), Category: "Transport", Date: date}},
		{name: "Product", rec: &ledger.Product{ID: ledger.NewID(), Name: "Tornillos", Description: "caja", Price: decimal.RequireFromString("0.10"), Quantity: 1000}},
		{name: "Creditor", rec: &ledger.Creditor{ID: creditorID, Name: "Ferretería", Phone: ""}},
		{name: "CreditorTransaction", rec: &ledger.CreditorTransaction{ID: ledger.NewID(), CreditorID: creditorID, Amount: decimal.NewFromInt(100), Description: "compra", Date: date}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			write(t, s, tt.rec)

			got, err := s.Get(context.Background(), tt.rec.Kind(), tt.rec.RecordID())
			require.NoError(t, err)

			// Decimals compare by value, not by representation.
			want, err := json.Marshal(tt.rec)
			require.NoError(t, err)
			have, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(have))
		})
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Get(context.Background(), ledger.KindClient, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestStore_Get_UnknownKind(t *testing.T) {
	s := newStore(t)

	_, err := s.Get(context.Background(), ledger.Kind("invoices"), uuid.New())
	assert.ErrorIs(t, err, ledger.ErrUnknownKind)
}

func TestStore_UpsertKeepsPosition(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a := &ledger.Client{ID: ledger.NewID(), Name: "A"}
	b := &ledger.Client{ID: ledger.NewID(), Name: "B"}
	c := &ledger.Client{ID: ledger.NewID(), Name: "C"}
	write(t, s, a, b, c)

	b.Name = "B2"
	write(t, s, b)

	got, err := s.List(ctx, ledger.KindClient)
	require.NoError(t, err)
	require.Len(t, got, 3)

	names := make([]string, len(got))
	for i, r := range got {
		names[i] = r.(*ledger.Client).Name
	}

	assert.Equal(t, []string{"A", "B2", "C"}, names)
}

func TestStore_ListTransactions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ana := &ledger.Client{ID: ledger.NewID(), Name: "Ana"}
	luis := &ledger.Client{ID: ledger.NewID(), Name: "Luis"}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	write(t, s, ana, luis,
		&ledger.Transaction{ID: ledger.NewID(), ClientID: ana.ID, Amount: decimal.NewFromInt(50), Date: day},
		&ledger.Transaction{ID: ledger.NewID(), ClientID: luis.ID, Amount: decimal.NewFromInt(7), Date: day},
		&ledger.Transaction{ID: ledger.NewID(), ClientID: ana.ID, Amount: decimal.NewFromInt(-20), Date: day},
	)

	got, err := s.ListTransactions(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, got[1].Amount.Equal(decimal.NewFromInt(-20)))

	none, err := s.ListCreditorTransactions(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTx_Delete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p := &ledger.Product{ID: ledger.NewID(), Name: "Clavos", Price: decimal.NewFromInt(1)}
	write(t, s, p)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.Delete(ctx, ledger.KindProduct, p.ID))
	assert.ErrorIs(t, tx.Delete(ctx, ledger.KindProduct, p.ID), ledger.ErrNotFound)
	require.NoError(t, tx.Commit())

	_, err = s.Get(ctx, ledger.KindProduct, p.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestTx_DeleteByParent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	cr := &ledger.Creditor{ID: ledger.NewID(), Name: "Mayorista"}
	other := &ledger.Creditor{ID: ledger.NewID(), Name: "Otro"}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	write(t, s, cr, other,
		&ledger.CreditorTransaction{ID: ledger.NewID(), CreditorID: cr.ID, Amount: decimal.NewFromInt(10), Date: day},
		&ledger.CreditorTransaction{ID: ledger.NewID(), CreditorID: cr.ID, Amount: decimal.NewFromInt(-5), Date: day},
		&ledger.CreditorTransaction{ID: ledger.NewID(), CreditorID: other.ID, Amount: decimal.NewFromInt(3), Date: day},
	)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	n, err := tx.DeleteByParent(ctx, ledger.KindCreditorTransaction, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = tx.DeleteByParent(ctx, ledger.KindSale, cr.ID)
	assert.ErrorIs(t, err, ledger.ErrUnknownKind)

	require.NoError(t, tx.Commit())

	rest, err := s.List(ctx, ledger.KindCreditorTransaction)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, other.ID, rest[0].(*ledger.CreditorTransaction).CreditorID)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.Upsert(ctx, &ledger.Sale{ID: ledger.NewID(), Amount: decimal.NewFromInt(5), Date: time.Now()}))
	require.NoError(t, tx.Rollback())

	sales, err := s.List(ctx, ledger.KindSale)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestTx_RollbackAfterCommit(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	assert.NoError(t, tx.Rollback())
}

func TestTx_Truncate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	write(t, s, &ledger.Client{ID: ledger.NewID(), Name: "A"}, &ledger.Client{ID: ledger.NewID(), Name: "B"})

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Truncate(ctx, ledger.KindClient))
	require.NoError(t, tx.Commit())

	got, err := s.List(ctx, ledger.KindClient)
	require.NoError(t, err)
	assert.Empty(t, got)
}
