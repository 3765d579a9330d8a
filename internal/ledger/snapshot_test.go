package ledger_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

func seed(t *testing.T, svc *ledger.Service) {
	t.Helper()

	ctx := context.Background()

	ana, err := svc.SaveClient(ctx, &ledger.Client{Name: "Ana", Phone: "555"})
	require.NoError(t, err)

	_, err = svc.SaveTransaction(ctx, &ledger.Transaction{ClientID: ana.ID, Amount: dec("50"), Description: "préstamo", Date: day(2024, 1, 2)})
	require.NoError(t, err)

	cr, err := svc.SaveCreditor(ctx, &ledger.Creditor{Name: "Mayorista"})
	require.NoError(t, err)

	_, err = svc.RecordExpense(ctx, &ledger.Expense{Amount: dec("20"), Category: "Stock", Date: day(2024, 1, 3), CreditorID: &cr.ID})
	require.NoError(t, err)

	_, err = svc.SaveProduct(ctx, &ledger.Product{Name: "Arroz", Price: dec("1.5"), Quantity: 9})
	require.NoError(t, err)

	_, err = svc.SaveSale(ctx, &ledger.Sale{Amount: dec("3"), Date: day(2024, 1, 4)})
	require.NoError(t, err)
}

func TestSnapshotRestore(t *testing.T) {
	src := newService(t)
	seed(t, src)

	ctx := context.Background()

	snap, err := src.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Len())

	dst := newService(t)
	_, err = dst.SaveClient(ctx, &ledger.Client{Name: "Will be replaced"})
	require.NoError(t, err)

	require.NoError(t, dst.Restore(ctx, snap))

	got, err := dst.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Len(), got.Len())

	for _, k := range ledger.Kinds {
		want := snap.Records(k)
		have := got.Records(k)
		require.Len(t, have, len(want), k)

		for i := range want {
			assert.Equal(t, want[i].RecordID(), have[i].RecordID(), k)
		}
	}

	bal, err := dst.ClientBalance(ctx, snap.Clients[0].ID)
	require.NoError(t, err)
	assertDecimal(t, "50", bal)
}

func TestRestore_InvalidSnapshotChangesNothing(t *testing.T) {
	svc := newService(t)
	seed(t, svc)

	ctx := context.Background()

	before, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		snap *ledger.Snapshot
	}{
		{
			name: "MissingID",
			snap: &ledger.Snapshot{Clients: []*ledger.Client{{Name: "Ana"}}},
		},
		{
			name: "DuplicateID",
			snap: func() *ledger.Snapshot {
				id := uuid.New()
				return &ledger.Snapshot{Products: []*ledger.Product{{ID: id, Name: "a"}, {ID: id, Name: "b"}}}
			}(),
		},
		{
			name: "OrphanTransaction",
			snap: &ledger.Snapshot{Transactions: []*ledger.Transaction{{ID: uuid.New(), ClientID: uuid.New()}}},
		},
		{
			name: "NullRecord",
			snap: &ledger.Snapshot{Clients: []*ledger.Client{nil}},
		},
		{
			name: "NullLedgerEntry",
			snap: &ledger.Snapshot{
				Clients:      []*ledger.Client{{ID: uuid.New(), Name: "Ana"}},
				Transactions: []*ledger.Transaction{nil},
			},
		},
		{
			name: "NoSnapshot",
			snap: nil,
		},
		{
			name: "OrphanCreditorTransaction",
			snap: &ledger.Snapshot{CreditorTransactions: []*ledger.CreditorTransaction{{ID: uuid.New(), CreditorID: uuid.New()}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Restore(ctx, tt.snap)
			assert.ErrorIs(t, err, ledger.ErrInvalidSnapshot)

			after, err := svc.Snapshot(ctx)
			require.NoError(t, err)
			assert.Equal(t, before.Len(), after.Len())
		})
	}
}

func TestImportProducts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	existing, err := svc.SaveProduct(ctx, &ledger.Product{Name: "Arroz", Description: "1kg", Price: dec("1.5"), Quantity: 4})
	require.NoError(t, err)

	res, err := svc.ImportProducts(ctx, []*ledger.Product{
		{Name: "  arroz ", Price: dec("1.75"), Quantity: 6},
		{Name: "Fideos", Description: "500g", Price: dec("0.9"), Quantity: 12},
		{Name: "FIDEOS", Price: dec("0.95"), Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	require.Len(t, res.Updated, 1)

	arroz, err := svc.Product(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), arroz.Quantity)
	assert.Equal(t, "1kg", arroz.Description)
	assertDecimal(t, "1.75", arroz.Price)

	fideos := res.Created[0]
	assert.Equal(t, "Fideos", fideos.Name)
	assert.Equal(t, int64(15), fideos.Quantity)
	assertDecimal(t, "0.95", fideos.Price)

	products, err := svc.Products(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestImportProducts_NegativeQuantity(t *testing.T) {
	svc := newService(t)

	_, err := svc.ImportProducts(context.Background(), []*ledger.Product{{Name: "x", Quantity: -2}})
	assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
}

func TestImportProducts_StockOverflow(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.SaveProduct(ctx, &ledger.Product{Name: "Sal", Price: dec("1"), Quantity: math.MaxInt64})
	require.NoError(t, err)

	_, err = svc.ImportProducts(ctx, []*ledger.Product{{Name: "sal", Price: dec("2"), Quantity: 1}})
	assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)

	stored, err := svc.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), stored.Quantity)
	assertDecimal(t, "1", stored.Price)
}
