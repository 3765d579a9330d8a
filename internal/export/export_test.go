package export_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/fiado/internal/database"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
	"github.com/MrJamesThe3rd/fiado/internal/ledger/store"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	ledger   *ledger.Service
	export   *export.Service
	ana      *ledger.Client
	creditor *ledger.Creditor
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "fiado.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := ledger.NewService(store.New(db))
	ctx := context.Background()

	ana, err := svc.SaveClient(ctx, &ledger.Client{Name: "Ana Pérez"})
	require.NoError(t, err)

	// Recorded out of date order on purpose.
	for _, tx := range []*ledger.Transaction{
		{ClientID: ana.ID, Amount: decimal.NewFromInt(-20000), Description: "pago", Date: day(15)},
		{ClientID: ana.ID, Amount: decimal.NewFromInt(50000), Description: "préstamo", Date: day(1)},
		{ClientID: ana.ID, Amount: decimal.NewFromInt(1500), Description: "pan", Date: day(15)},
	} {
		_, err := svc.SaveTransaction(ctx, tx)
		require.NoError(t, err)
	}

	cr, err := svc.SaveCreditor(ctx, &ledger.Creditor{Name: "Mayorista"})
	require.NoError(t, err)

	_, err = svc.SaveCreditorTransaction(ctx, &ledger.CreditorTransaction{CreditorID: cr.ID, Amount: decimal.NewFromInt(300), Description: "compra", Date: day(2)})
	require.NoError(t, err)

	_, err = svc.RecordExpense(ctx, &ledger.Expense{Amount: decimal.NewFromInt(100), Category: "Stock", Description: "abono", Date: day(3), CreditorID: &cr.ID})
	require.NoError(t, err)

	_, err = svc.SaveProduct(ctx, &ledger.Product{Name: "Arroz", Price: decimal.RequireFromString("1.5"), Quantity: 9})
	require.NoError(t, err)

	return fixture{ledger: svc, export: export.NewService(svc, "USD"), ana: ana, creditor: cr}
}

func TestStatement_Client(t *testing.T) {
	fx := setup(t)

	st, err := fx.export.Statement(context.Background(), export.PartyClient, fx.ana.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ana Pérez", st.Name)
	require.Len(t, st.Lines, 3)

	descs := []string{st.Lines[0].Description, st.Lines[1].Description, st.Lines[2].Description}
	assert.Equal(t, []string{"préstamo", "pago", "pan"}, descs)

	assert.True(t, st.Lines[0].Balance.Equal(decimal.NewFromInt(50000)))
	assert.True(t, st.Lines[1].Balance.Equal(decimal.NewFromInt(30000)))
	assert.True(t, st.Lines[2].Balance.Equal(decimal.NewFromInt(31500)))
	assert.True(t, st.Balance.Equal(decimal.NewFromInt(31500)))
}

func TestStatement_Creditor(t *testing.T) {
	fx := setup(t)

	st, err := fx.export.Statement(context.Background(), export.PartyCreditor, fx.creditor.ID)
	require.NoError(t, err)

	require.Len(t, st.Lines, 2)
	assert.Equal(t, "Payment for expense: abono", st.Lines[1].Description)
	assert.True(t, st.Balance.Equal(decimal.NewFromInt(200)))
}

func TestStatement_Errors(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	_, err := fx.export.Statement(ctx, export.PartyClient, uuid.New())
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = fx.export.Statement(ctx, export.Party("supplier"), fx.ana.ID)
	assert.ErrorIs(t, err, export.ErrUnknownParty)
}

func TestWriteStatementCSV(t *testing.T) {
	fx := setup(t)

	st, err := fx.export.Statement(context.Background(), export.PartyClient, fx.ana.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fx.export.WriteStatementCSV(&buf, st))

	want := "date,description,amount,balance\n" +
		"2024-03-01,préstamo,50000.00,50000.00\n" +
		"2024-03-15,pago,-20000.00,30000.00\n" +
		"2024-03-15,pan,1500.00,31500.00\n"
	assert.Equal(t, want, buf.String())
}

func TestFormatStatement(t *testing.T) {
	fx := setup(t)

	st, err := fx.export.Statement(context.Background(), export.PartyClient, fx.ana.ID)
	require.NoError(t, err)

	text := fx.export.FormatStatement(st)
	lines := strings.Split(strings.TrimSpace(text), "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "Ana Pérez", lines[0])
	assert.Contains(t, lines[1], "01/03/2024")
	assert.Contains(t, lines[1], "$50,000.00")
	assert.Contains(t, lines[2], "-$20,000.00")
	assert.Equal(t, "Balance: $31,500.00", lines[4])
}

func TestFilename(t *testing.T) {
	st := &export.Statement{Party: export.PartyClient, Name: "Ana Pérez"}

	got := export.Filename(st, "csv", time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "client_Ana_P_rez_20240506.csv", got)
}

func TestWorkbook(t *testing.T) {
	fx := setup(t)

	var buf bytes.Buffer
	require.NoError(t, fx.export.Workbook(context.Background(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Clients", "Transactions", "Sales", "Expenses", "Products", "Creditors", "Creditor transactions", "Balances",
	}, f.GetSheetList())

	txRows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, txRows, 4)
	assert.Equal(t, []string{"Date", "Client", "Description", "Amount"}, txRows[0])
	assert.Equal(t, "Ana Pérez", txRows[1][1])

	balances, err := f.GetRows("Balances")
	require.NoError(t, err)
	require.Len(t, balances, 3)
	assert.Equal(t, []string{"client", "Ana Pérez", "31500"}, balances[1])
	assert.Equal(t, []string{"creditor", "Mayorista", "200"}, balances[2])

	expenses, err := f.GetRows("Expenses")
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Mayorista", expenses[1][3])
}
