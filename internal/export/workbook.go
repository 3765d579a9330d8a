package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

const balancesSheet = "Balances"

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

// Workbook writes the whole store as XLSX: one sheet per collection plus a sheet of
// client and creditor balances. Amounts are numeric cells.
func (s *Service) Workbook(ctx context.Context, w io.Writer) error {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheets := buildSheets(snap)

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return fmt.Errorf("naming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sh.name, err)
		}

		if err := writeSheet(f, sh); err != nil {
			return fmt.Errorf("writing sheet %s: %w", sh.name, err)
		}
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, sh sheet) error {
	header := make([]any, len(sh.header))
	for i, h := range sh.header {
		header[i] = h
	}

	if err := f.SetSheetRow(sh.name, "A1", &header); err != nil {
		return err
	}

	for i, row := range sh.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
			return err
		}
	}

	for i, width := range sh.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		if err := f.SetColWidth(sh.name, col, col, width); err != nil {
			return err
		}
	}

	return nil
}

func buildSheets(snap *ledger.Snapshot) []sheet {
	clientNames := make(map[uuid.UUID]string, len(snap.Clients))
	for _, c := range snap.Clients {
		clientNames[c.ID] = c.Name
	}

	creditorNames := make(map[uuid.UUID]string, len(snap.Creditors))
	for _, c := range snap.Creditors {
		creditorNames[c.ID] = c.Name
	}

	clients := sheet{name: "Clients", header: []string{"Name", "Phone"}, widths: []float64{30, 18}}
	for _, c := range snap.Clients {
		clients.rows = append(clients.rows, []any{c.Name, c.Phone})
	}

	txs := sheet{name: "Transactions", header: []string{"Date", "Client", "Description", "Amount"}, widths: []float64{12, 30, 40, 14}}
	clientBalance := make(map[uuid.UUID]decimal.Decimal)

	for _, t := range snap.Transactions {
		txs.rows = append(txs.rows, []any{date(t.Date), clientNames[t.ClientID], t.Description, number(t.Amount)})
		clientBalance[t.ClientID] = clientBalance[t.ClientID].Add(t.Amount)
	}

	sales := sheet{name: "Sales", header: []string{"Date", "Description", "Amount"}, widths: []float64{12, 40, 14}}
	for _, sale := range snap.Sales {
		sales.rows = append(sales.rows, []any{date(sale.Date), sale.Description, number(sale.Amount)})
	}

	expenses := sheet{name: "Expenses", header: []string{"Date", "Category", "Description", "Creditor", "Amount"}, widths: []float64{12, 18, 40, 30, 14}}
	for _, e := range snap.Expenses {
		creditor := ""
		if e.CreditorID != nil {
			creditor = creditorNames[*e.CreditorID]
		}

		expenses.rows = append(expenses.rows, []any{date(e.Date), e.Category, e.Description, creditor, number(e.Amount)})
	}

	products := sheet{name: "Products", header: []string{"Name", "Description", "Price", "Quantity"}, widths: []float64{30, 40, 14, 10}}
	for _, p := range snap.Products {
		products.rows = append(products.rows, []any{p.Name, p.Description, number(p.Price), p.Quantity})
	}

	creditors := sheet{name: "Creditors", header: []string{"Name", "Phone"}, widths: []float64{30, 18}}
	for _, c := range snap.Creditors {
		creditors.rows = append(creditors.rows, []any{c.Name, c.Phone})
	}

	ctxs := sheet{name: "Creditor transactions", header: []string{"Date", "Creditor", "Description", "Amount"}, widths: []float64{12, 30, 40, 14}}
	creditorBalance := make(map[uuid.UUID]decimal.Decimal)

	for _, t := range snap.CreditorTransactions {
		ctxs.rows = append(ctxs.rows, []any{date(t.Date), creditorNames[t.CreditorID], t.Description, number(t.Amount)})
		creditorBalance[t.CreditorID] = creditorBalance[t.CreditorID].Add(t.Amount)
	}

	balances := sheet{name: balancesSheet, header: []string{"Party", "Name", "Balance"}, widths: []float64{10, 30, 14}}
	for _, c := range snap.Clients {
		balances.rows = append(balances.rows, []any{string(PartyClient), c.Name, number(clientBalance[c.ID])})
	}

	for _, c := range snap.Creditors {
		balances.rows = append(balances.rows, []any{string(PartyCreditor), c.Name, number(creditorBalance[c.ID])})
	}

	return []sheet{clients, txs, sales, expenses, products, creditors, ctxs, balances}
}

func date(t time.Time) string {
	return t.Format(time.DateOnly)
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
