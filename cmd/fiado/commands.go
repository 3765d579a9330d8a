package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/subcommands"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
	"github.com/MrJamesThe3rd/fiado/internal/backup"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type backupCmd struct {
	db  string
	dir string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "write a JSON backup of every collection" }
func (*backupCmd) Usage() string {
	return `backup [-dir <directory>]

  Writes fiado-backup-YYYYMMDD-HHMMSS.json into the directory, EXPORT_DIR by default.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "database file, overrides DB_PATH")
	f.StringVar(&c.dir, "dir", "", "output directory, overrides EXPORT_DIR")
}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	return run(c.db, func(a *app) error {
		snap, err := a.ledger.Snapshot(ctx)
		if err != nil {
			return err
		}

		dir := c.dir
		if dir == "" {
			dir = a.cfg.Export.Dir
		}

		path, err := backup.WriteFile(dir, snap, time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("Wrote %d records to %s\n", snap.Len(), path)

		return nil
	})
}

type restoreCmd struct {
	db  string
	yes bool
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the whole database with a backup" }
func (*restoreCmd) Usage() string {
	return `restore -yes <backup.json>

  Replaces every collection with the contents of the backup. Nothing changes if the
  backup is invalid.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "database file, overrides DB_PATH")
	f.BoolVar(&c.yes, "yes", false, "confirm that the current data will be replaced")
}

func (c *restoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one backup file is required.")
		return subcommands.ExitUsageError
	}

	if !c.yes {
		fmt.Fprintln(os.Stderr, "Error: restore replaces all data, pass -yes to confirm.")
		return subcommands.ExitUsageError
	}

	return run(c.db, func(a *app) error {
		snap, err := backup.ReadFile(f.Arg(0))
		if err != nil {
			return err
		}

		if err := a.ledger.Restore(ctx, snap); err != nil {
			return err
		}

		fmt.Printf("Restored %d records from %s\n", snap.Len(), f.Arg(0))

		return nil
	})
}

type importProductsCmd struct {
	db string
}

func (*importProductsCmd) Name() string     { return "import-products" }
func (*importProductsCmd) Synopsis() string { return "merge products from a CSV sheet into the inventory" }
func (*importProductsCmd) Usage() string {
	return `import-products <sheet.csv>

  Reads a spreadsheet export with Spanish, Portuguese or English headers. Products
  matching an existing name get the new price and their quantity added to stock.
  Use - to read from standard input.
`
}

func (c *importProductsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "database file, overrides DB_PATH")
}

func (c *importProductsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one CSV file is required.")
		return subcommands.ExitUsageError
	}

	return run(c.db, func(a *app) error {
		var src io.Reader = os.Stdin

		if name := f.Arg(0); name != "-" {
			file, err := os.Open(name)
			if err != nil {
				return err
			}
			defer file.Close()

			src = file
		}

		sum, err := a.importer.Import(ctx, src)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d rows (%s headers, %s): %d created, %d updated\n",
			sum.Rows, sum.Profile, sum.Charset, sum.Created, sum.Updated)

		return nil
	})
}

type statementCmd struct {
	db       string
	creditor bool
	csv      bool
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "print a client's or creditor's ledger with a running balance" }
func (*statementCmd) Usage() string {
	return `statement [-creditor] [-csv] <id>

  Prints the ledger of a client, or of a creditor with -creditor, oldest entry first.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "database file, overrides DB_PATH")
	f.BoolVar(&c.creditor, "creditor", false, "the id is a creditor")
	f.BoolVar(&c.csv, "csv", false, "write CSV instead of text")
}

func (c *statementCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one id is required.")
		return subcommands.ExitUsageError
	}

	id, err := uuid.Parse(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid id %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}

	party := export.PartyClient
	if c.creditor {
		party = export.PartyCreditor
	}

	return run(c.db, func(a *app) error {
		st, err := a.export.Statement(ctx, party, id)
		if err != nil {
			return err
		}

		if c.csv {
			return a.export.WriteStatementCSV(os.Stdout, st)
		}

		fmt.Print(a.export.FormatStatement(st))

		return nil
	})
}

type workbookCmd struct {
	db  string
	out string
}

func (*workbookCmd) Name() string     { return "workbook" }
func (*workbookCmd) Synopsis() string { return "export every collection to an XLSX workbook" }
func (*workbookCmd) Usage() string {
	return `workbook [-o <file.xlsx>]
`
}

func (c *workbookCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "database file, overrides DB_PATH")
	f.StringVar(&c.out, "o", "", "output file, defaults to fiado-YYYYMMDD.xlsx in EXPORT_DIR")
}

func (c *workbookCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	return run(c.db, func(a *app) error {
		out := c.out
		if out == "" {
			if err := os.MkdirAll(a.cfg.Export.Dir, 0o755); err != nil {
				return err
			}

			out = filepath.Join(a.cfg.Export.Dir, "fiado-"+time.Now().Format("20060102")+".xlsx")
		}

		file, err := os.Create(out)
		if err != nil {
			return err
		}

		if err := a.export.Workbook(ctx, file); err != nil {
			return errors.Join(err, file.Close())
		}

		if err := file.Close(); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", out)

		return nil
	})
}

type summaryCmd struct {
	db   string
	from string
	to   string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print sales, expenses and debts for a period" }
func (*summaryCmd) Usage() string {
	return `summary [-from YYYY-MM-DD] [-to YYYY-MM-DD]

  Both bounds are inclusive and optional. Debt totals are current balances.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "database file, overrides DB_PATH")
	f.StringVar(&c.from, "from", "", "first day of the period")
	f.StringVar(&c.to, "to", "", "last day of the period")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	period, err := parsePeriod(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	return run(c.db, func(a *app) error {
		sum, err := a.ledger.Summary(ctx, period)
		if err != nil {
			return err
		}

		fmt.Print(formatSummary(sum, a.cfg.App.Currency))

		return nil
	})
}

func parsePeriod(from, to string) (ledger.Period, error) {
	var p ledger.Period

	for _, b := range []struct {
		s   string
		dst *time.Time
	}{{from, &p.Start}, {to, &p.End}} {
		if b.s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, b.s)
		if err != nil {
			return ledger.Period{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", b.s)
		}

		*b.dst = t
	}

	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return ledger.Period{}, errors.New("-to is before -from")
	}

	return p, nil
}

func formatSummary(s *ledger.Summary, currency string) string {
	return fmt.Sprintf(
		"Sales:              %s\n"+
			"Charged on credit:  %s\n"+
			"Payments received:  %s\n"+
			"Expenses:           %s\n"+
			"Cash flow:          %s\n"+
			"Clients owe:        %s\n"+
			"We owe creditors:   %s\n",
		amount.Format(s.Sales, currency),
		amount.Format(s.Charges, currency),
		amount.Format(s.PaymentsReceived, currency),
		amount.Format(s.Expenses, currency),
		amount.Format(s.CashFlow(), currency),
		amount.Format(s.TotalClientDebt, currency),
		amount.Format(s.TotalCreditorDebt, currency),
	)
}
