// Package export renders ledgers as CSV statements, plain text and XLSX workbooks.
package export

import (
	"cmp"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

// Party selects whose ledger a statement covers.
type Party string

const (
	PartyClient   Party = "client"
	PartyCreditor Party = "creditor"
)

var ErrUnknownParty = errors.New("unknown party")

// Source is the read side of the ledger used by exports.
type Source interface {
	Client(ctx context.Context, id uuid.UUID) (*ledger.Client, error)
	Creditor(ctx context.Context, id uuid.UUID) (*ledger.Creditor, error)
	TransactionsFor(ctx context.Context, clientID uuid.UUID) ([]*ledger.Transaction, error)
	TransactionsForCreditor(ctx context.Context, creditorID uuid.UUID) ([]*ledger.CreditorTransaction, error)
	Snapshot(ctx context.Context) (*ledger.Snapshot, error)
}

type Service struct {
	source   Source
	currency string
}

func NewService(source Source, currency string) *Service {
	return &Service{source: source, currency: currency}
}

// Line is one ledger entry with the balance after it.
type Line struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
}

type Statement struct {
	Party   Party
	ID      uuid.UUID
	Name    string
	Lines   []Line
	Balance decimal.Decimal
}

// Statement builds the ledger of one client or creditor, oldest entry first, with a
// running balance. Entries on the same day keep the order they were recorded in.
func (s *Service) Statement(ctx context.Context, party Party, id uuid.UUID) (*Statement, error) {
	st := Statement{Party: party, ID: id}

	type entry struct {
		date   time.Time
		desc   string
		amount decimal.Decimal
	}

	var entries []entry

	switch party {
	case PartyClient:
		c, err := s.source.Client(ctx, id)
		if err != nil {
			return nil, err
		}

		st.Name = c.Name

		txs, err := s.source.TransactionsFor(ctx, id)
		if err != nil {
			return nil, err
		}

		for _, t := range txs {
			entries = append(entries, entry{date: t.Date, desc: t.Description, amount: t.Amount})
		}
	case PartyCreditor:
		c, err := s.source.Creditor(ctx, id)
		if err != nil {
			return nil, err
		}

		st.Name = c.Name

		txs, err := s.source.TransactionsForCreditor(ctx, id)
		if err != nil {
			return nil, err
		}

		for _, t := range txs {
			entries = append(entries, entry{date: t.Date, desc: t.Description, amount: t.Amount})
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownParty, party)
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return a.date.Compare(b.date)
	})

	running := decimal.Zero

	for _, e := range entries {
		running = running.Add(e.amount)
		st.Lines = append(st.Lines, Line{Date: e.date, Description: e.desc, Amount: e.amount, Balance: running})
	}

	st.Balance = running

	return &st, nil
}

// WriteStatementCSV writes st as CSV with plain numbers, one row per entry.
func (s *Service) WriteStatementCSV(w io.Writer, st *Statement) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "description", "amount", "balance"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, l := range st.Lines {
		row := []string{
			l.Date.Format(time.DateOnly),
			l.Description,
			amount.Fixed(l.Amount, s.currency),
			amount.Fixed(l.Balance, s.currency),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// FormatStatement renders st as text meant to be pasted into a chat message.
func (s *Service) FormatStatement(st *Statement) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", st.Name)

	width := 0
	for _, l := range st.Lines {
		width = max(width, len([]rune(l.Description)))
	}

	width = cmp.Or(min(width, 32), 1)

	for _, l := range st.Lines {
		desc := []rune(l.Description)
		if len(desc) > width {
			desc = append(desc[:width-1], '…')
		}

		fmt.Fprintf(&sb, "%s  %-*s  %12s  %12s\n",
			l.Date.Format("02/01/2006"),
			width, string(desc),
			amount.Format(l.Amount, s.currency),
			amount.Format(l.Balance, s.currency),
		)
	}

	fmt.Fprintf(&sb, "Balance: %s\n", amount.Format(st.Balance, s.currency))

	return sb.String()
}

// Filename names a statement file after the party and the day it was made.
func Filename(st *Statement, ext string, now time.Time) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, st.Name)

	return fmt.Sprintf("%s_%s_%s.%s", st.Party, strings.Trim(name, "_"), now.Format("20060102"), ext)
}
