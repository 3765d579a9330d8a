package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

const dateLayout = "2006-01-02"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// table maps one Kind onto its SQL table. Columns start with id; seq is never
// written so an upsert keeps the row where it was.
type table struct {
	name    string
	columns []string
	parent  string
	scan    func(s scanner) (ledger.Record, error)
	values  func(r ledger.Record) ([]any, error)
}

func (t table) selectColumns() string {
	return strings.Join(t.columns, ", ")
}

func (t table) upsertQuery() string {
	sets := make([]string, 0, len(t.columns)-1)
	for _, c := range t.columns[1:] {
		sets = append(sets, c+" = excluded."+c)
	}

	return fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s`,
		t.name,
		t.selectColumns(),
		strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", "),
		strings.Join(sets, ", "),
	)
}

var tables = map[ledger.Kind]table{
	ledger.KindClient: {
		name:    "clients",
		columns: []string{"id", "name", "phone"},
		scan: func(s scanner) (ledger.Record, error) {
			var c ledger.Client
			if err := s.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
				return nil, err
			}

			return &c, nil
		},
		values: func(r ledger.Record) ([]any, error) {
			c, err := as[*ledger.Client](r)
			if err != nil {
				return nil, err
			}

			return []any{c.ID, c.Name, c.Phone}, nil
		},
	},
	ledger.KindTransaction: {
		name:    "transactions",
		columns: []string{"id", "client_id", "amount", "description", "date"},
		parent:  "client_id",
		scan: func(s scanner) (ledger.Record, error) {
			var t ledger.Transaction

			var date string
			if err := s.Scan(&t.ID, &t.ClientID, &t.Amount, &t.Description, &date); err != nil {
				return nil, err
			}

			d, err := parseDate(date)
			if err != nil {
				return nil, err
			}

			t.Date = d

			return &t, nil
		},
		values: func(r ledger.Record) ([]any, error) {
			t, err := as[*ledger.Transaction](r)
			if err != nil {
				return nil, err
			}

			return []any{t.ID, t.ClientID, t.Amount, t.Description, formatDate(t.Date)}, nil
		},
	},
	ledger.KindSale: {
		name:    "sales",
		columns: []string{"id", "amount", "description", "date"},
		scan: func(s scanner) (ledger.Record, error) {
			var sale ledger.Sale

			var date string
			if err := s.Scan(&sale.ID, &sale.Amount, &sale.Description, &date); err != nil {
				return nil, err
			}

			d, err := parseDate(date)
			if err != nil {
				return nil, err
			}

			sale.Date = d

			return &sale, nil
		},
		values: func(r ledger.Record) ([]any, error) {
			sale, err := as[*ledger.Sale](r)
			if err != nil {
				return nil, err
			}

			return []any{sale.ID, sale.Amount, sale.Description, formatDate(sale.Date)}, nil
		},
	},
	ledger.KindExpense: {
		name:    "expenses",
		columns: []string{"id", "amount", "category", "description", "date", "creditor_id"},
		scan: func(s scanner) (ledger.Record, error) {
			var e ledger.Expense

			var date string

			var creditorID uuid.NullUUID
			if err := s.Scan(&e.ID, &e.Amount, &e.Category, &e.Description, &date, &creditorID); err != nil {
				return nil, err
			}

			d, err := parseDate(date)
			if err != nil {
				return nil, err
			}

			e.Date = d

			if creditorID.Valid {
				e.CreditorID = &creditorID.UUID
			}

			return &e, nil
		},
		values: func(r ledger.Record) ([]any, error) {
			e, err := as[*ledger.Expense](r)
			if err != nil {
				return nil, err
			}

			var creditorID uuid.NullUUID
			if e.CreditorID != nil {
				creditorID = uuid.NullUUID{UUID: *e.CreditorID, Valid: true}
			}

			return []any{e.ID, e.Amount, e.Category, e.Description, formatDate(e.Date), creditorID}, nil
		},
	},
	ledger.KindProduct: {
		name:    "products",
		columns: []string{"id", "name", "description", "price", "quantity"},
		scan: func(s scanner) (ledger.Record, error) {
			var p ledger.Product
			if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity); err != nil {
				return nil, err
			}

			return &p, nil
		},
		values: func(r ledger.Record) ([]any, error) {
			p, err := as[*ledger.Product](r)
			if err != nil {
				return nil, err
			}

			return []any{p.ID, p.Name, p.Description, p.Price, p.Quantity}, nil
		},
	},
	ledger.KindCreditor: {
		name:    "creditors",
		columns: []string{"id", "name", "phone"},
		scan: func(s scanner) (ledger.Record, error) {
			var c ledger.Creditor
			if err := s.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
				return nil, err
			}

			return &c, nil
		},
		values: func(r ledger.Record) ([]any, error) {
			c, err := as[*ledger.Creditor](r)
			if err != nil {
				return nil, err
			}

			return []any{c.ID, c.Name, c.Phone}, nil
		},
	},
	ledger.KindCreditorTransaction: {
		name:    "creditor_transactions",
		columns: []string{"id", "creditor_id", "amount", "description", "date"},
		parent:  "creditor_id",
		scan: func(s scanner) (ledger.Record, error) {
			var t ledger.CreditorTransaction

			var date string
			if err := s.Scan(&t.ID, &t.CreditorID, &t.Amount, &t.Description, &date); err != nil {
				return nil, err
			}

			d, err := parseDate(date)
			if err != nil {
				return nil, err
			}

			t.Date = d

			return &t, nil
		},
		values: func(r ledger.Record) ([]any, error) {
			t, err := as[*ledger.CreditorTransaction](r)
			if err != nil {
				return nil, err
			}

			return []any{t.ID, t.CreditorID, t.Amount, t.Description, formatDate(t.Date)}, nil
		},
	},
}

// Store persists ledger records in SQLite, one table per kind.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, kind ledger.Kind, id uuid.UUID) (ledger.Record, error) {
	return get(ctx, s.db, kind, id)
}

func (s *Store) List(ctx context.Context, kind ledger.Kind) ([]ledger.Record, error) {
	return list(ctx, s.db, kind, "", uuid.Nil)
}

func (s *Store) ListTransactions(ctx context.Context, clientID uuid.UUID) ([]*ledger.Transaction, error) {
	recs, err := list(ctx, s.db, ledger.KindTransaction, "client_id", clientID)
	if err != nil {
		return nil, err
	}

	return typed[*ledger.Transaction](recs)
}

func (s *Store) ListCreditorTransactions(ctx context.Context, creditorID uuid.UUID) ([]*ledger.CreditorTransaction, error) {
	recs, err := list(ctx, s.db, ledger.KindCreditorTransaction, "creditor_id", creditorID)
	if err != nil {
		return nil, err
	}

	return typed[*ledger.CreditorTransaction](recs)
}

func (s *Store) Begin(ctx context.Context) (ledger.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &Tx{tx: tx}, nil
}

// Tx is a ledger unit of work backed by a SQL transaction.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Get(ctx context.Context, kind ledger.Kind, id uuid.UUID) (ledger.Record, error) {
	return get(ctx, t.tx, kind, id)
}

func (t *Tx) List(ctx context.Context, kind ledger.Kind) ([]ledger.Record, error) {
	return list(ctx, t.tx, kind, "", uuid.Nil)
}

func (t *Tx) Upsert(ctx context.Context, r ledger.Record) error {
	tbl, err := tableFor(r.Kind())
	if err != nil {
		return err
	}

	args, err := tbl.values(r)
	if err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, tbl.upsertQuery(), args...); err != nil {
		return fmt.Errorf("writing %s %s: %w", r.Kind(), r.RecordID(), err)
	}

	return nil
}

func (t *Tx) Delete(ctx context.Context, kind ledger.Kind, id uuid.UUID) error {
	tbl, err := tableFor(kind)
	if err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, `DELETE FROM `+tbl.name+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", kind, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", kind, id, err)
	}

	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ledger.ErrNotFound)
	}

	return nil
}

func (t *Tx) DeleteByParent(ctx context.Context, kind ledger.Kind, parentID uuid.UUID) (int64, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	if tbl.parent == "" {
		return 0, fmt.Errorf("%w: %s has no parent", ledger.ErrUnknownKind, kind)
	}

	res, err := t.tx.ExecContext(ctx, `DELETE FROM `+tbl.name+` WHERE `+tbl.parent+` = ?`, parentID)
	if err != nil {
		return 0, fmt.Errorf("deleting %s of %s: %w", kind, parentID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting %s of %s: %w", kind, parentID, err)
	}

	return n, nil
}

func (t *Tx) Truncate(ctx context.Context, kind ledger.Kind) error {
	tbl, err := tableFor(kind)
	if err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM `+tbl.name); err != nil {
		return fmt.Errorf("clearing %s: %w", kind, err)
	}

	return nil
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback is a no-op after Commit.
func (t *Tx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func get(ctx context.Context, q querier, kind ledger.Kind, id uuid.UUID) (ledger.Record, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + tbl.selectColumns() + ` FROM ` + tbl.name + ` WHERE id = ?`

	r, err := tbl.scan(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, ledger.ErrNotFound)
		}

		return nil, fmt.Errorf("getting %s %s: %w", kind, id, err)
	}

	return r, nil
}

// list returns the rows of kind in insertion order, optionally restricted to one
// value of column.
func list(ctx context.Context, q querier, kind ledger.Kind, column string, value uuid.UUID) ([]ledger.Record, error) {
	tbl, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + tbl.selectColumns() + ` FROM ` + tbl.name

	var args []any

	if column != "" {
		query += ` WHERE ` + column + ` = ?`

		args = append(args, value)
	}

	query += ` ORDER BY seq ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", kind, err)
	}
	defer rows.Close()

	var out []ledger.Record

	for rows.Next() {
		r, err := tbl.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", kind, err)
	}

	return out, nil
}

func tableFor(kind ledger.Kind) (table, error) {
	tbl, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("%w: %q", ledger.ErrUnknownKind, kind)
	}

	return tbl, nil
}

func as[R ledger.Record](r ledger.Record) (R, error) {
	v, ok := r.(R)
	if !ok {
		var zero R
		return zero, fmt.Errorf("unexpected %s record type %T", r.Kind(), r)
	}

	return v, nil
}

func typed[R ledger.Record](recs []ledger.Record) ([]R, error) {
	out := make([]R, 0, len(recs))

	for _, rec := range recs {
		r, err := as[R](rec)
		if err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	return out, nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}

	return t, nil
}
