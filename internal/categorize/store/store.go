package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindMatch expects description already lower-cased; patterns are stored that way.
func (s *Store) FindMatch(ctx context.Context, description string) (string, error) {
	query := `
		SELECT category
		FROM category_mappings
		WHERE instr(?, raw_pattern) > 0
		ORDER BY length(raw_pattern) DESC, id DESC
		LIMIT 1
	`

	var category string

	err := s.db.QueryRowContext(ctx, query, description).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding match: %w", err)
	}

	return category, nil
}

func (s *Store) SaveMapping(ctx context.Context, pattern, category string) error {
	query := `
		INSERT INTO category_mappings (raw_pattern, category, created_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(raw_pattern) DO UPDATE SET category = excluded.category, created_at = excluded.created_at
	`

	if _, err := s.db.ExecContext(ctx, query, pattern, category); err != nil {
		return fmt.Errorf("saving mapping: %w", err)
	}

	return nil
}
