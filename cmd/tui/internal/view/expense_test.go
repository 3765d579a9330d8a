package view

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fiado/internal/categorize"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type mappings struct {
	saved map[string]string
	err   error
}

func (m *mappings) FindMatch(context.Context, string) (string, error) { return "", nil }

func (m *mappings) SaveMapping(_ context.Context, pattern, category string) error {
	if m.err != nil {
		return m.err
	}

	m.saved[pattern] = category

	return nil
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	return &buf
}

func TestLearnCategory(t *testing.T) {
	logs := captureLogs(t)
	repo := &mappings{saved: map[string]string{}}
	svc := categorize.NewService(repo)

	learnCategory(context.Background(), svc, &ledger.Expense{Description: "Luz Enel", Category: "Servicios"})
	assert.Equal(t, map[string]string{"luz enel": "Servicios"}, repo.saved)

	learnCategory(context.Background(), svc, &ledger.Expense{Description: "Luz Enel"})
	learnCategory(context.Background(), svc, &ledger.Expense{Category: "Servicios"})
	assert.Len(t, repo.saved, 1)
	assert.Empty(t, logs.String())
}

func TestLearnCategory_LogsFailure(t *testing.T) {
	logs := captureLogs(t)
	svc := categorize.NewService(&mappings{err: errors.New("database is locked")})

	learnCategory(context.Background(), svc, &ledger.Expense{Description: "Luz", Category: "Servicios"})

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "failed to learn category")
	assert.Contains(t, logs.String(), "database is locked")
}
