package render_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fiado/internal/backup"
	"github.com/MrJamesThe3rd/fiado/internal/http/render"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "NotFound", err: fmt.Errorf("get: %w", ledger.ErrNotFound), want: http.StatusNotFound},
		{name: "InsufficientStock", err: ledger.ErrInsufficientStock, want: http.StatusUnprocessableEntity},
		{name: "BadRequest", err: fmt.Errorf("%w: invalid id", render.ErrBadRequest), want: http.StatusBadRequest},
		{name: "InvalidSnapshot", err: fmt.Errorf("restore: %w", ledger.ErrInvalidSnapshot), want: http.StatusBadRequest},
		{name: "MalformedBackup", err: fmt.Errorf("%w: unexpected EOF", backup.ErrMalformed), want: http.StatusBadRequest},
		{name: "BackupVersion", err: fmt.Errorf("%w: 99", backup.ErrUnsupportedVersion), want: http.StatusBadRequest},
		{name: "TooLarge", err: fmt.Errorf("reading backup: %w", &http.MaxBytesError{Limit: 10}), want: http.StatusRequestEntityTooLarge},
		{name: "Persistence", err: fmt.Errorf("%w: disk I/O error", ledger.ErrPersistence), want: http.StatusInternalServerError},
		{name: "Unexpected", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.Status(tt.err))
		})
	}
}
