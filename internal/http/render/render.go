// Package render holds the JSON plumbing shared by the HTTP handlers.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/backup"
	"github.com/MrJamesThe3rd/fiado/internal/categorize"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/importer"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

const maxBody = 10 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrBadRequest marks malformed or invalid input.
var ErrBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error maps err onto a status code and writes it as JSON. Only persistence and
// unexpected failures are logged; their details stay out of the response.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "persistence", ledger.IsPersistence(err), "error", err)

		msg = "internal error"
	}

	JSON(w, status, errorResponse{Error: msg})
}

func Status(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientStock), errors.Is(err, ledger.ErrInvalidQuantity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrUnknownKind),
		errors.Is(err, ledger.ErrInvalidSnapshot),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, backup.ErrMalformed),
		errors.Is(err, backup.ErrUnsupportedVersion),
		errors.Is(err, categorize.ErrEmpty),
		errors.Is(err, export.ErrUnknownParty),
		errors.Is(err, importer.ErrNoProfile),
		errors.Is(err, importer.ErrRow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON body into v and validates its struct tags.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrBadRequest, describe(err))
	}

	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := strings.ToLower(fe.Field()) + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		msgs = append(msgs, msg)
	}

	return strings.Join(msgs, ", ")
}

// ID reads a uuid path parameter.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", ErrBadRequest, name)
	}

	return id, nil
}

// Amount parses an amount already checked by the numeric validator.
func Amount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrBadRequest, s)
	}

	return d, nil
}

// Date parses a YYYY-MM-DD value. Empty means today.
func Date(s string) (time.Time, error) {
	if s == "" {
		return ledger.Day(time.Now()), nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrBadRequest, s)
	}

	return t, nil
}

// Attachment sets the headers for a file download.
func Attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
