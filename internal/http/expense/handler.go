package expense

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/categorize"
	"github.com/MrJamesThe3rd/fiado/internal/http/render"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type Handler struct {
	svc        *ledger.Service
	categories *categorize.Service
}

func NewHandler(svc *ledger.Service, categories *categorize.Service) *Handler {
	return &Handler{svc: svc, categories: categories}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Get("/suggest", h.suggest)
}

type expenseRequest struct {
	Amount      string `json:"amount" validate:"required,numeric"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	CreditorID  string `json:"creditor_id" validate:"omitempty,uuid"`
}

type expenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	CreditorID  *uuid.UUID      `json:"creditor_id,omitempty"`
	PaymentID   *uuid.UUID      `json:"payment_id,omitempty"`
}

type suggestResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

func toResponse(e *ledger.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.Format(time.DateOnly),
		CreditorID:  e.CreditorID,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.Expenses(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toResponse(e)
	}

	render.JSON(w, http.StatusOK, resp)
}

// create records an expense. A missing category is filled from past expenses, and
// the final category is learned for next time.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	e, err := decodeExpense(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if e.Category == "" && e.Description != "" {
		if e.Category, err = h.categories.Suggest(r.Context(), e.Description); err != nil {
			slog.Warn("failed to suggest category", "error", err)
		}
	}

	res, err := h.svc.RecordExpense(r.Context(), e)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	h.learn(r, e)

	resp := toResponse(res.Expense)
	if res.Payment != nil {
		resp.PaymentID = &res.Payment.ID
	}

	render.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if _, err := h.svc.Expense(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := decodeExpense(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	e.ID = id

	if _, err := h.svc.RecordExpense(r.Context(), e); err != nil {
		render.Error(w, r, err)
		return
	}

	h.learn(r, e)
	render.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		render.Error(w, r, fmt.Errorf("%w: description query parameter is required", render.ErrBadRequest))
		return
	}

	category, err := h.categories.Suggest(r.Context(), desc)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, suggestResponse{Description: desc, Category: category})
}

// learn is best effort; the expense is already stored.
func (h *Handler) learn(r *http.Request, e *ledger.Expense) {
	if e.Category == "" || e.Description == "" {
		return
	}

	if err := h.categories.Learn(r.Context(), e.Description, e.Category); err != nil {
		slog.Warn("failed to learn category", "description", e.Description, "error", err)
	}
}

func decodeExpense(r *http.Request) (*ledger.Expense, error) {
	var req expenseRequest
	if err := render.Decode(r, &req); err != nil {
		return nil, err
	}

	amt, err := render.Amount(req.Amount)
	if err != nil {
		return nil, err
	}

	date, err := render.Date(req.Date)
	if err != nil {
		return nil, err
	}

	e := &ledger.Expense{Amount: amt, Category: req.Category, Description: req.Description, Date: date}
	if req.CreditorID != "" {
		e.CreditorID = new(uuid.MustParse(req.CreditorID))
	}

	return e, nil
}
