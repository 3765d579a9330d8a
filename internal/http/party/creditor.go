package party

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/http/render"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type CreditorHandler struct {
	svc    *ledger.Service
	export *export.Service
}

func NewCreditorHandler(svc *ledger.Service, exp *export.Service) *CreditorHandler {
	return &CreditorHandler{svc: svc, export: exp}
}

func (h *CreditorHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/balance", h.balance)
	r.Get("/{id}/transactions", h.transactions)
	r.Post("/{id}/transactions", h.addTransaction)
	r.Put("/{id}/transactions/{txID}", h.updateTransaction)
	r.Get("/{id}/statement.csv", h.statementCSV)
	r.Get("/{id}/statement.txt", h.statementText)
}

func (h *CreditorHandler) list(w http.ResponseWriter, r *http.Request) {
	balances, err := h.svc.CreditorBalances(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	total, err := h.svc.TotalCreditorDebt(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := listResponse{Parties: make([]partyResponse, len(balances)), TotalDebt: total}
	for i, b := range balances {
		resp.Parties[i] = partyResponse{ID: b.Creditor.ID, Name: b.Creditor.Name, Phone: b.Creditor.Phone, Balance: &b.Balance}
	}

	byName(resp.Parties)
	render.JSON(w, http.StatusOK, resp)
}

func (h *CreditorHandler) create(w http.ResponseWriter, r *http.Request) {
	var req partyRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := h.svc.SaveCreditor(r.Context(), &ledger.Creditor{Name: req.Name, Phone: req.Phone})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, partyResponse{ID: c.ID, Name: c.Name, Phone: c.Phone})
}

func (h *CreditorHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.creditor(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	bal, err := h.svc.CreditorBalance(r.Context(), c.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, partyResponse{ID: c.ID, Name: c.Name, Phone: c.Phone, Balance: &bal})
}

func (h *CreditorHandler) update(w http.ResponseWriter, r *http.Request) {
	c, err := h.creditor(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req partyRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	c.Name, c.Phone = req.Name, req.Phone

	if _, err := h.svc.SaveCreditor(r.Context(), c); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, partyResponse{ID: c.ID, Name: c.Name, Phone: c.Phone})
}

func (h *CreditorHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), ledger.KindCreditor, id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CreditorHandler) balance(w http.ResponseWriter, r *http.Request) {
	c, err := h.creditor(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	bal, err := h.svc.CreditorBalance(r.Context(), c.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, balanceResponse{ID: c.ID, Balance: bal})
}

func (h *CreditorHandler) transactions(w http.ResponseWriter, r *http.Request) {
	c, err := h.creditor(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	txs, err := h.svc.TransactionsForCreditor(r.Context(), c.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]entryResponse, len(txs))
	for i, t := range txs {
		resp[i] = fromCreditorTransaction(t)
	}

	render.JSON(w, http.StatusOK, newestFirst(resp))
}

func (h *CreditorHandler) addTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	t, err := decodeEntry(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx := &ledger.CreditorTransaction{CreditorID: id, Amount: t.amount, Description: t.description, Date: t.date}
	if _, err := h.svc.SaveCreditorTransaction(r.Context(), tx); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, fromCreditorTransaction(tx))
}

func (h *CreditorHandler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	creditorID, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	txID, err := render.ID(r, "txID")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	rec, err := h.svc.Get(r.Context(), ledger.KindCreditorTransaction, txID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx, ok := rec.(*ledger.CreditorTransaction)
	if !ok || tx.CreditorID != creditorID {
		render.Error(w, r, ledger.ErrNotFound)
		return
	}

	t, err := decodeEntry(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx.Amount, tx.Description, tx.Date = t.amount, t.description, t.date

	if _, err := h.svc.SaveCreditorTransaction(r.Context(), tx); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, fromCreditorTransaction(tx))
}

func (h *CreditorHandler) statementCSV(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	st, err := h.export.Statement(r.Context(), export.PartyCreditor, id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Attachment(w, "text/csv; charset=utf-8", export.Filename(st, "csv", time.Now()))

	if err := h.export.WriteStatementCSV(w, st); err != nil {
		slog.Error("failed to write statement", "creditor", id, "error", err)
	}
}

func (h *CreditorHandler) statementText(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	st, err := h.export.Statement(r.Context(), export.PartyCreditor, id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.export.FormatStatement(st)))
}

func (h *CreditorHandler) creditor(r *http.Request) (*ledger.Creditor, error) {
	id, err := render.ID(r, "id")
	if err != nil {
		return nil, err
	}

	return h.svc.Creditor(r.Context(), id)
}
