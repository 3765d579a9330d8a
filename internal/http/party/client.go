// Package party serves the client and creditor ledgers.
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

type ClientHandler struct {
	svc    *ledger.Service
	export *export.Service
}

func NewClientHandler(svc *ledger.Service, exp *export.Service) *ClientHandler {
	return &ClientHandler{svc: svc, export: exp}
}

func (h *ClientHandler) Routes(r chi.Router) {
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

func (h *ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	balances, err := h.svc.ClientBalances(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	total, err := h.svc.TotalClientDebt(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := listResponse{Parties: make([]partyResponse, len(balances)), TotalDebt: total}
	for i, b := range balances {
		resp.Parties[i] = partyResponse{ID: b.Client.ID, Name: b.Client.Name, Phone: b.Client.Phone, Balance: &b.Balance}
	}

	byName(resp.Parties)
	render.JSON(w, http.StatusOK, resp)
}

func (h *ClientHandler) create(w http.ResponseWriter, r *http.Request) {
	var req partyRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	c, err := h.svc.SaveClient(r.Context(), &ledger.Client{Name: req.Name, Phone: req.Phone})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, partyResponse{ID: c.ID, Name: c.Name, Phone: c.Phone})
}

func (h *ClientHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.client(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	bal, err := h.svc.ClientBalance(r.Context(), c.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, partyResponse{ID: c.ID, Name: c.Name, Phone: c.Phone, Balance: &bal})
}

func (h *ClientHandler) update(w http.ResponseWriter, r *http.Request) {
	c, err := h.client(r)
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

	if _, err := h.svc.SaveClient(r.Context(), c); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, partyResponse{ID: c.ID, Name: c.Name, Phone: c.Phone})
}

func (h *ClientHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), ledger.KindClient, id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientHandler) balance(w http.ResponseWriter, r *http.Request) {
	c, err := h.client(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	bal, err := h.svc.ClientBalance(r.Context(), c.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, balanceResponse{ID: c.ID, Balance: bal})
}

func (h *ClientHandler) transactions(w http.ResponseWriter, r *http.Request) {
	c, err := h.client(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	txs, err := h.svc.TransactionsFor(r.Context(), c.ID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]entryResponse, len(txs))
	for i, t := range txs {
		resp[i] = fromTransaction(t)
	}

	render.JSON(w, http.StatusOK, newestFirst(resp))
}

func (h *ClientHandler) addTransaction(w http.ResponseWriter, r *http.Request) {
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

	tx := &ledger.Transaction{ClientID: id, Amount: t.amount, Description: t.description, Date: t.date}
	if _, err := h.svc.SaveTransaction(r.Context(), tx); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, fromTransaction(tx))
}

func (h *ClientHandler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	clientID, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	txID, err := render.ID(r, "txID")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	rec, err := h.svc.Get(r.Context(), ledger.KindTransaction, txID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx, ok := rec.(*ledger.Transaction)
	if !ok || tx.ClientID != clientID {
		render.Error(w, r, ledger.ErrNotFound)
		return
	}

	t, err := decodeEntry(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx.Amount, tx.Description, tx.Date = t.amount, t.description, t.date

	if _, err := h.svc.SaveTransaction(r.Context(), tx); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, fromTransaction(tx))
}

func (h *ClientHandler) statementCSV(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	st, err := h.export.Statement(r.Context(), export.PartyClient, id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Attachment(w, "text/csv; charset=utf-8", export.Filename(st, "csv", time.Now()))

	if err := h.export.WriteStatementCSV(w, st); err != nil {
		slog.Error("failed to write statement", "client", id, "error", err)
	}
}

func (h *ClientHandler) statementText(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	st, err := h.export.Statement(r.Context(), export.PartyClient, id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.export.FormatStatement(st)))
}

func (h *ClientHandler) client(r *http.Request) (*ledger.Client, error) {
	id, err := render.ID(r, "id")
	if err != nil {
		return nil, err
	}

	return h.svc.Client(r.Context(), id)
}
