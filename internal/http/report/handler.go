// Package report serves the business summary, the XLSX workbook and full backups.
package report

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/backup"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/http/render"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc    *ledger.Service
	export *export.Service
}

func NewHandler(svc *ledger.Service, exp *export.Service) *Handler {
	return &Handler{svc: svc, export: exp}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/workbook.xlsx", h.workbook)
}

// BackupRoutes serves the whole store as a JSON backup and restores from one.
func (h *Handler) BackupRoutes(r chi.Router) {
	r.Get("/", h.downloadBackup)
	r.Put("/", h.restoreBackup)
}

type summaryResponse struct {
	From              string          `json:"from,omitempty"`
	To                string          `json:"to,omitempty"`
	Sales             decimal.Decimal `json:"sales"`
	Charges           decimal.Decimal `json:"charges"`
	PaymentsReceived  decimal.Decimal `json:"payments_received"`
	Expenses          decimal.Decimal `json:"expenses"`
	CashFlow          decimal.Decimal `json:"cash_flow"`
	TotalClientDebt   decimal.Decimal `json:"total_client_debt"`
	TotalCreditorDebt decimal.Decimal `json:"total_creditor_debt"`
}

type restoreResponse struct {
	Records int `json:"records"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	from, err := optionalDate(r.URL.Query().Get("from"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	to, err := optionalDate(r.URL.Query().Get("to"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	sum, err := h.svc.Summary(r.Context(), ledger.Period{Start: from, End: to})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, summaryResponse{
		From:              r.URL.Query().Get("from"),
		To:                r.URL.Query().Get("to"),
		Sales:             sum.Sales,
		Charges:           sum.Charges,
		PaymentsReceived:  sum.PaymentsReceived,
		Expenses:          sum.Expenses,
		CashFlow:          sum.CashFlow(),
		TotalClientDebt:   sum.TotalClientDebt,
		TotalCreditorDebt: sum.TotalCreditorDebt,
	})
}

func (h *Handler) workbook(w http.ResponseWriter, r *http.Request) {
	render.Attachment(w, xlsxContentType, "fiado-"+time.Now().Format("20060102")+".xlsx")

	if err := h.export.Workbook(r.Context(), w); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}

func (h *Handler) downloadBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	now := time.Now()
	render.Attachment(w, "application/json", backup.Filename(now))

	if err := backup.Write(w, snap, now); err != nil {
		slog.Error("failed to write backup", "error", err)
	}
}

func (h *Handler) restoreBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := backup.Read(http.MaxBytesReader(w, r.Body, 50<<20))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.Restore(r.Context(), snap); err != nil {
		render.Error(w, r, err)
		return
	}

	slog.Info("backup restored", "records", snap.Len())

	render.JSON(w, http.StatusOK, restoreResponse{Records: snap.Len()})
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	return render.Date(s)
}
