// Package collection exposes every persisted kind through one generic read and
// delete surface.
package collection

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/fiado/internal/http/render"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{kind}", h.list)
	r.Get("/{kind}/{id}", h.get)
	r.Delete("/{kind}/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	kind, err := ledger.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	recs, err := h.svc.All(r.Context(), kind)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, recs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	kind, err := ledger.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	rec, err := h.svc.Get(r.Context(), kind, id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, rec)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	kind, err := ledger.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), kind, id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
