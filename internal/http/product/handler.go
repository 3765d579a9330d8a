package product

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/http/render"
	"github.com/MrJamesThe3rd/fiado/internal/importer"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

const maxUpload = 10 << 20

type Handler struct {
	svc      *ledger.Service
	importer *importer.Service
}

func NewHandler(svc *ledger.Service, imp *importer.Service) *Handler {
	return &Handler{svc: svc, importer: imp}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Post("/import", h.importCSV)
}

type productRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required,numeric"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
}

func toResponse(p *ledger.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Description: p.Description, Price: p.Price, Quantity: p.Quantity}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toResponse(p)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	p, err := h.svc.Product(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProduct(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if _, err := h.svc.SaveProduct(r.Context(), p); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if _, err := h.svc.Product(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	p, err := decodeProduct(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	p.ID = id

	if _, err := h.svc.SaveProduct(r.Context(), p); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(p))
}

// importCSV accepts the sheet either as a multipart "file" field or as the raw body.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	var src io.Reader = http.MaxBytesReader(w, r.Body, maxUpload)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			render.Error(w, r, fmt.Errorf("%w: failed to parse form: %w", render.ErrBadRequest, err))
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			render.Error(w, r, fmt.Errorf("%w: file field is required", render.ErrBadRequest))
			return
		}
		defer file.Close()

		src = file
	}

	sum, err := h.importer.Import(r.Context(), src)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, sum)
}

func decodeProduct(r *http.Request) (*ledger.Product, error) {
	var req productRequest
	if err := render.Decode(r, &req); err != nil {
		return nil, err
	}

	price, err := render.Amount(req.Price)
	if err != nil {
		return nil, err
	}

	return &ledger.Product{Name: req.Name, Description: req.Description, Price: price, Quantity: req.Quantity}, nil
}
