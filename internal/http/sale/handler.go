package sale

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

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
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Post("/inventory", h.sellFromInventory)
}

type saleRequest struct {
	Amount      string `json:"amount" validate:"required,numeric"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type inventorySaleRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
	ClientID    string `json:"client_id" validate:"omitempty,uuid"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type saleResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

type inventorySaleResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Remaining     int64           `json:"remaining"`
	Amount        decimal.Decimal `json:"amount"`
	SaleID        *uuid.UUID      `json:"sale_id,omitempty"`
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty"`
}

func toResponse(s *ledger.Sale) saleResponse {
	return saleResponse{ID: s.ID, Amount: s.Amount, Description: s.Description, Date: s.Date.Format(time.DateOnly)}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svc.Sales(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]saleResponse, len(sales))
	for i, s := range sales {
		resp[i] = toResponse(s)
	}

	render.JSON(w, http.StatusOK, resp)
}

// create records a manual sale. Stock is not checked.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	sale, err := decodeSale(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if _, err := h.svc.SaveSale(r.Context(), sale); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(sale))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := render.ID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if _, err := h.svc.Sale(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	sale, err := decodeSale(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	sale.ID = id

	if _, err := h.svc.SaveSale(r.Context(), sale); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(sale))
}

func (h *Handler) sellFromInventory(w http.ResponseWriter, r *http.Request) {
	var req inventorySaleRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	date, err := render.Date(req.Date)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	cmd := ledger.InventorySale{
		ProductID:   uuid.MustParse(req.ProductID),
		Quantity:    req.Quantity,
		Description: req.Description,
		Date:        date,
	}

	if req.ClientID != "" {
		cmd.ClientID = new(uuid.MustParse(req.ClientID))
	}

	res, err := h.svc.SellFromInventory(r.Context(), cmd)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := inventorySaleResponse{
		ProductID: res.Product.ID,
		Remaining: res.Product.Quantity,
		Amount:    res.Amount(),
	}

	if res.Sale != nil {
		resp.SaleID = &res.Sale.ID
	}

	if res.Transaction != nil {
		resp.TransactionID = &res.Transaction.ID
	}

	render.JSON(w, http.StatusCreated, resp)
}

func decodeSale(r *http.Request) (*ledger.Sale, error) {
	var req saleRequest
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

	return &ledger.Sale{Amount: amt, Description: req.Description, Date: date}, nil
}
