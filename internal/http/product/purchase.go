package product

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/http/render"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

// PurchaseHandler records creditor purchases that may bring stock in.
type PurchaseHandler struct {
	svc *ledger.Service
}

func NewPurchaseHandler(svc *ledger.Service) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

func (h *PurchaseHandler) Routes(r chi.Router) {
	r.Post("/", h.create)
}

type purchaseRequest struct {
	CreditorID  string `json:"creditor_id" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required,numeric"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	ProductID   string `json:"product_id" validate:"omitempty,uuid"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
}

type purchaseResponse struct {
	ID          uuid.UUID        `json:"id"`
	CreditorID  uuid.UUID        `json:"creditor_id"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
	Product     *productResponse `json:"product,omitempty"`
}

func (h *PurchaseHandler) create(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	amt, err := render.Amount(req.Amount)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	date, err := render.Date(req.Date)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	cmd := ledger.Purchase{
		Transaction: &ledger.CreditorTransaction{
			CreditorID:  uuid.MustParse(req.CreditorID),
			Amount:      amt,
			Description: req.Description,
			Date:        date,
		},
		Quantity: req.Quantity,
	}

	if req.ProductID != "" {
		cmd.ProductID = new(uuid.MustParse(req.ProductID))
	}

	res, err := h.svc.RecordPurchase(r.Context(), cmd)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := purchaseResponse{
		ID:          res.Transaction.ID,
		CreditorID:  res.Transaction.CreditorID,
		Amount:      res.Transaction.Amount,
		Description: res.Transaction.Description,
		Date:        res.Transaction.Date.Format(time.DateOnly),
	}

	if res.Product != nil {
		resp.Product = new(toResponse(res.Product))
	}

	render.JSON(w, http.StatusCreated, resp)
}
