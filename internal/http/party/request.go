package party

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/http/render"
)

type partyRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

type entryRequest struct {
	Amount      string `json:"amount" validate:"required,numeric"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type entry struct {
	amount      decimal.Decimal
	description string
	date        time.Time
}

func decodeEntry(r *http.Request) (entry, error) {
	var req entryRequest
	if err := render.Decode(r, &req); err != nil {
		return entry{}, err
	}

	amt, err := render.Amount(req.Amount)
	if err != nil {
		return entry{}, err
	}

	date, err := render.Date(req.Date)
	if err != nil {
		return entry{}, err
	}

	return entry{amount: amt, description: req.Description, date: date}, nil
}
