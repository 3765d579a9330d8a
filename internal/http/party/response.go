package party

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type partyResponse struct {
	ID      uuid.UUID        `json:"id"`
	Name    string           `json:"name"`
	Phone   string           `json:"phone"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

type listResponse struct {
	Parties   []partyResponse `json:"parties"`
	TotalDebt decimal.Decimal `json:"total_debt"`
}

type entryResponse struct {
	ID          uuid.UUID       `json:"id"`
	PartyID     uuid.UUID       `json:"party_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

type balanceResponse struct {
	ID      uuid.UUID       `json:"id"`
	Balance decimal.Decimal `json:"balance"`
}

func fromTransaction(t *ledger.Transaction) entryResponse {
	return entryResponse{ID: t.ID, PartyID: t.ClientID, Amount: t.Amount, Description: t.Description, Date: t.Date.Format(time.DateOnly)}
}

func fromCreditorTransaction(t *ledger.CreditorTransaction) entryResponse {
	return entryResponse{ID: t.ID, PartyID: t.CreditorID, Amount: t.Amount, Description: t.Description, Date: t.Date.Format(time.DateOnly)}
}

// newestFirst orders entries for display, latest date first.
func newestFirst(entries []entryResponse) []entryResponse {
	slices.SortStableFunc(entries, func(a, b entryResponse) int {
		return cmp.Compare(b.Date, a.Date)
	})

	return entries
}

// byName orders parties for display.
func byName(ps []partyResponse) []partyResponse {
	slices.SortStableFunc(ps, func(a, b partyResponse) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return ps
}
