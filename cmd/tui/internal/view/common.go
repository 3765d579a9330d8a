package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
)

const dbTimeout = 5 * time.Second

var timeNow = time.Now

type CommonModel struct {
	Width    int
	Height   int
	Currency string
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Money formats d in the shop's currency.
func (c CommonModel) Money(d decimal.Decimal) string {
	return amount.Format(d, c.Currency)
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	debtStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	paddedStyle = lipgloss.NewStyle().Padding(1)
	panelStyle  = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48)
)

// balanceStyle highlights balances someone still owes.
func balanceStyle(d decimal.Decimal, s string) string {
	if d.IsPositive() {
		return debtStyle.Render(s)
	}

	return s
}
