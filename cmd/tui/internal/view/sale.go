package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

// SaleModel records a manual cash sale that does not touch stock.
type SaleModel struct {
	CommonModel
	svc *ledger.Service

	form   *huh.Form
	done   bool
	result string
	err    error
}

func NewSaleModel(svc *ledger.Service, currency string) SaleModel {
	return SaleModel{
		CommonModel: CommonModel{Currency: currency},
		svc:         svc,
		form:        buildSaleForm(),
	}
}

func buildSaleForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("amount").Title("Amount").Placeholder("1.234,50").Validate(positiveAmount),
			huh.NewInput().Key("description").Title("Description (optional)"),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m SaleModel) Title() string { return "New Sale" }

func (m SaleModel) ShortHelp() string {
	if m.done {
		return "Esc: back | n: another sale"
	}

	return "Navigate form | Esc: cancel"
}

func (m SaleModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m SaleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saleSavedMsg:
		m.done = true
		m.err = msg.err
		m.result = msg.summary

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.done && msg.String() == "n" {
			m.done, m.err, m.result = false, nil, ""
			m.form = buildSaleForm()

			return m, m.form.Init()
		}
	}

	if m.done {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.done = true

	return m, m.saveCmd()
}

func (m SaleModel) View() string {
	if !m.done {
		return paddedStyle.Render("New Sale\n\n" + m.form.View())
	}

	if m.err != nil {
		return paddedStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + faintStyle.Render(m.ShortHelp()))
	}

	if m.result == "" {
		return paddedStyle.Render("Saving...")
	}

	return paddedStyle.Render(okStyle.Render("Sale saved.") + "\n\n" + m.result + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

type saleSavedMsg struct {
	summary string
	err     error
}

func (m SaleModel) saveCmd() tea.Cmd {
	amt, err := amount.Parse(m.form.GetString("amount"))
	if err != nil {
		return func() tea.Msg { return saleSavedMsg{err: err} }
	}

	sale := &ledger.Sale{
		Amount:      amt,
		Description: strings.TrimSpace(m.form.GetString("description")),
		Date:        ledger.Day(timeNow()),
	}

	svc, money := m.svc, m.Money

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := svc.SaveSale(ctx, sale); err != nil {
			return saleSavedMsg{err: err}
		}

		return saleSavedMsg{summary: fmt.Sprintf("%s  %s  %s", FormatDate(sale.Date), money(sale.Amount), sale.Description)}
	}
}
