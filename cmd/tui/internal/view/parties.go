package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type partiesState int

const (
	partiesStateBrowse partiesState = iota
	partiesStateNew
	partiesStateEntry
	partiesStateStatement
)

// PartiesModel lists clients or creditors with their balances.
type PartiesModel struct {
	CommonModel
	book partyBook

	state partiesState
	table table.Model
	rows  []partyRow
	total decimal.Decimal
	form  *huh.Form

	loading   bool
	err       error
	status    string
	statement string
}

func NewClientsModel(svc *ledger.Service, exp *export.Service, currency string) PartiesModel {
	return newPartiesModel(newClientBook(svc, exp), currency)
}

func NewCreditorsModel(svc *ledger.Service, exp *export.Service, currency string) PartiesModel {
	return newPartiesModel(newCreditorBook(svc, exp), currency)
}

func newPartiesModel(book partyBook, currency string) PartiesModel {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Phone", Width: 16},
		{Title: "Balance", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return PartiesModel{
		CommonModel: CommonModel{Currency: currency},
		book:        book,
		table:       t,
		loading:     true,
	}
}

func (m PartiesModel) Title() string { return m.book.Noun() + "s" }

func (m PartiesModel) ShortHelp() string {
	switch m.state {
	case partiesStateNew, partiesStateEntry:
		return "Navigate form | Esc: cancel"
	case partiesStateStatement:
		return "Esc: back"
	}

	return "Esc: back | a: add entry | n: new | Enter: statement | r: refresh"
}

func (m PartiesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PartiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPartiesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rows = msg.rows
		m.total = msg.total
		m.refreshTable()

		return m, nil

	case partySavedMsg:
		m.state = partiesStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		m.status = "Saved."

		return m, m.loadCmd()

	case statementMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.statement = msg.text
		m.state = partiesStateStatement
		m.table.Blur()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil
	}

	switch m.state {
	case partiesStateBrowse:
		return m.updateBrowse(msg)
	case partiesStateNew, partiesStateEntry:
		return m.updateForm(msg)
	case partiesStateStatement:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			m.state = partiesStateBrowse
			m.table.Focus()
		}
	}

	return m, nil
}

func (m PartiesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.startNew()
		case "a":
			return m.startEntry()
		case "enter":
			return m, m.statementCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PartiesModel) startNew() (tea.Model, tea.Cmd) {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Validate(required("name")),

			huh.NewInput().
				Key("phone").
				Title("Phone (optional)"),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = partiesStateNew
	m.table.Blur()

	return m, m.form.Init()
}

func (m PartiesModel) startEntry() (tea.Model, tea.Cmd) {
	if _, ok := m.selected(); !ok {
		return m, nil
	}

	charge, payment := "Charge (owes more)", "Payment (owes less)"
	if m.book.Noun() == "Creditor" {
		charge, payment = "Purchase (we owe more)", "Payment (we owe less)"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("kind").
				Title("Entry").
				Options(
					huh.NewOption(charge, "charge"),
					huh.NewOption(payment, "payment"),
				),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("1.234,50").
				Validate(positiveAmount),

			huh.NewInput().
				Key("description").
				Title("Description"),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = partiesStateEntry
	m.table.Blur()

	return m, m.form.Init()
}

func (m PartiesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = partiesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == partiesStateNew {
		return m, m.createCmd()
	}

	return m, m.addEntryCmd()
}

func (m PartiesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.state == partiesStateStatement {
		return paddedStyle.Render(m.statement + "\n" + faintStyle.Render(m.ShortHelp()))
	}

	header := fmt.Sprintf("%ss: %d | Total owed: %s",
		m.book.Noun(), len(m.rows), balanceStyle(m.total, m.Money(m.total)))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render(m.ShortHelp()),
	)

	if m.form != nil && (m.state == partiesStateNew || m.state == partiesStateEntry) {
		title := "New " + m.book.Noun()
		if row, ok := m.selected(); ok && m.state == partiesStateEntry {
			title = fmt.Sprintf("New entry for %s\n\nBalance: %s", row.name, m.Money(row.balance))
		}

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Render(title+"\n\n"+m.form.View()))
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return paddedStyle.Render(content)
}

func (m PartiesModel) selected() (partyRow, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return partyRow{}, false
	}

	return m.rows[idx], true
}

func (m *PartiesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, table.Row{r.name, r.phone, m.Money(r.balance)})
	}

	m.table.SetRows(rows)
}

// Messages

type loadPartiesMsg struct {
	rows  []partyRow
	total decimal.Decimal
	err   error
}

func (m PartiesModel) loadCmd() tea.Cmd {
	book := m.book

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		rows, total, err := book.Load(ctx)

		return loadPartiesMsg{rows: rows, total: total, err: err}
	}
}

type partySavedMsg struct {
	err error
}

func (m PartiesModel) createCmd() tea.Cmd {
	book := m.book
	name, phone := strings.TrimSpace(m.form.GetString("name")), strings.TrimSpace(m.form.GetString("phone"))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return partySavedMsg{err: book.Create(ctx, name, phone)}
	}
}

func (m PartiesModel) addEntryCmd() tea.Cmd {
	row, ok := m.selected()
	if !ok {
		return nil
	}

	amt, err := amount.Parse(m.form.GetString("amount"))
	if err != nil {
		return func() tea.Msg { return partySavedMsg{err: err} }
	}

	if m.form.GetString("kind") == "payment" {
		amt = amt.Neg()
	}

	book, desc := m.book, strings.TrimSpace(m.form.GetString("description"))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return partySavedMsg{err: book.AddEntry(ctx, row.id, amt, desc)}
	}
}

type statementMsg struct {
	text string
	err  error
}

func (m PartiesModel) statementCmd() tea.Cmd {
	row, ok := m.selected()
	if !ok {
		return nil
	}

	book := m.book

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		text, err := book.Statement(ctx, row.id)

		return statementMsg{text: text, err: err}
	}
}

// Validators

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func positiveAmount(s string) error {
	d, err := amount.Parse(s)
	if err != nil {
		return errors.New("not a valid amount")
	}

	if !d.IsPositive() {
		return errors.New("amount must be greater than zero")
	}

	return nil
}
