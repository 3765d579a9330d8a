package view

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type inventoryState int

const (
	inventoryStateBrowse inventoryState = iota
	inventoryStateSell
	inventoryStateNew
)

const noClient = ""

// InventoryModel lists products with their stock and sells from it.
type InventoryModel struct {
	CommonModel
	svc *ledger.Service

	state    inventoryState
	table    table.Model
	products []*ledger.Product
	clients  []*ledger.Client
	form     *huh.Form

	loading bool
	err     error
	status  string
}

func NewInventoryModel(svc *ledger.Service, currency string) InventoryModel {
	columns := []table.Column{
		{Title: "Product", Width: 30},
		{Title: "Price", Width: 14},
		{Title: "Stock", Width: 8},
		{Title: "Description", Width: 30},
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

	return InventoryModel{
		CommonModel: CommonModel{Currency: currency},
		svc:         svc,
		table:       t,
		loading:     true,
	}
}

func (m InventoryModel) Title() string { return "Inventory" }

func (m InventoryModel) ShortHelp() string {
	if m.state != inventoryStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | s: sell | n: new product | r: refresh"
}

func (m InventoryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InventoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInventoryMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.products = msg.products
		m.clients = msg.clients
		m.refreshTable()

		return m, nil

	case inventorySavedMsg:
		m.state = inventoryStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.status

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil
	}

	if m.state != inventoryStateBrowse {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "s":
			return m.startSell()
		case "n":
			return m.startNew()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InventoryModel) startSell() (tea.Model, tea.Cmd) {
	p, ok := m.selected()
	if !ok {
		return m, nil
	}

	if p.Quantity == 0 {
		m.status = fmt.Sprintf("%s is out of stock.", p.Name)
		return m, nil
	}

	options := []huh.Option[string]{huh.NewOption("(cash sale, no client)", noClient)}
	for _, c := range m.clients {
		options = append(options, huh.NewOption(c.Name, c.ID.String()))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("quantity").
				Title(fmt.Sprintf("Quantity (in stock: %d)", p.Quantity)).
				Placeholder("1").
				Validate(quantityUpTo(p.Quantity)),

			huh.NewSelect[string]().
				Key("client").
				Title("Charge to").
				Options(options...),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = inventoryStateSell
	m.table.Blur()

	return m, m.form.Init()
}

func (m InventoryModel) startNew() (tea.Model, tea.Cmd) {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("name").Title("Name").Validate(required("name")),
			huh.NewInput().Key("description").Title("Description (optional)"),
			huh.NewInput().Key("price").Title("Price").Validate(positiveAmount),
			huh.NewInput().Key("quantity").Title("Stock").Placeholder("0").Validate(quantityUpTo(-1)),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = inventoryStateNew
	m.table.Blur()

	return m, m.form.Init()
}

func (m InventoryModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = inventoryStateBrowse
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

	if m.state == inventoryStateSell {
		return m, m.sellCmd()
	}

	return m, m.createCmd()
}

func (m InventoryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading inventory...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(fmt.Sprintf("Products: %d", len(m.products))),
		tableView,
		faintStyle.Render(m.ShortHelp()),
	)

	if m.form != nil && m.state != inventoryStateBrowse {
		title := "New Product"
		if p, ok := m.selected(); ok && m.state == inventoryStateSell {
			title = fmt.Sprintf("Sell %s at %s", p.Name, m.Money(p.Price))
		}

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Render(title+"\n\n"+m.form.View()))
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return paddedStyle.Render(content)
}

func (m InventoryModel) selected() (*ledger.Product, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.products) {
		return nil, false
	}

	return m.products[idx], true
}

func (m *InventoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		rows = append(rows, table.Row{p.Name, m.Money(p.Price), strconv.FormatInt(p.Quantity, 10), p.Description})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInventoryMsg struct {
	products []*ledger.Product
	clients  []*ledger.Client
	err      error
}

func (m InventoryModel) loadCmd() tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := svc.Products(ctx)
		if err != nil {
			return loadInventoryMsg{err: err}
		}

		clients, err := svc.Clients(ctx)

		return loadInventoryMsg{products: products, clients: clients, err: err}
	}
}

type inventorySavedMsg struct {
	status string
	err    error
}

func (m InventoryModel) sellCmd() tea.Cmd {
	p, ok := m.selected()
	if !ok {
		return nil
	}

	qty, err := parseQuantity(m.form.GetString("quantity"))
	if err != nil {
		return func() tea.Msg { return inventorySavedMsg{err: err} }
	}

	cmd := ledger.InventorySale{ProductID: p.ID, Quantity: qty}

	if id := m.form.GetString("client"); id != noClient {
		clientID, err := uuid.Parse(id)
		if err != nil {
			return func() tea.Msg { return inventorySavedMsg{err: err} }
		}

		cmd.ClientID = &clientID
	}

	svc, money := m.svc, m.Money

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := svc.SellFromInventory(ctx, cmd)
		if err != nil {
			return inventorySavedMsg{err: err}
		}

		return inventorySavedMsg{status: fmt.Sprintf("Sold %d x %s for %s, %d left.",
			qty, res.Product.Name, money(res.Amount()), res.Product.Quantity)}
	}
}

func (m InventoryModel) createCmd() tea.Cmd {
	price, err := amount.Parse(m.form.GetString("price"))
	if err != nil {
		return func() tea.Msg { return inventorySavedMsg{err: err} }
	}

	qty, err := parseQuantity(cmp.Or(strings.TrimSpace(m.form.GetString("quantity")), "0"))
	if err != nil {
		return func() tea.Msg { return inventorySavedMsg{err: err} }
	}

	p := &ledger.Product{
		Name:        strings.TrimSpace(m.form.GetString("name")),
		Description: strings.TrimSpace(m.form.GetString("description")),
		Price:       price,
		Quantity:    qty,
	}

	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := svc.SaveProduct(ctx, p); err != nil {
			return inventorySavedMsg{err: err}
		}

		return inventorySavedMsg{status: fmt.Sprintf("Added %s.", p.Name)}
	}
}

func parseQuantity(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.New("quantity must be a whole number")
	}

	return n, nil
}

// quantityUpTo validates a quantity input. A negative limit allows zero and has no upper bound.
func quantityUpTo(limit int64) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" && limit < 0 {
			return nil
		}

		n, err := parseQuantity(s)
		if err != nil {
			return err
		}

		switch {
		case limit < 0 && n < 0:
			return errors.New("quantity cannot be negative")
		case limit >= 0 && n <= 0:
			return errors.New("quantity must be greater than zero")
		case limit >= 0 && n > limit:
			return fmt.Errorf("only %d in stock", limit)
		}

		return nil
	}
}
