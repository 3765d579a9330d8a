package view

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
	"github.com/MrJamesThe3rd/fiado/internal/categorize"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type expenseState int

const (
	expenseStateLoading expenseState = iota
	expenseStateDetails
	expenseStateCategory
	expenseStateResult
)

// ExpenseModel records an expense in two steps: the details, then a category
// prefilled from what was learned about similar descriptions.
type ExpenseModel struct {
	CommonModel
	svc        *ledger.Service
	categories *categorize.Service

	state     expenseState
	creditors []*ledger.Creditor
	details   *huh.Form
	category  *huh.Form

	expense *ledger.Expense
	result  string
	err     error
}

func NewExpenseModel(svc *ledger.Service, categories *categorize.Service, currency string) ExpenseModel {
	return ExpenseModel{
		CommonModel: CommonModel{Currency: currency},
		svc:         svc,
		categories:  categories,
	}
}

func (m ExpenseModel) Title() string { return "New Expense" }

func (m ExpenseModel) ShortHelp() string {
	if m.state == expenseStateResult {
		return "Esc: back | n: another expense"
	}

	return "Navigate form | Esc: cancel"
}

func (m ExpenseModel) Init() tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		creditors, err := svc.Creditors(ctx)

		return creditorsLoadedMsg{creditors: creditors, err: err}
	}
}

func (m ExpenseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case creditorsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = expenseStateResult

			return m, nil
		}

		m.creditors = msg.creditors
		m.details = m.buildDetailsForm()
		m.state = expenseStateDetails

		return m, m.details.Init()

	case suggestionMsg:
		m.category = buildCategoryForm(msg.category)
		m.state = expenseStateCategory

		return m, m.category.Init()

	case expenseSavedMsg:
		m.state = expenseStateResult
		m.err = msg.err
		m.result = msg.summary

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == expenseStateResult && msg.String() == "n" {
			m.err, m.result = nil, ""
			m.details = m.buildDetailsForm()
			m.state = expenseStateDetails

			return m, m.details.Init()
		}
	}

	switch m.state {
	case expenseStateDetails:
		return m.updateDetails(msg)
	case expenseStateCategory:
		return m.updateCategory(msg)
	}

	return m, nil
}

func (m ExpenseModel) updateDetails(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.details.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.details = f
	}

	if m.details.State != huh.StateCompleted {
		return m, cmd
	}

	e, err := m.expenseFromDetails()
	if err != nil {
		m.err = err
		m.state = expenseStateResult

		return m, nil
	}

	m.expense = e
	categories := m.categories

	return m, func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		// A failed lookup just leaves the category blank.
		category, _ := categories.Suggest(ctx, e.Description)

		return suggestionMsg{category: category}
	}
}

func (m ExpenseModel) updateCategory(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.category.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.category = f
	}

	if m.category.State != huh.StateCompleted {
		return m, cmd
	}

	e := m.expense
	e.Category = strings.TrimSpace(m.category.GetString("category"))

	return m, m.saveCmd(e)
}

func (m ExpenseModel) buildDetailsForm() *huh.Form {
	options := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, c := range m.creditors {
		options = append(options, huh.NewOption(c.Name, c.ID.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("description").Title("Description").Validate(required("description")),
			huh.NewInput().Key("amount").Title("Amount").Placeholder("1.234,50").Validate(positiveAmount),
			huh.NewSelect[string]().
				Key("creditor").
				Title("Paid to creditor").
				Description("A payment is added to the creditor's ledger").
				Options(options...),
		),
	).WithWidth(50).WithShowHelp(false)
}

func buildCategoryForm(suggested string) *huh.Form {
	category := suggested

	desc := "No suggestion yet"
	if suggested != "" {
		desc = "Suggested from past expenses"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("category").
				Title("Category").
				Description(desc).
				Value(&category),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExpenseModel) expenseFromDetails() (*ledger.Expense, error) {
	amt, err := amount.Parse(m.details.GetString("amount"))
	if err != nil {
		return nil, err
	}

	e := &ledger.Expense{
		Amount:      amt,
		Description: strings.TrimSpace(m.details.GetString("description")),
		Date:        ledger.Day(timeNow()),
	}

	if id := m.details.GetString("creditor"); id != "" {
		creditorID, err := uuid.Parse(id)
		if err != nil {
			return nil, err
		}

		e.CreditorID = &creditorID
	}

	return e, nil
}

func (m ExpenseModel) View() string {
	switch m.state {
	case expenseStateLoading:
		return paddedStyle.Render("Loading...")
	case expenseStateDetails:
		return paddedStyle.Render("New Expense\n\n" + m.details.View())
	case expenseStateCategory:
		return paddedStyle.Render(fmt.Sprintf("%s  %s\n\n%s",
			m.expense.Description, m.Money(m.expense.Amount), m.category.View()))
	}

	if m.err != nil {
		return paddedStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + faintStyle.Render(m.ShortHelp()))
	}

	return paddedStyle.Render(okStyle.Render("Expense saved.") + "\n\n" + m.result + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

// Messages

type creditorsLoadedMsg struct {
	creditors []*ledger.Creditor
	err       error
}

type suggestionMsg struct {
	category string
}

type expenseSavedMsg struct {
	summary string
	err     error
}

func (m ExpenseModel) saveCmd(e *ledger.Expense) tea.Cmd {
	svc, categories, money := m.svc, m.categories, m.Money

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := svc.RecordExpense(ctx, e)
		if err != nil {
			return expenseSavedMsg{err: err}
		}

		learnCategory(ctx, categories, e)

		summary := fmt.Sprintf("%s  %s  [%s]", e.Description, money(e.Amount), e.Category)
		if res.Payment != nil {
			summary += fmt.Sprintf("\nPayment of %s added to the creditor's ledger.", money(res.Payment.Amount.Abs()))
		}

		return expenseSavedMsg{summary: summary}
	}
}

// learnCategory is best effort; the expense is already stored.
func learnCategory(ctx context.Context, categories *categorize.Service, e *ledger.Expense) {
	if e.Category == "" || e.Description == "" {
		return
	}

	if err := categories.Learn(ctx, e.Description, e.Category); err != nil {
		slog.Warn("failed to learn category", "description", e.Description, "error", err)
	}
}
