package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fiado/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/fiado/internal/categorize"
	categorizeStore "github.com/MrJamesThe3rd/fiado/internal/categorize/store"
	"github.com/MrJamesThe3rd/fiado/internal/config"
	"github.com/MrJamesThe3rd/fiado/internal/database"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/fiado/internal/ledger/store"
	"github.com/MrJamesThe3rd/fiado/internal/logger"
)

type View int

const (
	ViewMenu View = iota
	ViewClients
	ViewInventory
	ViewCreditors
	ViewExpense
	ViewSale
	ViewReports
)

type model struct {
	ledgerService   *ledger.Service
	categoryService *categorize.Service
	exportService   *export.Service
	currency        string
	exportDir       string
	appName         string

	currentView View
	// quitOnBack is set when the program was started straight into a form.
	quitOnBack bool
	size       tea.WindowSizeMsg

	screen tea.Model
}

func initialModel(cfg *config.Config, start View) (model, error) {
	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		return model{}, fmt.Errorf("opening database: %w", err)
	}

	ledgerSvc := ledger.NewService(ledgerStore.New(db))

	return model{
		ledgerService:   ledgerSvc,
		categoryService: categorize.NewService(categorizeStore.New(db)),
		exportService:   export.NewService(ledgerSvc, cfg.App.Currency),
		currency:        cfg.App.Currency,
		exportDir:       cfg.Export.Dir,
		appName:         cfg.App.Name,
		currentView:     start,
		quitOnBack:      start != ViewMenu,
	}, nil
}

func (m model) Init() tea.Cmd {
	if m.currentView == ViewMenu {
		return nil
	}

	start := m.currentView

	return func() tea.Msg { return openMsg{view: start} }
}

// openMsg switches to a screen from Init, where the model cannot be changed.
type openMsg struct {
	view View
}

func (m model) newScreen(v View) tea.Model {
	switch v {
	case ViewClients:
		return view.NewClientsModel(m.ledgerService, m.exportService, m.currency)
	case ViewInventory:
		return view.NewInventoryModel(m.ledgerService, m.currency)
	case ViewCreditors:
		return view.NewCreditorsModel(m.ledgerService, m.exportService, m.currency)
	case ViewExpense:
		return view.NewExpenseModel(m.ledgerService, m.categoryService, m.currency)
	case ViewSale:
		return view.NewSaleModel(m.ledgerService, m.currency)
	case ViewReports:
		return view.NewReportModel(m.ledgerService, m.exportService, m.currency, m.exportDir)
	}

	return nil
}

func (m model) open(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.screen = m.newScreen(v)

	cmds := []tea.Cmd{m.screen.Init()}
	if m.size.Width > 0 {
		size := m.size
		cmds = append(cmds, func() tea.Msg { return size })
	}

	return m, tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case openMsg:
		return m.open(msg.view)
	case view.BackMsg:
		if m.quitOnBack {
			return m, tea.Quit
		}

		m.currentView = ViewMenu
		m.screen = nil

		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(ViewClients)
			case "2":
				return m.open(ViewInventory)
			case "3":
				return m.open(ViewCreditors)
			case "4":
				return m.open(ViewExpense)
			case "5":
				return m.open(ViewSale)
			case "6":
				return m.open(ViewReports)
			}
		}
	}

	if m.screen == nil {
		return m, nil
	}

	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.currentView == ViewMenu || m.screen == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Clients\n" +
				"2. Inventory\n" +
				"3. Creditors\n" +
				"4. New Expense\n" +
				"5. New Sale\n" +
				"6. Reports\n\n" +
				"q. Quit",
		)
	}

	return m.screen.View()
}

func parseStart(s string) (View, error) {
	switch s {
	case "":
		return ViewMenu, nil
	case "expense":
		return ViewExpense, nil
	case "sale":
		return ViewSale, nil
	}

	return ViewMenu, fmt.Errorf("unknown form %q, want expense or sale", s)
}

func main() {
	newForm := flag.String("new", "", "open a form directly: expense or sale")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	start, err := parseStart(*newForm)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// The terminal belongs to the UI, so logs go to a file next to the database.
	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(cfg.DB.Path), "fiado-tui.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err == nil {
		defer logFile.Close()
		logger.New(logFile, cfg.Log.Level, cfg.Log.Format)
	}

	m, err := initialModel(cfg, start)
	if err != nil {
		slog.Error("failed to start", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
