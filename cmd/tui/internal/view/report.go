package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/fiado/internal/backup"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

type reportState int

const (
	reportStatePeriod reportState = iota
	reportStateSummary
	reportStateWriting
)

// ReportModel shows the business summary for a period and writes the workbook
// and backups into the export directory.
type ReportModel struct {
	CommonModel
	svc    *ledger.Service
	export *export.Service
	dir    string

	state   reportState
	picker  PeriodPicker
	label   string
	summary *ledger.Summary
	spinner spinner.Model
	status  string
	err     error
}

func NewReportModel(svc *ledger.Service, exp *export.Service, currency, dir string) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ReportModel{
		CommonModel: CommonModel{Currency: currency},
		svc:         svc,
		export:      exp,
		dir:         dir,
		picker:      NewPeriodPicker(PresetThisMonth),
		spinner:     s,
	}
}

func (m ReportModel) Title() string { return "Reports" }

func (m ReportModel) ShortHelp() string {
	switch m.state {
	case reportStateSummary:
		return "Esc: back | p: period | w: write workbook | b: write backup"
	case reportStateWriting:
		return "Writing..."
	}

	return "Esc: back | Enter: select"
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.label = msg.Label
		m.err = nil

		return m, m.summaryCmd(msg.Period)

	case summaryMsg:
		m.state = reportStateSummary
		m.summary, m.err = msg.summary, msg.err

		return m, nil

	case fileWrittenMsg:
		m.state = reportStateSummary
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		} else {
			m.status = okStyle.Render("Wrote " + msg.path)
		}

		return m, nil
	}

	switch m.state {
	case reportStatePeriod:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd

	case reportStateSummary:
		keyMsg, ok := msg.(tea.KeyMsg)
		if !ok {
			return m, nil
		}

		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "p":
			m.state = reportStatePeriod
			m.status = ""
			m.picker.Reset()
		case "w":
			m.state = reportStateWriting
			return m, tea.Batch(m.spinner.Tick, m.workbookCmd())
		case "b":
			m.state = reportStateWriting
			return m, tea.Batch(m.spinner.Tick, m.backupCmd())
		}

	case reportStateWriting:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m ReportModel) View() string {
	switch m.state {
	case reportStatePeriod:
		return paddedStyle.Render(m.picker.View())
	case reportStateWriting:
		return paddedStyle.Render(fmt.Sprintf("%s Writing to %s...", m.spinner.View(), m.dir))
	}

	if m.err != nil {
		return paddedStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	s := m.summary
	header := lipgloss.NewStyle().Bold(true).Render("Summary: " + m.label)

	body := fmt.Sprintf(
		"Sales:              %s\n"+
			"Charged on credit:  %s\n"+
			"Payments received:  %s\n"+
			"Expenses:           %s\n"+
			"Cash flow:          %s\n\n"+
			"Clients owe:        %s\n"+
			"We owe creditors:   %s",
		m.Money(s.Sales),
		m.Money(s.Charges),
		m.Money(s.PaymentsReceived),
		m.Money(s.Expenses),
		m.Money(s.CashFlow()),
		balanceStyle(s.TotalClientDebt, m.Money(s.TotalClientDebt)),
		balanceStyle(s.TotalCreditorDebt, m.Money(s.TotalCreditorDebt)),
	)

	parts := []string{header, "", body, ""}
	if m.status != "" {
		parts = append(parts, m.status, "")
	}

	parts = append(parts, faintStyle.Render(m.ShortHelp()))

	return paddedStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Messages

type summaryMsg struct {
	summary *ledger.Summary
	err     error
}

func (m ReportModel) summaryCmd(p ledger.Period) tea.Cmd {
	svc := m.svc

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		sum, err := svc.Summary(ctx, p)

		return summaryMsg{summary: sum, err: err}
	}
}

type fileWrittenMsg struct {
	path string
	err  error
}

const writeTimeout = 2 * time.Minute

func (m ReportModel) workbookCmd() tea.Cmd {
	exp, dir := m.export, m.dir

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fileWrittenMsg{err: err}
		}

		path := filepath.Join(dir, "fiado-"+timeNow().Format("20060102-150405")+".xlsx")

		f, err := os.Create(path)
		if err != nil {
			return fileWrittenMsg{err: err}
		}

		if err := exp.Workbook(ctx, f); err != nil {
			f.Close()
			return fileWrittenMsg{err: err}
		}

		return fileWrittenMsg{path: path, err: f.Close()}
	}
}

func (m ReportModel) backupCmd() tea.Cmd {
	svc, dir := m.svc, m.dir

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		snap, err := svc.Snapshot(ctx)
		if err != nil {
			return fileWrittenMsg{err: err}
		}

		path, err := backup.WriteFile(dir, snap, timeNow())

		return fileWrittenMsg{path: path, err: err}
	}
}
