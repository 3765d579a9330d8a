package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/fiado/internal/ledger"
)

// Preset is a named reporting period.
type Preset int

const (
	PresetToday Preset = iota
	PresetThisWeek
	PresetThisMonth
	PresetLastMonth
	PresetAll
	PresetCustom
)

func (p Preset) String() string {
	switch p {
	case PresetToday:
		return "Today"
	case PresetThisWeek:
		return "This Week"
	case PresetThisMonth:
		return "This Month"
	case PresetLastMonth:
		return "Last Month"
	case PresetAll:
		return "All Time"
	case PresetCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Period resolves p against now. Weeks start on Monday.
func (p Preset) Period(now time.Time) ledger.Period {
	today := ledger.Day(now)

	switch p {
	case PresetToday:
		return ledger.Period{Start: today, End: today}
	case PresetThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return ledger.Period{Start: today.AddDate(0, 0, -offset), End: today}
	case PresetThisMonth:
		return ledger.Period{Start: today.AddDate(0, 0, 1-today.Day()), End: today}
	case PresetLastMonth:
		first := today.AddDate(0, 0, 1-today.Day())
		return ledger.Period{Start: first.AddDate(0, -1, 0), End: first.AddDate(0, 0, -1)}
	}

	return ledger.Period{}
}

// PeriodSelectedMsg carries the chosen range. An open period covers everything.
type PeriodSelectedMsg struct {
	Period ledger.Period
	Label  string
}

type pickerState int

const (
	pickerStateSelect pickerState = iota
	pickerStateCustom
)

// PeriodPicker lets the user choose a preset or type a custom date range.
type PeriodPicker struct {
	state    pickerState
	selected Preset

	fromInput  textinput.Model
	toInput    textinput.Model
	focusIndex int

	err error
}

func NewPeriodPicker(initial Preset) PeriodPicker {
	from := textinput.New()
	from.Placeholder = "YYYY-MM-DD"
	from.CharLimit = 10
	from.Width = 12
	from.Prompt = "From: "

	to := textinput.New()
	to.Placeholder = "YYYY-MM-DD"
	to.CharLimit = 10
	to.Width = 12
	to.Prompt = "To:   "

	return PeriodPicker{selected: initial, fromInput: from, toInput: to}
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == pickerStateSelect {
			return m.updateSelect(keyMsg)
		}

		if next, cmd, handled := m.updateCustom(keyMsg); handled {
			return next, cmd
		}
	}

	if m.state != pickerStateCustom {
		return m, nil
	}

	var from, to tea.Cmd
	m.fromInput, from = m.fromInput.Update(msg)
	m.toInput, to = m.toInput.Update(msg)

	return m, tea.Batch(from, to)
}

func (m PeriodPicker) updateSelect(msg tea.KeyMsg) (PeriodPicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > PresetToday {
			m.selected--
		}
	case "down", "j":
		if m.selected < PresetCustom {
			m.selected++
		}
	case "enter":
		if m.selected == PresetCustom {
			m.state = pickerStateCustom
			m.focusIndex = 0
			m.fromInput.Focus()

			return m, textinput.Blink
		}

		sel := PeriodSelectedMsg{Period: m.selected.Period(time.Now()), Label: m.selected.String()}

		return m, func() tea.Msg { return sel }
	}

	return m, nil
}

func (m PeriodPicker) updateCustom(msg tea.KeyMsg) (PeriodPicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.fromInput.Blur()
		m.toInput.Blur()

		if m.focusIndex == 0 {
			m.fromInput.Focus()
		} else {
			m.toInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		sel, err := customPeriod(m.fromInput.Value(), m.toInput.Value())
		if err != nil {
			m.err = err
			return m, nil, true
		}

		m.err = nil

		return m, func() tea.Msg { return sel }, true

	case "esc":
		m.state = pickerStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func customPeriod(from, to string) (PeriodSelectedMsg, error) {
	var p ledger.Period

	if from = strings.TrimSpace(from); from != "" {
		t, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return PeriodSelectedMsg{}, errors.New("invalid start date (YYYY-MM-DD)")
		}

		p.Start = t
	}

	if to = strings.TrimSpace(to); to != "" {
		t, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return PeriodSelectedMsg{}, errors.New("invalid end date (YYYY-MM-DD)")
		}

		p.End = t
	}

	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start) {
		return PeriodSelectedMsg{}, errors.New("end date is before start date")
	}

	return PeriodSelectedMsg{Period: p, Label: fmt.Sprintf("%s to %s", orEllipsis(from), orEllipsis(to))}, nil
}

func orEllipsis(s string) string {
	if s == "" {
		return "…"
	}

	return s
}

func (m PeriodPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == pickerStateCustom {
		return fmt.Sprintf(
			"Enter a date range (either side may be empty):\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.fromInput.View(),
			m.toInput.View(),
			errStr,
		)
	}

	var sb strings.Builder

	sb.WriteString("Select Period:\n\n")

	for p := PresetToday; p <= PresetCustom; p++ {
		cursor := " "
		if m.selected == p {
			cursor = ">"
		}

		fmt.Fprintf(&sb, "%s %s\n", cursor, p)
	}

	sb.WriteString("\n(Enter to select, Esc to back)")

	return sb.String() + errStr
}

// IsSelecting reports whether the picker is on the preset list rather than custom input.
func (m PeriodPicker) IsSelecting() bool {
	return m.state == pickerStateSelect
}

func (m *PeriodPicker) Reset() {
	m.state = pickerStateSelect
	m.err = nil
	m.fromInput.SetValue("")
	m.toInput.SetValue("")
}
