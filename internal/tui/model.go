package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenLedger Screen = iota
	ScreenRecords
	ScreenReport
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenLedger:
		return "Ledger"
	case ScreenRecords:
		return "Records"
	case ScreenReport:
		return "Report"
	default:
		return "Unknown"
	}
}

// Model is the root Bubble Tea model
type Model struct {
	app           *app.App
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	ledger  tea.Model
	records tea.Model
	report  tea.Model

	// Startup state
	checkedLastSaved bool

	// Error state
	err error
}

// New creates a new root model
func New(a *app.App) Model {
	ledger := NewLedgerModel(a)
	return Model{
		app:           a,
		currentScreen: ScreenLedger,
		ledger:        ledger,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.checkLastSaved(),
	}
	if m.ledger != nil {
		cmds = append(cmds, m.ledger.Init())
	}
	return tea.Batch(cmds...)
}

// checkLastSaved looks up the last-saved record so the ledger can reopen it
func (m *Model) checkLastSaved() tea.Cmd {
	return func() tea.Msg {
		key, err := m.app.RecordService.LastSaved(context.Background())
		if err != nil {
			return lastSavedCheckMsg{}
		}
		return lastSavedCheckMsg{key: key}
	}
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	switch screen {
	case ScreenLedger:
		if m.ledger == nil {
			m.ledger = NewLedgerModel(m.app)
			return m.ledger.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	case ScreenRecords:
		if m.records == nil {
			m.records = NewRecordsModel(m.app)
			return m.records.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	case ScreenReport:
		if m.report == nil {
			m.report = NewReportModel(m.app)
			return m.report.Init()
		}
		return func() tea.Msg { return RefreshDataMsg{} }
	}
	return nil
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys (L, R, P, Q) are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	var screen tea.Model
	switch m.currentScreen {
	case ScreenLedger:
		screen = m.ledger
	case ScreenRecords:
		screen = m.records
	case ScreenReport:
		screen = m.report
	}
	if ic, ok := screen.(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Ledger):
				m.currentScreen = ScreenLedger
				cmd := m.initScreen(ScreenLedger)
				return m, cmd

			case key.Matches(msg, DefaultKeyMap.Records):
				m.currentScreen = ScreenRecords
				cmd := m.initScreen(ScreenRecords)
				return m, cmd

			case key.Matches(msg, DefaultKeyMap.Report):
				m.currentScreen = ScreenReport
				cmd := m.initScreen(ScreenReport)
				return m, cmd
			}
		}

	case lastSavedCheckMsg:
		if !m.checkedLastSaved && msg.key != nil {
			m.checkedLastSaved = true
			openCmd := func() tea.Msg { return OpenRecordMsg{Key: *msg.key} }
			return m, openCmd
		}
		m.checkedLastSaved = true
		return m, nil

	case SwitchScreenMsg:
		m.currentScreen = msg.Screen
		cmd := m.initScreen(msg.Screen)
		return m, cmd

	case OpenRecordMsg, OpenBlankRecordMsg:
		// Record editing always happens on the ledger screen
		m.currentScreen = ScreenLedger
		if m.ledger == nil {
			m.ledger = NewLedgerModel(m.app)
		}
		var cmd tea.Cmd
		m.ledger, cmd = m.ledger.Update(msg)
		return m, cmd

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	switch m.currentScreen {
	case ScreenLedger:
		if m.ledger != nil {
			m.ledger, cmd = m.ledger.Update(msg)
		}
	case ScreenRecords:
		if m.records != nil {
			m.records, cmd = m.records.Update(msg)
		}
	case ScreenReport:
		if m.report != nil {
			m.report, cmd = m.report.Update(msg)
		}
	}

	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := headerStyle.Render(fmt.Sprintf("billbook - %s", m.currentScreen.String()))

	footer := footerStyle.Render("[L]edger  [R]ecords  [P] Report  [Q]uit")

	var content string
	switch m.currentScreen {
	case ScreenLedger:
		if m.ledger != nil {
			content = m.ledger.View()
		} else {
			content = "Loading..."
		}
	case ScreenRecords:
		if m.records != nil {
			content = m.records.View()
		} else {
			content = "Loading..."
		}
	case ScreenReport:
		if m.report != nil {
			content = m.report.View()
		} else {
			content = "Loading..."
		}
	}

	errorDisplay := ""
	if m.err != nil {
		errorDisplay = lipgloss.NewStyle().
			Foreground(errorColor).
			Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
