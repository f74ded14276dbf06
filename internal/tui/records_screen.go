package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RecordsModel displays the saved records, newest date first
type RecordsModel struct {
	app       *app.App
	keys      []domain.RecordKey
	lastSaved *domain.RecordKey
	cursor    int
	loading   bool
	err       error
	statusMsg string

	// Pending delete confirmation
	confirmDelete *domain.RecordKey
}

// NewRecordsModel creates a new records screen model
func NewRecordsModel(a *app.App) tea.Model {
	return &RecordsModel{app: a, loading: true}
}

func (m *RecordsModel) Init() tea.Cmd {
	return m.loadRecords()
}

func (m *RecordsModel) loadRecords() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		keys, err := m.app.RecordService.ListByDate(ctx, "")
		if err != nil {
			return recordsDataMsg{err: err}
		}
		lastSaved, err := m.app.RecordService.LastSaved(ctx)
		if err != nil {
			return recordsDataMsg{keys: keys}
		}
		return recordsDataMsg{keys: keys, lastSaved: lastSaved}
	}
}

func (m *RecordsModel) deleteRecord(k domain.RecordKey) tea.Cmd {
	return func() tea.Msg {
		err := m.app.RecordService.Delete(context.Background(), []domain.RecordKey{k})
		return recordsDeletedMsg{err: err}
	}
}

func (m *RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.loadRecords()

	case recordsDataMsg:
		m.loading = false
		m.err = msg.err
		m.keys = msg.keys
		m.lastSaved = msg.lastSaved
		if m.cursor >= len(m.keys) {
			m.cursor = len(m.keys) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case recordsDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = "Record deleted"
		return m, m.loadRecords()

	case tea.KeyMsg:
		// Resolve a pending delete first
		if m.confirmDelete != nil {
			k := *m.confirmDelete
			m.confirmDelete = nil
			if msg.String() == "y" || msg.String() == "Y" {
				return m, m.deleteRecord(k)
			}
			m.statusMsg = "Delete cancelled"
			return m, nil
		}

		switch {
		case key.Matches(msg, DefaultKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, DefaultKeyMap.Down):
			if m.cursor < len(m.keys)-1 {
				m.cursor++
			}
		case key.Matches(msg, DefaultKeyMap.Select):
			if len(m.keys) > 0 {
				k := m.keys[m.cursor]
				return m, func() tea.Msg { return OpenRecordMsg{Key: k} }
			}
		case key.Matches(msg, DefaultKeyMap.New):
			return m, func() tea.Msg { return OpenBlankRecordMsg{} }
		case key.Matches(msg, DefaultKeyMap.Delete):
			if len(m.keys) > 0 {
				k := m.keys[m.cursor]
				m.confirmDelete = &k
				m.statusMsg = ""
			}
		}
	}

	return m, nil
}

func (m *RecordsModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Saved Records"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(m.err.Error()))
		return b.String()
	}
	if len(m.keys) == 0 {
		b.WriteString(subtitleStyle.Render("No records yet. Press [n] to start one."))
		return b.String()
	}

	lastDate := ""
	for i, k := range m.keys {
		if k.Date != lastDate {
			if lastDate != "" {
				b.WriteString("\n")
			}
			b.WriteString(subtitleStyle.Render(k.Date))
			b.WriteString("\n")
			lastDate = k.Date
		}

		row := fmt.Sprintf("  %s", truncateStr(k.Name, 40))
		if m.lastSaved != nil && *m.lastSaved == k {
			row += savedStyle.Render("  (last saved)")
		}
		if i == m.cursor {
			row = selectedStyle.Render("> " + truncateStr(k.Name, 40))
			if m.lastSaved != nil && *m.lastSaved == k {
				row += savedStyle.Render("  (last saved)")
			}
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.confirmDelete != nil {
		b.WriteString(pendingStyle.Render(fmt.Sprintf("Delete %s? [y/N]", *m.confirmDelete)))
	} else if m.statusMsg != "" {
		b.WriteString(savedStyle.Render(m.statusMsg))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("↑/↓: move  enter: open  n: new  d: delete"))

	return b.String()
}
