package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// inputs per company line: company, sold, rate, pwt, vc
const lineFieldCount = 5

// fixed field indices before the company lines
const (
	ledgerFieldName = iota
	ledgerFieldDate
	ledgerFixedCount
)

// LedgerModel is the data-entry grid for a single customer record.
// Derived cells (total, current bill, running bill, outstanding) are
// recomputed on every keystroke and are not editable.
type LedgerModel struct {
	app    *app.App
	record *domain.CustomerRecord

	inputs []textinput.Model
	focus  int

	customers []string // registry names, for the autocomplete hint
	dirty     bool
	statusMsg string
	err       error
}

// NewLedgerModel creates a new ledger screen model
func NewLedgerModel(a *app.App) tea.Model {
	m := &LedgerModel{app: a}
	m.setRecord(m.blankRecord())
	return m
}

// IsCapturingInput returns true: the ledger is always an active form
func (m *LedgerModel) IsCapturingInput() bool {
	return true
}

func (m *LedgerModel) Init() tea.Cmd {
	return m.loadCustomers()
}

func (m *LedgerModel) blankRecord() *domain.CustomerRecord {
	today := time.Now().Format(domain.DateLayout)
	return domain.NewCustomerRecord("", today, m.app.Config.Ledger.Companies)
}

func (m *LedgerModel) loadCustomers() tea.Cmd {
	return func() tea.Msg {
		names, err := m.app.RecordService.Customers(context.Background())
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return customersDataMsg{names: names}
	}
}

type customersDataMsg struct {
	names []string
}

func (m *LedgerModel) loadRecord(key domain.RecordKey) tea.Cmd {
	return func() tea.Msg {
		record, err := m.app.RecordService.Get(context.Background(), key)
		return recordLoadedMsg{record: record, err: err}
	}
}

func (m *LedgerModel) saveRecord() tea.Cmd {
	record := m.record
	return func() tea.Msg {
		err := m.app.RecordService.CreateOrReplace(context.Background(), record)
		return recordSavedMsg{key: record.Key(), err: err}
	}
}

// setRecord rebuilds the input grid from the given record
func (m *LedgerModel) setRecord(record *domain.CustomerRecord) {
	m.record = record
	count := ledgerFixedCount + lineFieldCount*len(record.CompanyLines) + 1 // +1 balance
	m.inputs = make([]textinput.Model, count)

	name := textinput.New()
	name.Placeholder = "Customer name"
	name.CharLimit = 100
	name.Width = 30
	name.SetValue(record.Name)
	m.inputs[ledgerFieldName] = name

	date := textinput.New()
	date.Placeholder = domain.DateLayout
	date.CharLimit = 10
	date.Width = 12
	date.SetValue(record.Date)
	m.inputs[ledgerFieldDate] = date

	for i, line := range record.CompanyLines {
		base := ledgerFixedCount + lineFieldCount*i
		m.inputs[base] = newCellInput(line.Company, 10)
		m.inputs[base].Placeholder = "Company"
		m.inputs[base+1] = newAmountInput(line.Sold)
		m.inputs[base+2] = newAmountInput(line.Rate)
		m.inputs[base+3] = newAmountInput(line.PWT)
		m.inputs[base+4] = newAmountInput(line.VC)
	}

	m.inputs[m.balanceIndex()] = newAmountInput(record.Summary.Balance)

	m.focus = 0
	m.inputs[0].Focus()
	m.dirty = false
	m.statusMsg = ""
	m.err = nil
}

func newCellInput(value string, width int) textinput.Model {
	in := textinput.New()
	in.CharLimit = 40
	in.Width = width
	in.SetValue(value)
	return in
}

func newAmountInput(a domain.Amount) textinput.Model {
	in := newCellInput("", 9)
	in.Placeholder = "0"
	if !a.IsZero() {
		in.SetValue(a.String())
	}
	return in
}

func (m *LedgerModel) balanceIndex() int {
	return ledgerFixedCount + lineFieldCount*len(m.record.CompanyLines)
}

// applyEdit pushes the focused input's value into the record and recomputes
func (m *LedgerModel) applyEdit() {
	value := m.inputs[m.focus].Value()
	switch {
	case m.focus == ledgerFieldName:
		m.record.Name = strings.TrimSpace(value)
	case m.focus == ledgerFieldDate:
		m.record.Date = strings.TrimSpace(value)
	case m.focus == m.balanceIndex():
		m.record.Summary.Balance = domain.ParseAmount(value)
		m.app.RecordService.RecomputeOnFieldChange(m.record, domain.FieldBalance, 0)
	default:
		line := (m.focus - ledgerFixedCount) / lineFieldCount
		cell := (m.focus - ledgerFixedCount) % lineFieldCount
		switch cell {
		case 0:
			m.record.CompanyLines[line].Company = strings.TrimSpace(value)
			return
		case 1:
			m.record.CompanyLines[line].Sold = domain.ParseAmount(value)
			m.app.RecordService.RecomputeOnFieldChange(m.record, domain.FieldSold, line)
		case 2:
			m.record.CompanyLines[line].Rate = domain.ParseAmount(value)
			m.app.RecordService.RecomputeOnFieldChange(m.record, domain.FieldRate, line)
		case 3:
			m.record.CompanyLines[line].PWT = domain.ParseAmount(value)
			m.app.RecordService.RecomputeOnFieldChange(m.record, domain.FieldPWT, line)
		case 4:
			m.record.CompanyLines[line].VC = domain.ParseAmount(value)
			m.app.RecordService.RecomputeOnFieldChange(m.record, domain.FieldVC, line)
		}
	}
}

func (m *LedgerModel) setFocus(i int) {
	if i < 0 {
		i = len(m.inputs) - 1
	}
	if i >= len(m.inputs) {
		i = 0
	}
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// addLine appends an empty company line and rebuilds the grid
func (m *LedgerModel) addLine() {
	m.record.CompanyLines = append(m.record.CompanyLines, domain.CompanyLine{})
	m.record.Recalculate()
	record := m.record
	m.setRecord(record)
	m.setFocus(ledgerFixedCount + lineFieldCount*(len(record.CompanyLines)-1))
	m.dirty = true
}

func (m *LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OpenRecordMsg:
		return m, m.loadRecord(msg.Key)

	case OpenBlankRecordMsg:
		m.setRecord(m.blankRecord())
		return m, nil

	case RefreshDataMsg:
		return m, m.loadCustomers()

	case customersDataMsg:
		m.customers = msg.names
		return m, nil

	case recordLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setRecord(msg.record)
		m.statusMsg = fmt.Sprintf("Loaded %s", msg.record.Key())
		return m, nil

	case recordSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.dirty = false
		m.err = nil
		m.statusMsg = fmt.Sprintf("Saved %s", msg.key)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return SwitchScreenMsg{Screen: ScreenRecords} }
		case "ctrl+s":
			m.applyEdit()
			return m, m.saveRecord()
		case "ctrl+a":
			m.addLine()
			return m, nil
		case "tab", "enter", "down":
			m.setFocus(m.focus + 1)
			return m, nil
		case "shift+tab", "up":
			m.setFocus(m.focus - 1)
			return m, nil
		}

		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		m.applyEdit()
		m.dirty = true
		m.statusMsg = ""
		return m, cmd
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *LedgerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Daily Ledger"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("Customer: %s   Date: %s\n",
		m.inputs[ledgerFieldName].View(),
		m.inputs[ledgerFieldDate].View()))

	if hint := m.nameHint(); hint != "" {
		b.WriteString(subtitleStyle.Render(hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%-14s %-11s %-11s %10s %-11s %-11s %12s",
		"Company", "Sold", "Rate", "Total", "PWT", "VC", "Current Bill")))
	b.WriteString("\n")

	for i, line := range m.record.CompanyLines {
		base := ledgerFixedCount + lineFieldCount*i
		b.WriteString(fmt.Sprintf("%s %s %s %s %s %s %s\n",
			m.inputs[base].View(),
			m.inputs[base+1].View(),
			m.inputs[base+2].View(),
			derivedStyle.Render(fmt.Sprintf("%10s", line.Total)),
			m.inputs[base+3].View(),
			m.inputs[base+4].View(),
			derivedStyle.Render(fmt.Sprintf("%12s", line.CurrentBill))))
	}

	t := m.record.Totals
	b.WriteString(derivedStyle.Render(fmt.Sprintf("%-14s %11s %11s %10s %11s %11s %12s",
		"Totals", t.Sold, "", t.Total, t.PWT, t.VC, t.CurrentBill)))
	b.WriteString("\n\n")

	s := m.record.Summary
	b.WriteString(fmt.Sprintf("Running bill: %s   Balance: %s   Outstanding: %s\n",
		derivedStyle.Render(s.RunningBill.String()),
		m.inputs[m.balanceIndex()].View(),
		derivedStyle.Render(s.Outstanding.String())))

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(m.err.Error()))
	} else if m.statusMsg != "" {
		b.WriteString(savedStyle.Render(m.statusMsg))
	} else if m.dirty {
		b.WriteString(pendingStyle.Render("Unsaved changes"))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("tab/shift+tab: move  ctrl+a: add company  ctrl+s: save  esc: records"))

	return b.String()
}

// nameHint shows registry names matching the partial customer name
func (m *LedgerModel) nameHint() string {
	prefix := strings.ToLower(strings.TrimSpace(m.inputs[ledgerFieldName].Value()))
	if prefix == "" || m.focus != ledgerFieldName {
		return ""
	}
	var matches []string
	for _, name := range m.customers {
		if strings.HasPrefix(strings.ToLower(name), prefix) && !strings.EqualFold(name, prefix) {
			matches = append(matches, name)
		}
		if len(matches) == 3 {
			break
		}
	}
	if len(matches) == 0 {
		return ""
	}
	return "  " + strings.Join(matches, "  ")
}
