package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReportModel renders the saved records as paged report tables
type ReportModel struct {
	app     *app.App
	pages   []service.ReportPage
	page    int
	combine bool
	loading bool
	err     error
}

// NewReportModel creates a new report screen model
func NewReportModel(a *app.App) tea.Model {
	return &ReportModel{
		app:     a,
		combine: a.Config.Report.CombineCustomers,
		loading: true,
	}
}

func (m *ReportModel) Init() tea.Cmd {
	return m.buildReport()
}

func (m *ReportModel) buildReport() tea.Cmd {
	combine := m.combine
	return func() tea.Msg {
		ctx := context.Background()
		keys, err := m.app.RecordService.ListByDate(ctx, "")
		if err != nil {
			return reportDataMsg{err: err}
		}
		pages, err := m.app.ReportService.BuildMultiDateReport(ctx, keys, combine)
		return reportDataMsg{pages: pages, err: err}
	}
}

func (m *ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshDataMsg:
		m.loading = true
		return m, m.buildReport()

	case reportDataMsg:
		m.loading = false
		m.err = msg.err
		m.pages = msg.pages
		if m.page >= len(m.pages) {
			m.page = 0
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "left":
			if m.page > 0 {
				m.page--
			}
		case "right":
			if m.page < len(m.pages)-1 {
				m.page++
			}
		case "c":
			m.combine = !m.combine
			m.loading = true
			return m, m.buildReport()
		}
	}

	return m, nil
}

func (m *ReportModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Report"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Building report...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(errorColor).Render(m.err.Error()))
		return b.String()
	}
	if len(m.pages) == 0 {
		b.WriteString(subtitleStyle.Render("Nothing to report yet."))
		return b.String()
	}

	page := m.pages[m.page]
	mode := "combined"
	if !m.combine {
		mode = "one customer per page"
	}
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Page %d/%d  %s  (%s)",
		m.page+1, len(m.pages), page.Date, mode)))
	b.WriteString("\n\n")

	for _, section := range page.Sections {
		b.WriteString(renderSection(section))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("←/→: page  c: toggle combine"))
	return b.String()
}

func renderSection(section service.ReportSection) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(section.Name))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%-14s %10s %10s %10s %10s %10s %12s",
		"Company", "Sold", "Rate", "Total", "PWT", "VC", "Current Bill")))
	b.WriteString("\n")

	for _, line := range section.Lines {
		b.WriteString(renderReportLine(line))
	}
	b.WriteString(derivedStyle.Render(strings.TrimRight(renderReportLine(section.Totals), "\n")))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Running bill: %s   Balance: %s   Outstanding: %s\n",
		section.Summary.RunningBill,
		section.Summary.Balance,
		derivedStyle.Render(section.Summary.Outstanding)))

	return b.String()
}

func renderReportLine(line service.ReportLine) string {
	return fmt.Sprintf("%-14s %10s %10s %10s %10s %10s %12s\n",
		truncateStr(line.Company, 14),
		line.Sold, line.Rate, line.Total, line.PWT, line.VC, line.CurrentBill)
}
