package service

import (
	"context"
	"sort"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/logger"
	"github.com/andy/billbook/internal/repository"
	"github.com/rs/zerolog"
)

// DefaultPageHeight is the content height of a report page, in rows
const DefaultPageHeight = 40

// sectionChromeRows is the fixed overhead of a section: title row, column
// header row, and the gap before the next section
const sectionChromeRows = 3

// ReportLine is one formatted row of a report section
type ReportLine struct {
	Company     string
	Sold        string
	Rate        string
	Total       string
	PWT         string
	VC          string
	CurrentBill string
}

// ReportSummary is the formatted running bill block of a section
type ReportSummary struct {
	RunningBill string
	Balance     string
	Outstanding string
}

// ReportSection is one customer's table: company lines, a totals row, and
// the summary row. All values are canonical fixed two-decimal strings.
type ReportSection struct {
	Name    string
	Date    string
	Lines   []ReportLine
	Totals  ReportLine
	Summary ReportSummary
}

// Height estimates the rows the section occupies on a page
func (s ReportSection) Height() int {
	return sectionChromeRows + len(s.Lines) + 2 // + totals row + summary row
}

// ReportTable is a flat report over a set of records. Keys whose record
// was missing from the store are collected in Missing rather than failing
// the build.
type ReportTable struct {
	Sections []ReportSection
	Missing  []domain.RecordKey
}

// ReportPage is one page of a multi-date report; a page never mixes dates
type ReportPage struct {
	Date     string
	Sections []ReportSection
}

// ReportService reads persisted records back into normalized tabular form
// for display and export collaborators
type ReportService interface {
	// BuildReport loads each key into a section, skipping (with a
	// diagnostic) keys whose record is missing
	BuildReport(ctx context.Context, keys []domain.RecordKey) (*ReportTable, error)

	// BuildMultiDateReport groups keys by date, newest first. Within a
	// date, combineWithinDate packs successive customer sections onto the
	// same page while they fit the page content height; otherwise every
	// customer starts a new page.
	BuildMultiDateReport(ctx context.Context, keys []domain.RecordKey, combineWithinDate bool) ([]ReportPage, error)
}

type reportService struct {
	recordRepo repository.RecordRepository
	pageHeight int
	log        zerolog.Logger
}

// NewReportService creates a new report service. pageHeight <= 0 selects
// the default page content height.
func NewReportService(recordRepo repository.RecordRepository, pageHeight int) ReportService {
	if pageHeight <= 0 {
		pageHeight = DefaultPageHeight
	}
	return &reportService{
		recordRepo: recordRepo,
		pageHeight: pageHeight,
		log:        logger.WithComponent("report"),
	}
}

func (s *reportService) BuildReport(ctx context.Context, keys []domain.RecordKey) (*ReportTable, error) {
	table := &ReportTable{
		Sections: make([]ReportSection, 0, len(keys)),
		Missing:  make([]domain.RecordKey, 0),
	}

	for _, key := range keys {
		record, err := s.recordRepo.Get(ctx, key.Name, key.Date)
		if err != nil {
			return nil, err
		}
		if record == nil {
			s.log.Warn().Str("key", key.String()).Msg("record missing from store, skipped")
			table.Missing = append(table.Missing, key)
			continue
		}
		table.Sections = append(table.Sections, sectionFromRecord(record))
	}

	return table, nil
}

func (s *reportService) BuildMultiDateReport(ctx context.Context, keys []domain.RecordKey, combineWithinDate bool) ([]ReportPage, error) {
	table, err := s.BuildReport(ctx, keys)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]ReportSection)
	dates := make([]string, 0)
	for _, sec := range table.Sections {
		if _, ok := byDate[sec.Date]; !ok {
			dates = append(dates, sec.Date)
		}
		byDate[sec.Date] = append(byDate[sec.Date], sec)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	pages := make([]ReportPage, 0)
	for _, date := range dates {
		sections := byDate[date]
		sort.SliceStable(sections, func(i, j int) bool {
			return sections[i].Name < sections[j].Name
		})

		page := ReportPage{Date: date}
		used := 0
		for _, sec := range sections {
			h := sec.Height()
			breakPage := used > 0 && (!combineWithinDate || used+h > s.pageHeight)
			if breakPage {
				pages = append(pages, page)
				page = ReportPage{Date: date}
				used = 0
			}
			page.Sections = append(page.Sections, sec)
			used += h
		}
		if len(page.Sections) > 0 {
			pages = append(pages, page)
		}
	}

	return pages, nil
}

// sectionFromRecord formats a record into its report section. The stored
// snapshot is already computed; the section carries its figures verbatim.
func sectionFromRecord(record *domain.CustomerRecord) ReportSection {
	section := ReportSection{
		Name:  record.Name,
		Date:  record.Date,
		Lines: make([]ReportLine, 0, len(record.CompanyLines)),
	}

	for _, l := range record.CompanyLines {
		section.Lines = append(section.Lines, ReportLine{
			Company:     l.Company,
			Sold:        l.Sold.String(),
			Rate:        l.Rate.String(),
			Total:       l.Total.String(),
			PWT:         l.PWT.String(),
			VC:          l.VC.String(),
			CurrentBill: l.CurrentBill.String(),
		})
	}

	section.Totals = ReportLine{
		Company:     "Total",
		Sold:        record.Totals.Sold.String(),
		Total:       record.Totals.Total.String(),
		PWT:         record.Totals.PWT.String(),
		VC:          record.Totals.VC.String(),
		CurrentBill: record.Totals.CurrentBill.String(),
	}

	section.Summary = ReportSummary{
		RunningBill: record.Summary.RunningBill.String(),
		Balance:     record.Summary.Balance.String(),
		Outstanding: record.Summary.Outstanding.String(),
	}

	return section
}
