package export

import (
	"fmt"

	"github.com/andy/billbook/internal/service"
	"github.com/xuri/excelize/v2"
)

var columns = []string{"Company", "Sold", "Rate", "Total", "PWT", "VC", "Current Bill"}

// WriteWorkbook renders report pages into an XLSX workbook at path, one
// sheet per page. Sheets for the same date get a numeric suffix.
func WriteWorkbook(pages []service.ReportPage, path string) error {
	if len(pages) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	seen := make(map[string]int)
	for i, page := range pages {
		seen[page.Date]++
		sheet := page.Date
		if seen[page.Date] > 1 {
			sheet = fmt.Sprintf("%s (%d)", page.Date, seen[page.Date])
		}

		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
			}
		}

		if err := writePage(f, sheet, page, headerStyle); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writePage(f *excelize.File, sheet string, page service.ReportPage, headerStyle int) error {
	row := 1
	for _, section := range page.Sections {
		title := fmt.Sprintf("%s - %s", section.Name, section.Date)
		if err := setRow(f, sheet, row, []interface{}{title}); err != nil {
			return err
		}
		if err := styleRow(f, sheet, row, 1, headerStyle); err != nil {
			return err
		}
		row++

		header := make([]interface{}, len(columns))
		for i, c := range columns {
			header[i] = c
		}
		if err := setRow(f, sheet, row, header); err != nil {
			return err
		}
		if err := styleRow(f, sheet, row, len(columns), headerStyle); err != nil {
			return err
		}
		row++

		for _, l := range section.Lines {
			if err := setRow(f, sheet, row, lineCells(l)); err != nil {
				return err
			}
			row++
		}

		if err := setRow(f, sheet, row, lineCells(section.Totals)); err != nil {
			return err
		}
		if err := styleRow(f, sheet, row, len(columns), headerStyle); err != nil {
			return err
		}
		row++

		summary := []interface{}{
			"Summary",
			"Running Bill", section.Summary.RunningBill,
			"Balance", section.Summary.Balance,
			"Outstanding", section.Summary.Outstanding,
		}
		if err := setRow(f, sheet, row, summary); err != nil {
			return err
		}
		row += 2 // gap before the next customer
	}

	return nil
}

func lineCells(l service.ReportLine) []interface{} {
	return []interface{}{l.Company, l.Sold, l.Rate, l.Total, l.PWT, l.VC, l.CurrentBill}
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, width, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}
