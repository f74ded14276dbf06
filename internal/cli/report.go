package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/andy/billbook/internal/export"
	"github.com/andy/billbook/internal/service"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build a report over saved records",
	Long: `Build a report over saved records, grouped by date with the newest
date first. Prints to stdout by default; --xlsx exports a workbook with
one sheet per page instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		date, _ := cmd.Flags().GetString("date")
		separate, _ := cmd.Flags().GetBool("separate")
		xlsxPath, _ := cmd.Flags().GetString("xlsx")

		keys, err := appInstance.RecordService.ListByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}
		if len(keys) == 0 {
			fmt.Println("No records to report")
			return nil
		}

		combine := appInstance.Config.Report.CombineCustomers && !separate
		pages, err := appInstance.ReportService.BuildMultiDateReport(ctx, keys, combine)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}

		if xlsxPath != "" {
			if filepath.Dir(xlsxPath) == "." && !filepath.IsAbs(xlsxPath) {
				xlsxPath = filepath.Join(appInstance.Config.Report.OutputDir, xlsxPath)
			}
			if err := export.WriteWorkbook(pages, xlsxPath); err != nil {
				return fmt.Errorf("failed to export report: %w", err)
			}
			fmt.Printf("✓ Report exported: %s\n", xlsxPath)
			return nil
		}

		printPages(pages)
		return nil
	},
}

func printPages(pages []service.ReportPage) {
	for i, page := range pages {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("=== %s (page %d of %d) ===\n", page.Date, i+1, len(pages))
		for _, section := range page.Sections {
			fmt.Printf("\n%s\n", section.Name)
			fmt.Printf("%-10s %10s %10s %10s %10s %10s %12s\n",
				"Company", "Sold", "Rate", "Total", "PWT", "VC", "Current Bill")
			for _, l := range section.Lines {
				printReportLine(l)
			}
			printReportLine(section.Totals)
			fmt.Printf("Running Bill: %s  Balance: %s  Outstanding: %s\n",
				section.Summary.RunningBill, section.Summary.Balance, section.Summary.Outstanding)
		}
	}
}

func printReportLine(l service.ReportLine) {
	fmt.Printf("%-10s %10s %10s %10s %10s %10s %12s\n",
		l.Company, l.Sold, l.Rate, l.Total, l.PWT, l.VC, l.CurrentBill)
}

func init() {
	reportCmd.Flags().String("date", "", "Only report records for this date (YYYY-MM-DD)")
	reportCmd.Flags().Bool("separate", false, "Start every customer on its own page")
	reportCmd.Flags().String("xlsx", "", "Export to an XLSX workbook at this path")
	reportCmd.Flags().Lookup("xlsx").NoOptDefVal = fmt.Sprintf("report-%s.xlsx", time.Now().Format("2006-01-02"))
}
