package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/billbook/internal/domain"
	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Manage customer records",
	Long:  `List, show, add, and delete per-date customer records.`,
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved record keys, newest date first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		date, _ := cmd.Flags().GetString("date")

		keys, err := appInstance.RecordService.ListByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		if len(keys) == 0 {
			fmt.Println("No records found")
			return nil
		}

		lastSaved, err := appInstance.RecordService.LastSaved(ctx)
		if err != nil {
			return fmt.Errorf("failed to read last-saved pointer: %w", err)
		}

		fmt.Printf("%-12s %-30s\n", "Date", "Customer")
		fmt.Println("--------------------------------------------")
		for _, key := range keys {
			marker := ""
			if lastSaved != nil && *lastSaved == key {
				marker = "  (last saved)"
			}
			fmt.Printf("%-12s %-30s%s\n", key.Date, truncate(key.Name, 30), marker)
		}

		fmt.Printf("\nTotal: %d record(s)\n", len(keys))
		return nil
	},
}

var recordsShowCmd = &cobra.Command{
	Use:   "show [name] [date]",
	Short: "Show one customer record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		key := domain.RecordKey{Name: args[0], Date: args[1]}

		record, err := appInstance.RecordService.Get(ctx, key)
		if err != nil {
			return err
		}

		fmt.Printf("%s - %s\n\n", record.Name, record.Date)
		fmt.Printf("%-10s %10s %10s %10s %10s %10s %12s\n",
			"Company", "Sold", "Rate", "Total", "PWT", "VC", "Current Bill")
		for _, l := range record.CompanyLines {
			fmt.Printf("%-10s %10s %10s %10s %10s %10s %12s\n",
				l.Company, l.Sold, l.Rate, l.Total, l.PWT, l.VC, l.CurrentBill)
		}
		fmt.Printf("%-10s %10s %10s %10s %10s %10s %12s\n",
			"Total", record.Totals.Sold, "", record.Totals.Total,
			record.Totals.PWT, record.Totals.VC, record.Totals.CurrentBill)
		fmt.Printf("\nRunning Bill: %s  Balance: %s  Outstanding: %s\n",
			record.Summary.RunningBill, record.Summary.Balance, record.Summary.Outstanding)
		return nil
	},
}

var recordsAddCmd = &cobra.Command{
	Use:   "add [name] [date]",
	Short: "Create or replace a customer record",
	Long: `Create or replace the record for a customer on a date.

Company lines are given with repeatable --line flags as
company,sold,rate,pwt,vc. Unparseable numbers count as zero.

Example:
  billbook records add "Acme" 2024-01-01 --line ML,10,5,2,1 --line NB,0,0,0,0 --balance 10`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		lines, _ := cmd.Flags().GetStringArray("line")
		balance, _ := cmd.Flags().GetString("balance")

		record := domain.NewCustomerRecord(args[0], args[1], nil)
		for _, spec := range lines {
			parts := strings.Split(spec, ",")
			line := domain.CompanyLine{Company: strings.TrimSpace(parts[0])}
			get := func(i int) domain.Amount {
				if i < len(parts) {
					return domain.ParseAmount(parts[i])
				}
				return domain.Amount{}
			}
			line.Sold = get(1)
			line.Rate = get(2)
			line.PWT = get(3)
			line.VC = get(4)
			record.CompanyLines = append(record.CompanyLines, line)
		}
		record.Summary.Balance = domain.ParseAmount(balance)

		if err := appInstance.RecordService.CreateOrReplace(ctx, record); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		fmt.Printf("✓ Record saved: %s\n", record.Key())
		fmt.Printf("  Running Bill: %s  Outstanding: %s\n",
			record.Summary.RunningBill, record.Summary.Outstanding)
		return nil
	},
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete [name] [date] ...",
	Short: "Delete customer records",
	Long: `Delete one or more records given as name date pairs.

Deleting a key with no record is a no-op; the rest of the batch still
processes.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected name date pairs")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		keys := make([]domain.RecordKey, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			keys = append(keys, domain.RecordKey{Name: args[i], Date: args[i+1]})
		}

		if err := appInstance.RecordService.Delete(ctx, keys); err != nil {
			return fmt.Errorf("failed to delete records: %w", err)
		}

		fmt.Printf("✓ Deleted %d record(s)\n", len(keys))
		return nil
	},
}

func init() {
	recordsCmd.AddCommand(recordsListCmd)
	recordsCmd.AddCommand(recordsShowCmd)
	recordsCmd.AddCommand(recordsAddCmd)
	recordsCmd.AddCommand(recordsDeleteCmd)

	recordsListCmd.Flags().String("date", "", "Only list records for this date (YYYY-MM-DD)")

	recordsAddCmd.Flags().StringArray("line", nil, "Company line as company,sold,rate,pwt,vc (repeatable)")
	recordsAddCmd.Flags().String("balance", "0", "Balance adjustment added to the running bill")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
