package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Manage the customer name list",
	Long: `The customer list holds every name ever saved, including names whose
records have since been deleted, so they stay available for reuse.`,
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known customer names",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		names, err := appInstance.RecordService.Customers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list customers: %w", err)
		}

		if len(names) == 0 {
			fmt.Println("No customers found")
			return nil
		}

		for _, name := range names {
			fmt.Println(name)
		}

		fmt.Printf("\nTotal: %d customer(s)\n", len(names))
		return nil
	},
}

func init() {
	customersCmd.AddCommand(customersListCmd)
}
