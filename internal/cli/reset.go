package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  billbook reset records    # Delete all records, the index, and the last-saved pointer
  billbook reset all        # Wipe everything, including the customer list`,
}

var resetRecordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Delete all records, the index, and the last-saved pointer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL customer records. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		// Index first so a failure never leaves entries pointing at
		// removed records
		tables := []string{
			"last_saved",
			"record_index",
			"records",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All records have been deleted. Customer names were kept.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete ALL data: records, index, pointer, and customer list",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL data (records and customer list). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		tables := []string{
			"last_saved",
			"record_index",
			"records",
			"customers",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetRecordsCmd)
	resetCmd.AddCommand(resetAllCmd)
}
