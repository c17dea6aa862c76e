package cli

import (
	"fmt"

	"notepost/config/database"

	"github.com/spf13/cobra"
)

func (c *CLI) newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Clear the existing data and create new tables",
		Long: `Drop and recreate the entries table.

WARNING: this deletes every stored entry. There is no confirmation prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := database.Open(cmd.Context(), c.cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := database.InitSchema(cmd.Context(), store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized the database.")
			return nil
		},
	}
}
