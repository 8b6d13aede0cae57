package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termvault/termvault/internal/database"
)

func newResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every source, concept and mapping in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to delete all data without --force")
			}

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := database.ClearDatabase(a.db); err != nil {
				return fmt.Errorf("failed to reset database: %w", err)
			}
			a.log.Info().Msg("Database cleared")
			fmt.Fprintln(cmd.OutOrStdout(), "Database cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm deleting all data")

	return cmd
}
