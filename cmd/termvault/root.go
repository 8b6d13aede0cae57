package main

import (
	"github.com/spf13/cobra"
)

var globalFlags struct {
	dbPath   string
	logLevel string
	actor    string
}

var rootCmd = &cobra.Command{
	Use:          "termvault",
	Short:        "termvault - versioned terminology storage",
	Long:         "termvault stores sources, concepts and mappings as immutable version chains.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.dbPath, "db", "", "Database file (default: <data dir>/index.db)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&globalFlags.actor, "actor", "", "User recorded as author of writes")

	rootCmd.AddCommand(newSourceCmd())
	rootCmd.AddCommand(newConceptCmd())
	rootCmd.AddCommand(newMappingCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newResetCmd())
}
