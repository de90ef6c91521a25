// Package main is the entry point for the flashgo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set by ldflags at release time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "flashgo:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashgo",
		Short:         "Spaced-repetition flashcards in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file (default $FLASHGO_CONFIG)")
	root.PersistentFlags().String("dialect", "", "Storage dialect: sqlite, postgres, mongodb, file, memory")
	root.PersistentFlags().String("dsn", "", "Storage connection string or path")

	root.AddCommand(
		versionCmd(),
		addCmd(),
		listCmd(),
		deleteCmd(),
		clearCmd(),
		statsCmd(),
		reviewCmd(),
		importCmd(),
		exportCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "flashgo %s (commit: %s)\n", version, commit)
		},
	}
}
