package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flashgo/transfer"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv|file.yaml>",
		Short: "Add facts from a CSV or YAML file",
		Long: `Adds every term/definition pair from the file that the deck does not
already hold. With --overwrite the deck is cleared first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			incoming, err := transfer.ReadFile(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app) (bool, error) {
				if overwrite {
					a.deck.Clear()
				}
				fresh := transfer.Missing(a.deck.All(), incoming)
				a.deck.AddFacts(fresh)

				a.logger.Info("facts imported", "path", args[0], "read", len(incoming), "added", len(fresh))
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d facts (%d already present)\n",
					color.New(color.FgGreen).Sprint("imported"), len(fresh), len(incoming)-len(fresh))
				return overwrite || len(fresh) > 0, nil
			})
		},
	}
	cmd.Flags().Bool("overwrite", false, "Clear the deck before importing")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.csv|file.yaml>",
		Short: "Write facts to a CSV or YAML file",
		Long: `Writes every term/definition pair sorted by term. Pairs already in the
file are kept unless --overwrite is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			return withApp(cmd, func(a *app) (bool, error) {
				facts := a.deck.All()
				if !overwrite {
					existing, err := transfer.ReadFile(args[0])
					switch {
					case err == nil:
						facts = transfer.Merge(facts, existing)
					case !errors.Is(err, fs.ErrNotExist):
						return false, err
					}
				}
				if err := transfer.WriteFile(args[0], facts); err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d facts to %s\n",
					color.New(color.FgGreen).Sprint("exported"), len(facts), args[0])
				return false, nil
			})
		},
	}
	cmd.Flags().Bool("overwrite", false, "Replace the file instead of merging into it")
	return cmd
}
