package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <term> <definition>",
		Short: "Add a fact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) (bool, error) {
				pos := a.deck.AddFact(args[0], args[1])
				fmt.Fprintf(cmd.OutOrStdout(), "%s #%d %s = %s\n",
					color.New(color.FgGreen).Sprint("added"), pos, args[0], args[1])
				return true, nil
			})
		},
	}
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List facts in insertion order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dueOnly, _ := cmd.Flags().GetBool("due")
			return withApp(cmd, func(a *app) (bool, error) {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "#\tTERM\tDEFINITION\tSTREAK\tDUE")

				due := make(map[uuid.UUID]bool)
				for _, f := range a.deck.EligibleNow() {
					due[f.ID] = true
				}
				for i, f := range a.deck.All() {
					if dueOnly && !due[f.ID] {
						continue
					}
					when := color.New(color.FgGreen).Sprint("now")
					if !due[f.ID] {
						when = color.New(color.FgYellow).Sprint(f.State.Due.Local().Format("2006-01-02 15:04"))
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", i, f.Term, f.Definition, f.State.Streak, when)
				}
				return false, w.Flush()
			})
		},
	}
	cmd.Flags().Bool("due", false, "Only list facts due now")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <position|id>",
		Short: "Delete a fact by position or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) (bool, error) {
				if id, err := uuid.Parse(args[0]); err == nil {
					if err := a.deck.DeleteByID(id); err != nil {
						return false, err
					}
				} else {
					pos, err := strconv.Atoi(args[0])
					if err != nil {
						return false, fmt.Errorf("%q is neither a position nor an id", args[0])
					}
					if err := a.deck.DeleteAt(pos); err != nil {
						return false, err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.New(color.FgRed).Sprint("deleted"), args[0])
				return true, nil
			})
		},
	}
}

func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every fact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("refusing to clear the deck without --yes")
			}
			return withApp(cmd, func(a *app) (bool, error) {
				n := a.deck.Len()
				a.deck.Clear()
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d facts\n", color.New(color.FgRed).Sprint("cleared"), n)
				return true, nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm clearing the deck")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the deck",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) (bool, error) {
				st := a.deck.Stats()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "facts:     %d\n", st.Total)
				fmt.Fprintf(out, "due now:   %s\n", color.New(color.FgGreen).Sprint(st.Eligible))
				fmt.Fprintf(out, "learned:   %d\n", st.Learned)
				fmt.Fprintf(out, "penalties: %s\n", color.New(color.FgRed).Sprint(st.Penalties))
				fmt.Fprintf(out, "policy:    %s (%s)\n", a.deck.Policy().Name(), a.deck.Selector().Name())
				return false, nil
			})
		},
	}
}
