package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flashgo/deck"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review due facts interactively",
		Long: `Presents due facts one at a time. Type your answer (or just press
enter), then mark the fact: y = correct, n = incorrect, s = skip, q = quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			all, _ := cmd.Flags().GetBool("all")

			a, err := openApp(cmd)
			if err != nil {
				return err
			}

			var mu sync.Mutex
			saver := newAutosaver(&mu, a.deck, a.logger)
			if err := saver.Start(cmd.Context(), a.cfg.Autosave); err != nil {
				return errors.Join(err, a.close(cmd.Context(), false))
			}

			r := &reviewer{
				mu:    &mu,
				deck:  a.deck,
				in:    bufio.NewScanner(cmd.InOrStdin()),
				out:   cmd.OutOrStdout(),
				limit: limit,
				all:   all,
			}
			runErr := r.run()
			saver.Stop()

			mu.Lock()
			defer mu.Unlock()
			return errors.Join(runErr, a.close(cmd.Context(), true))
		},
	}
	cmd.Flags().Int("limit", 0, "Stop after this many facts (0 = no limit)")
	cmd.Flags().Bool("all", false, "Keep going with facts that are not due yet")
	return cmd
}

type reviewer struct {
	mu    *sync.Mutex
	deck  *deck.Deck
	in    *bufio.Scanner
	out   io.Writer
	limit int
	all   bool

	correct, incorrect int
}

var (
	termColor    = color.New(color.FgCyan, color.Bold)
	correctColor = color.New(color.FgGreen)
	wrongColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

func (r *reviewer) run() error {
	defer r.summary()
	for n := 0; r.limit == 0 || n < r.limit; n++ {
		pick, ok := r.next()
		if !ok {
			fmt.Fprintln(r.out, "The deck is empty. Add facts with `flashgo add`.")
			return nil
		}
		f, eligible := deck.Collapse(pick), pick.IsLeft()
		if !eligible && !r.all {
			r.finish((*reviewer).abandon)
			fmt.Fprintln(r.out, correctColor.Sprint("Nothing is due. Come back later."))
			return nil
		}

		fmt.Fprintf(r.out, "\n%s\n", termColor.Sprint(f.Term))
		if !eligible {
			fmt.Fprintln(r.out, dimColor.Sprint("(not due yet)"))
		}
		fmt.Fprint(r.out, "> ")
		answer, ok := r.readLine()
		if !ok {
			r.finish((*reviewer).abandon)
			return r.in.Err()
		}

		hint := ""
		if answer != "" && strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(f.Definition)) {
			hint = correctColor.Sprint(" (match)")
		}
		fmt.Fprintf(r.out, "%s%s\n", f.Definition, hint)

		switch r.ask() {
		case 'y':
			if err := r.finish((*reviewer).markCorrect); err != nil {
				return err
			}
			fmt.Fprintln(r.out, correctColor.Sprint("correct"))
		case 'n':
			if err := r.finish((*reviewer).markIncorrect); err != nil {
				return err
			}
			fmt.Fprintln(r.out, wrongColor.Sprint("incorrect"))
		case 's':
			r.finish((*reviewer).abandon)
		default:
			r.finish((*reviewer).abandon)
			return nil
		}
	}
	return nil
}

func (r *reviewer) next() (deck.Either[deck.Fact, deck.Fact], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deck.Pick()
}

func (r *reviewer) finish(fn func(*reviewer) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r)
}

func (r *reviewer) markCorrect() error {
	r.correct++
	return r.deck.Correct()
}

func (r *reviewer) markIncorrect() error {
	r.incorrect++
	return r.deck.Incorrect()
}

func (r *reviewer) abandon() error {
	return r.deck.Abandon()
}

// ask reads until it gets y, n, s or q. End of input counts as q.
func (r *reviewer) ask() byte {
	for {
		fmt.Fprint(r.out, dimColor.Sprint("[y]es [n]o [s]kip [q]uit: "))
		line, ok := r.readLine()
		if !ok {
			return 'q'
		}
		line = strings.ToLower(strings.TrimSpace(line))
		if line != "" && strings.ContainsRune("ynsq", rune(line[0])) {
			return line[0]
		}
	}
}

func (r *reviewer) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return r.in.Text(), true
}

func (r *reviewer) summary() {
	if r.correct+r.incorrect == 0 {
		return
	}
	fmt.Fprintf(r.out, "\n%s correct, %s incorrect\n",
		correctColor.Sprint(r.correct), wrongColor.Sprint(r.incorrect))
}
