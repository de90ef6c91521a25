package transfer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"flashgo/deck"
)

var csvHeader = []string{"term", "definition"}

func writeCSV(w io.Writer, facts []deck.Fact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("transfer: csv: %w", err)
	}
	for _, f := range facts {
		if err := cw.Write([]string{f.Term, f.Definition}); err != nil {
			return fmt.Errorf("transfer: csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("transfer: csv: %w", err)
	}
	return nil
}

// readCSV expects two columns per row. A leading term,definition header is
// skipped.
func readCSV(r io.Reader) ([]deck.Fact, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	var out []deck.Fact
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("transfer: csv: %w", err)
		}
		if first && isHeader(rec) {
			continue
		}
		out = append(out, deck.NewFact(rec[0], rec[1]))
	}
}

func isHeader(rec []string) bool {
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), col) {
			return false
		}
	}
	return true
}
