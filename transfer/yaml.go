package transfer

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"flashgo/deck"
)

// The YAML form is a sequence of {term, definition} mappings; deck.Fact
// hides every other field from yaml.

func writeYAML(w io.Writer, facts []deck.Fact) error {
	if facts == nil {
		facts = []deck.Fact{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(facts); err != nil {
		return fmt.Errorf("transfer: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("transfer: yaml: %w", err)
	}
	return nil
}

func readYAML(r io.Reader) ([]deck.Fact, error) {
	var facts []deck.Fact
	if err := yaml.NewDecoder(r).Decode(&facts); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("transfer: yaml: %w", err)
	}
	out := make([]deck.Fact, 0, len(facts))
	for _, f := range facts {
		out = append(out, deck.NewFact(f.Term, f.Definition))
	}
	return out, nil
}
