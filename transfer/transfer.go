// Package transfer moves facts in and out of a deck as CSV or YAML.
//
// Only the term and definition travel; scheduling state stays with the
// deck. Imported facts are fed to Deck.AddFacts, which gives them a fresh
// identity and initial state.
package transfer

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"flashgo/deck"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("transfer: unknown format")

// ParseFormat accepts "csv", "yaml" or "yml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Export writes facts sorted by term, then definition.
func Export(w io.Writer, format Format, facts []deck.Fact) error {
	sorted := Sorted(facts)
	switch format {
	case FormatCSV:
		return writeCSV(w, sorted)
	case FormatYAML:
		return writeYAML(w, sorted)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Import reads term/definition pairs. The returned facts carry no identity
// or schedule.
func Import(r io.Reader, format Format) ([]deck.Fact, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatYAML:
		return readYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type pair struct{ term, definition string }

func pairOf(f deck.Fact) pair { return pair{f.Term, f.Definition} }

// Missing returns the incoming facts whose (term, definition) pair is not in
// existing, keeping only the first of any pair repeated in incoming.
func Missing(existing, incoming []deck.Fact) []deck.Fact {
	seen := make(map[pair]struct{}, len(existing)+len(incoming))
	for _, f := range existing {
		seen[pairOf(f)] = struct{}{}
	}
	var out []deck.Fact
	for _, f := range incoming {
		key := pairOf(f)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Merge returns existing unchanged, followed by Missing(existing,
// incoming). Existing facts keep their identity and state, duplicates
// among them included.
func Merge(existing, incoming []deck.Fact) []deck.Fact {
	out := slices.Clone(existing)
	return append(out, Missing(existing, incoming)...)
}

// Sorted returns a copy of facts ordered by term, then definition.
func Sorted(facts []deck.Fact) []deck.Fact {
	out := slices.Clone(facts)
	slices.SortStableFunc(out, func(a, b deck.Fact) int {
		if c := cmp.Compare(a.Term, b.Term); c != 0 {
			return c
		}
		return cmp.Compare(a.Definition, b.Definition)
	})
	return out
}
