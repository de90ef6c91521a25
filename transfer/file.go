package transfer

import (
	"fmt"
	"os"
	"path/filepath"

	"flashgo/deck"
)

// ReadFile imports the file at path in the format named by its extension.
// A missing file yields an error matching fs.ErrNotExist.
func ReadFile(path string) ([]deck.Fact, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	defer f.Close()
	return Import(f, format)
}

// WriteFile exports facts to path through a temp file renamed into place.
func WriteFile(path string, facts []deck.Fact) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Export(tmp, format, facts); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return nil
}
