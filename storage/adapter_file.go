package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FilePath selects the JSON file backend when passed to Manager.Start.
type FilePath string

type FileAdapter struct {
	Path string
}

func (a *FileAdapter) Dialect() string { return DialectFile }

func isFilePath(conn any) bool {
	_, ok := conn.(FilePath)
	return ok
}

func newFileAdapter(conn any) (Adapter, error) {
	p := conn.(FilePath)
	if p == "" {
		return nil, errors.New("file adapter: empty path")
	}
	return &FileAdapter{Path: string(p)}, nil
}

const fileFormatVersion = 1

type fileDocument struct {
	Version int          `json:"version"`
	Facts   []FactRecord `json:"facts"`
}

type FileDriver struct {
	a *FileAdapter
}

func newFileDriver(adapter Adapter) (Driver, error) {
	a, ok := adapter.(*FileAdapter)
	if !ok {
		return nil, fmt.Errorf("file driver expects *FileAdapter, got %T", adapter)
	}
	return &FileDriver{a: a}, nil
}

func (d *FileDriver) Dialect() string { return DialectFile }

// Migrate makes sure the parent directory exists.
func (d *FileDriver) Migrate(_ context.Context) error {
	if dir := filepath.Dir(d.a.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("file: create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (d *FileDriver) Facts() FactRepo { return d }

// LoadAll reads the document; a missing file is an empty collection.
func (d *FileDriver) LoadAll(_ context.Context) ([]FactRecord, error) {
	raw, err := os.ReadFile(d.a.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: read %s: %w", d.a.Path, err)
	}
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("file: parse %s: %w", d.a.Path, err)
	}
	if doc.Version > fileFormatVersion {
		return nil, fmt.Errorf("file: %s has format version %d, newest known is %d", d.a.Path, doc.Version, fileFormatVersion)
	}
	return doc.Facts, nil
}

// ReplaceAll writes to a temporary sibling and renames it over the target,
// so readers see either the old or the new document.
func (d *FileDriver) ReplaceAll(_ context.Context, records []FactRecord) error {
	raw, err := json.MarshalIndent(fileDocument{Version: fileFormatVersion, Facts: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.a.Path), filepath.Base(d.a.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("file: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("file: sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("file: close temp: %w", err)
	}
	if err := os.Rename(tmpName, d.a.Path); err != nil {
		cleanup()
		return fmt.Errorf("file: replace %s: %w", d.a.Path, err)
	}
	return nil
}
