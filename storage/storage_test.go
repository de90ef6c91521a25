package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"flashgo/storage"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 123456789, time.UTC)

func sampleRecords() []storage.FactRecord {
	return []storage.FactRecord{
		{
			UUID: "a", Position: 0, Term: "hola", Definition: "hello",
			Streak: 2, Penalties: 1, Reviews: 3,
			DueNS: storage.EncodeTime(t0.Add(time.Hour)), LastReviewNS: storage.EncodeTime(t0),
			CreatedNS: t0.Add(-time.Hour).UnixNano(),
		},
		{
			UUID: "b", Position: 1, Term: "adiós", Definition: "goodbye",
			CreatedNS: t0.UnixNano(),
		},
	}
}

func mustManager(t *testing.T, conn any) *storage.Manager {
	t.Helper()
	m := storage.NewManager()
	if err := m.Start(conn); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func assertRecords(t *testing.T, got, want []storage.FactRecord) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.UUID != w.UUID || g.Position != w.Position || g.Term != w.Term || g.Definition != w.Definition ||
			g.Streak != w.Streak || g.Penalties != w.Penalties || g.Reviews != w.Reviews || g.CreatedNS != w.CreatedNS {
			t.Errorf("record %d = %+v, want %+v", i, g, w)
		}
		if !storage.DecodeTime(g.DueNS).Equal(storage.DecodeTime(w.DueNS)) {
			t.Errorf("record %d due = %v, want %v", i, g.DueNS, w.DueNS)
		}
		if !storage.DecodeTime(g.LastReviewNS).Equal(storage.DecodeTime(w.LastReviewNS)) {
			t.Errorf("record %d last review = %v, want %v", i, g.LastReviewNS, w.LastReviewNS)
		}
	}
}

func roundTrip(t *testing.T, m *storage.Manager) {
	t.Helper()
	ctx := context.Background()
	repo, err := m.Facts()
	if err != nil {
		t.Fatalf("Facts: %v", err)
	}

	empty, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll on fresh backend: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("fresh backend has %d records", len(empty))
	}

	want := sampleRecords()
	if err := repo.ReplaceAll(ctx, want); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	got, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	assertRecords(t, got, want)

	// A second write replaces rather than appends.
	if err := repo.ReplaceAll(ctx, want[1:]); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	got, err = repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	assertRecords(t, got, want[1:])
}

func TestEncodeTime(t *testing.T) {
	if storage.EncodeTime(time.Time{}) != nil {
		t.Error("zero instant should encode to nil")
	}
	if !storage.DecodeTime(nil).IsZero() {
		t.Error("nil should decode to the zero instant")
	}
	local := t0.In(time.FixedZone("X", 3600))
	if got := storage.DecodeTime(storage.EncodeTime(local)); !got.Equal(local) {
		t.Errorf("round trip = %v, want %v", got, local)
	}
}

func TestManager_NotStarted(t *testing.T) {
	m := storage.NewManager()
	if err := m.Start(nil); err != nil {
		t.Fatalf("Start(nil): %v", err)
	}
	if m.Dialect() != "" {
		t.Errorf("Dialect = %q, want empty", m.Dialect())
	}
	if _, err := m.Facts(); !errors.Is(err, storage.ErrNoDriver) {
		t.Errorf("Facts err = %v, want ErrNoDriver", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestManager_UnknownConn(t *testing.T) {
	m := storage.NewManager()
	if err := m.Start(42); !errors.Is(err, storage.ErrNoAdapter) {
		t.Errorf("Start(42) err = %v, want ErrNoAdapter", err)
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	m := mustManager(t, storage.NewMemory())
	if m.Dialect() != storage.DialectMemory {
		t.Errorf("Dialect = %q", m.Dialect())
	}
	roundTrip(t, m)
}

func TestMemory_FailuresKeepPreviousRecords(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	mem.Seed(sampleRecords())

	boom := errors.New("disk on fire")
	mem.FailWrites(boom)
	if err := mem.ReplaceAll(ctx, nil); !errors.Is(err, boom) {
		t.Fatalf("ReplaceAll err = %v, want %v", err, boom)
	}
	assertRecords(t, mem.Records(), sampleRecords())

	mem.FailReads(boom)
	if _, err := mem.LoadAll(ctx); !errors.Is(err, boom) {
		t.Fatalf("LoadAll err = %v, want %v", err, boom)
	}
	reads, writes := mem.Counts()
	if reads != 1 || writes != 1 {
		t.Errorf("Counts = %d/%d, want 1/1", reads, writes)
	}
}

func TestMemory_CopiesRecords(t *testing.T) {
	mem := storage.NewMemory()
	recs := sampleRecords()
	mem.Seed(recs)
	*recs[0].DueNS = 0
	recs[0].Term = "changed"
	got := mem.Records()
	if got[0].Term != "hola" || *got[0].DueNS == 0 {
		t.Errorf("stored record aliased caller memory: %+v", got[0])
	}
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deck.json")
	m := mustManager(t, storage.FilePath(path))
	if m.Dialect() != storage.DialectFile {
		t.Errorf("Dialect = %q", m.Dialect())
	}
	roundTrip(t, m)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	m := mustManager(t, storage.FilePath(path))
	repo, _ := m.Facts()
	if _, err := repo.LoadAll(context.Background()); err == nil {
		t.Error("expected a parse error")
	}
}

func TestSQLite_RoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite", "file:flashgo_storage_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	m := mustManager(t, db)
	if m.Dialect() != storage.DialectSQLite {
		t.Fatalf("Dialect = %q, want sqlite", m.Dialect())
	}
	roundTrip(t, m)

	// Migrations are idempotent.
	if err := m.Build(context.Background()); err != nil {
		t.Fatalf("second Build: %v", err)
	}
}

func TestSQLite_FailedReplaceKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", "file:flashgo_storage_rollback?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	m := mustManager(t, db)
	repo, _ := m.Facts()
	want := sampleRecords()
	if err := repo.ReplaceAll(ctx, want); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	// Duplicate uuids violate the unique constraint half way through.
	dup := []storage.FactRecord{want[0], want[0]}
	if err := repo.ReplaceAll(ctx, dup); err == nil {
		t.Fatal("expected unique constraint failure")
	}
	got, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	assertRecords(t, got, want)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tests := []storage.Config{
		{Dialect: storage.DialectMemory},
		{Dialect: storage.DialectFile, DSN: filepath.Join(dir, "deck.json")},
		{Dialect: storage.DialectSQLite, DSN: filepath.Join(dir, "db", "deck.db")},
	}
	for _, cfg := range tests {
		t.Run(cfg.Dialect, func(t *testing.T) {
			m, err := storage.Open(ctx, cfg)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer func() {
				if err := m.Close(); err != nil {
					t.Errorf("Close: %v", err)
				}
			}()
			if m.Dialect() != cfg.Dialect {
				t.Errorf("Dialect = %q, want %q", m.Dialect(), cfg.Dialect)
			}
			roundTrip(t, m)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []storage.Config{
		{},
		{Dialect: "oracle", DSN: "x"},
		{Dialect: storage.DialectSQLite},
		{Dialect: storage.DialectPostgres, DSN: "  "},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", cfg)
		}
	}
	if _, err := storage.Open(context.Background(), storage.Config{Dialect: "oracle"}); err == nil {
		t.Error("Open with unknown dialect should fail")
	}
}
