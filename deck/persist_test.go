package deck_test

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"flashgo/deck"
	"flashgo/storage"
)

// reviewSome gives the deck a mix of scheduling states.
func reviewSome(t *testing.T, d *deck.Deck, clock *fakeClock) {
	t.Helper()
	for _, p := range [][2]string{{"hola", "hello"}, {"adiós", "goodbye"}, {"gato", "cat"}, {"hola", "hello"}} {
		d.AddFact(p[0], p[1])
	}
	outcomes := []bool{true, false, true}
	for _, ok := range outcomes {
		clock.Advance(90 * time.Second)
		if _, _, found := d.NextFact(); !found {
			t.Fatal("NextFact failed")
		}
		if err := d.FinishCurrent(&ok); err != nil {
			t.Fatalf("FinishCurrent: %v", err)
		}
	}
}

func assertSameDeck(t *testing.T, got, want []deck.Fact) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d facts, want %d", len(got), len(want))
	}
	key := func(f deck.Fact) string { return f.Term + "\x00" + f.Definition }
	gk, wk := make([]string, len(got)), make([]string, len(want))
	for i := range got {
		gk[i], wk[i] = key(got[i]), key(want[i])
	}
	sort.Strings(gk)
	sort.Strings(wk)
	for i := range gk {
		if gk[i] != wk[i] {
			t.Fatalf("pairs differ: %q vs %q", gk, wk)
		}
	}

	byID := make(map[string]deck.Fact, len(got))
	for _, f := range got {
		byID[f.ID.String()] = f
	}
	for _, w := range want {
		g, ok := byID[w.ID.String()]
		if !ok {
			t.Errorf("fact %s (%s) missing after reload", w.ID, w.Term)
			continue
		}
		if !g.State.Equal(w.State) {
			t.Errorf("fact %s state = %+v, want %+v", w.Term, g.State, w.State)
		}
		if !g.Created.Equal(w.Created) {
			t.Errorf("fact %s created = %v, want %v", w.Term, g.Created, w.Created)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	backends := map[string]func(t *testing.T) any{
		"memory": func(t *testing.T) any { return storage.NewMemory() },
		"file": func(t *testing.T) any {
			return storage.FilePath(filepath.Join(t.TempDir(), "deck.json"))
		},
	}
	for name, conn := range backends {
		t.Run(name, func(t *testing.T) {
			c := conn(t)
			d, clock := mustDeck(t, deck.WithStorageConn(c))
			reviewSome(t, d, clock)
			if err := d.Save(ctx); err != nil {
				t.Fatalf("Save: %v", err)
			}

			fresh, _ := mustDeck(t, deck.WithStorageConn(c))
			if err := fresh.Load(ctx); err != nil {
				t.Fatalf("Load: %v", err)
			}
			assertSameDeck(t, fresh.All(), d.All())

			// Order survives as well.
			for i, f := range fresh.All() {
				if f.ID != d.All()[i].ID {
					t.Errorf("position %d holds %s, want %s", i, f.ID, d.All()[i].ID)
				}
			}
		})
	}
}

func TestLoad_ReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	d, _ := mustDeck(t, deck.WithStorageConn(mem))
	d.AddFact("uno", "one")
	if err := d.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	d.AddFact("dos", "two")
	_, _, _ = d.NextFact()
	if err := d.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	all := d.All()
	if len(all) != 1 || all[0].Term != "uno" {
		t.Errorf("All after Load = %v, want only uno", all)
	}
	if _, _, ok := d.Current(); ok {
		t.Error("Load should leave the deck idle")
	}
}

func TestSave_FailureSurfacesCause(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	d, _ := mustDeck(t, deck.WithStorageConn(mem))
	d.AddFact("uno", "one")
	if err := d.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}

	boom := errors.New("disk full")
	mem.FailWrites(boom)
	d.AddFact("dos", "two")
	err := d.Save(ctx)
	if !errors.Is(err, boom) || !errors.Is(err, deck.ErrStorage) {
		t.Fatalf("Save err = %v, want ErrStorage wrapping %v", err, boom)
	}
	var se *deck.StorageError
	if !errors.As(err, &se) || se.Op != "write" || se.Dialect != storage.DialectMemory {
		t.Errorf("StorageError = %+v, want write on memory", se)
	}

	// Changes stay in memory; storage keeps the last good dataset.
	if d.Len() != 2 {
		t.Errorf("Len = %d, want 2", d.Len())
	}
	if got := len(mem.Records()); got != 1 {
		t.Errorf("storage has %d records, want 1", got)
	}

	// No retry happened behind the caller's back.
	if _, writes := mem.Counts(); writes != 2 {
		t.Errorf("writes = %d, want 2", writes)
	}
}

func TestLoad_FailureKeepsDeck(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	d, _ := mustDeck(t, deck.WithStorageConn(mem))
	d.AddFact("uno", "one")

	boom := errors.New("unreachable")
	mem.FailReads(boom)
	err := d.Load(ctx)
	if !errors.Is(err, boom) || !errors.Is(err, deck.ErrStorage) {
		t.Fatalf("Load err = %v, want ErrStorage wrapping %v", err, boom)
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
}

// rawStorage is a Storage returning unwrapped backend errors.
type rawStorage struct {
	err     error
	exits   int
	facts   []deck.Fact
	exitErr error
}

func (s *rawStorage) ReadDB(context.Context) ([]deck.Fact, error) { return s.facts, s.err }
func (s *rawStorage) WriteDB(_ context.Context, f []deck.Fact) error {
	if s.err != nil {
		return s.err
	}
	s.facts = f
	return nil
}
func (s *rawStorage) ExitApplication() error { s.exits++; return s.exitErr }

func TestCustomStorageErrorsAreWrapped(t *testing.T) {
	boom := errors.New("backend specific")
	st := &rawStorage{err: boom}
	d, _ := mustDeck(t, deck.WithStorage(st))
	for name, err := range map[string]error{"load": d.Load(context.Background()), "save": d.Save(context.Background())} {
		var se *deck.StorageError
		if !errors.As(err, &se) || !errors.Is(err, boom) {
			t.Errorf("%s err = %v, want *StorageError wrapping the cause", name, err)
		}
	}
}

func TestLoad_DuplicateIDsGetFreshIdentity(t *testing.T) {
	f := deck.NewFact("uno", "one")
	st := &rawStorage{facts: []deck.Fact{f, f, deck.NewFact("dos", "two")}}
	d, _ := mustDeck(t, deck.WithStorage(st))
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	seen := map[string]bool{}
	for _, f := range d.All() {
		if seen[f.ID.String()] {
			t.Errorf("duplicate id %s", f.ID)
		}
		seen[f.ID.String()] = true
	}
	if len(seen) != 3 {
		t.Errorf("got %d distinct facts, want 3", len(seen))
	}
}

func TestShutdown(t *testing.T) {
	st := &rawStorage{}
	d, _ := mustDeck(t, deck.WithStorage(st))
	d.AddFact("uno", "one")

	if err := d.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := d.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if st.exits != 1 {
		t.Errorf("exit hook ran %d times, want 1", st.exits)
	}
	if st.facts != nil {
		t.Error("Shutdown must not save")
	}
	if err := d.Save(context.Background()); !errors.Is(err, deck.ErrShutdown) {
		t.Errorf("Save after Shutdown err = %v, want ErrShutdown", err)
	}
	if err := d.Load(context.Background()); !errors.Is(err, deck.ErrShutdown) {
		t.Errorf("Load after Shutdown err = %v, want ErrShutdown", err)
	}
	if !d.IsShutdown() {
		t.Error("IsShutdown = false")
	}
}

func TestShutdown_DeckIsReadOnly(t *testing.T) {
	d, _ := mustDeck(t, deck.WithStorage(&rawStorage{}))
	d.AddFact("uno", "one")
	d.AddFact("dos", "two")
	if _, _, ok := d.NextFact(); !ok {
		t.Fatal("NextFact failed")
	}
	if err := d.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	before := d.All()

	if _, _, ok := d.NextFact(); ok {
		t.Error("NextFact after Shutdown returned a fact")
	}
	if _, ok := d.Pick(); ok {
		t.Error("Pick after Shutdown returned a fact")
	}
	if err := d.Correct(); !errors.Is(err, deck.ErrShutdown) {
		t.Errorf("Correct err = %v, want ErrShutdown", err)
	}
	if pos := d.AddFact("tres", "three"); pos != -1 {
		t.Errorf("AddFact position = %d, want -1", pos)
	}
	d.AddFacts([]deck.Fact{deck.NewFact("cuatro", "four")})
	if err := d.DeleteAt(0); !errors.Is(err, deck.ErrShutdown) {
		t.Errorf("DeleteAt err = %v, want ErrShutdown", err)
	}
	if err := d.DeleteByID(before[0].ID); !errors.Is(err, deck.ErrShutdown) {
		t.Errorf("DeleteByID err = %v, want ErrShutdown", err)
	}
	d.Clear()

	after := d.All()
	if len(after) != len(before) {
		t.Fatalf("deck changed after Shutdown: %d facts, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].ID != before[i].ID || !after[i].State.Equal(before[i].State) {
			t.Errorf("fact %d changed after Shutdown", i)
		}
	}
	if d.Len() != 2 {
		t.Errorf("Len = %d, want reads to keep working", d.Len())
	}
}

func TestShutdown_ExitError(t *testing.T) {
	boom := errors.New("close failed")
	d, _ := mustDeck(t, deck.WithStorage(&rawStorage{exitErr: boom}))
	err := d.Shutdown()
	var se *deck.StorageError
	if !errors.As(err, &se) || se.Op != "exit" || !errors.Is(err, boom) {
		t.Errorf("Shutdown err = %v, want exit StorageError", err)
	}
}

func TestShutdown_ClosesOpenedConnection(t *testing.T) {
	ctx := context.Background()
	m, err := storage.Open(ctx, storage.Config{Dialect: storage.DialectSQLite, DSN: filepath.Join(t.TempDir(), "deck.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d, _ := mustDeck(t, deck.WithStorage(deck.NewManagedStorage(m)))
	d.AddFact("uno", "one")
	if err := d.Save(ctx); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := d.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	// The sql.DB is closed now, so a direct repository call fails.
	repo, err := m.Facts()
	if err != nil {
		t.Fatalf("Facts: %v", err)
	}
	if _, err := repo.LoadAll(ctx); err == nil {
		t.Error("LoadAll after Shutdown should fail on a closed database")
	}
}
