package deck

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"flashgo/schedule"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func mustPolicy(t *testing.T) schedule.Policy {
	t.Helper()
	p, err := schedule.NewPolicy(schedule.Config{})
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	return p
}

func TestFactStoreAddAssignsIdentity(t *testing.T) {
	s := NewFactStore()
	a := NewFact("uno", "one")
	if pos := s.Add(a); pos != 0 {
		t.Errorf("position = %d, want 0", pos)
	}
	if pos := s.Add(a); pos != 1 {
		t.Errorf("position = %d, want 1", pos)
	}
	all := s.All()
	if all[0].ID == uuid.Nil || all[1].ID == uuid.Nil {
		t.Fatal("nil identity stored")
	}
	if all[0].ID == all[1].ID {
		t.Error("two facts share an identity")
	}

	// Re-adding a stored fact keeps the first identity unique.
	s.Add(all[0])
	if got := s.All()[2].ID; got == all[0].ID {
		t.Error("duplicate identity accepted")
	}
}

func TestFactStoreKeepsGivenIdentity(t *testing.T) {
	s := NewFactStore()
	f := NewFact("uno", "one")
	f.ID = uuid.New()
	s.Add(f)
	if s.IndexOf(f.ID) != 0 {
		t.Errorf("IndexOf = %d, want 0", s.IndexOf(f.ID))
	}
	if s.IndexOf(uuid.New()) != -1 {
		t.Error("IndexOf an unknown id should be -1")
	}
}

func TestFactStoreRemoveAt(t *testing.T) {
	s := NewFactStore()
	s.AddMany([]Fact{NewFact("a", "1"), NewFact("b", "2"), NewFact("c", "3")})

	if _, err := s.RemoveAt(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveAt(3) err = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := s.RemoveAt(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveAt(-1) err = %v, want ErrIndexOutOfRange", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d after failed removes, want 3", s.Len())
	}

	f, err := s.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt(1): %v", err)
	}
	if f.Term != "b" {
		t.Errorf("removed %q, want b", f.Term)
	}
	if s.IndexOf(f.ID) != -1 {
		t.Error("removed identity still indexed")
	}
	if got, _ := s.At(1); got.Term != "c" {
		t.Errorf("At(1) = %q, want c", got.Term)
	}
	if _, err := s.At(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("At(2) err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestFactStoreEligible(t *testing.T) {
	p := mustPolicy(t)
	s := NewFactStore()
	due := NewFact("due", "now")
	later := NewFact("later", "soon")
	later.State.Due = t0.Add(time.Hour)
	s.AddMany([]Fact{later, due, later})

	if got := s.CountEligible(p, t0); got != 1 {
		t.Errorf("CountEligible = %d, want 1", got)
	}
	eligible := s.Eligible(p, t0)
	if len(eligible) != 1 || eligible[0].Term != "due" {
		t.Errorf("Eligible = %v, want [due]", eligible)
	}
	if got := s.CountEligible(p, t0.Add(time.Hour)); got != 3 {
		t.Errorf("CountEligible an hour later = %d, want 3", got)
	}
}

func TestFactStoreClearAndReplace(t *testing.T) {
	s := NewFactStore()
	s.Add(NewFact("a", "1"))
	id := s.All()[0].ID
	s.Clear()
	if s.Len() != 0 || len(s.All()) != 0 {
		t.Error("store not empty after Clear")
	}
	if s.IndexOf(id) != -1 {
		t.Error("identity survived Clear")
	}

	s.Replace([]Fact{NewFact("x", "1"), NewFact("y", "2")})
	if s.Len() != 2 {
		t.Errorf("Len after Replace = %d, want 2", s.Len())
	}
}

func TestFactStoreSnapshotsAreCopies(t *testing.T) {
	s := NewFactStore()
	f := NewFact("a", "1")
	last := t0
	f.State.LastReview = &last
	s.Add(f)

	snap := s.All()
	*snap[0].State.LastReview = t0.Add(time.Hour)
	if got := s.All()[0].State.LastReview; !got.Equal(t0) {
		t.Errorf("LastReview = %v, snapshot aliased store memory", got)
	}
}

func TestRecordConversion(t *testing.T) {
	last := t0.Add(-time.Hour)
	f := Fact{
		ID:         uuid.New(),
		Term:       "hola",
		Definition: "hello",
		State:      schedule.State{Streak: 2, Penalties: 1, Reviews: 4, Due: t0, LastReview: &last},
		Created:    t0.Add(-48 * time.Hour),
	}
	rec := toRecord(f, 7)
	if rec.Position != 7 || rec.UUID != f.ID.String() {
		t.Errorf("record = %+v", rec)
	}
	back := fromRecord(rec)
	if back.ID != f.ID || !back.SameContent(f) || !back.State.Equal(f.State) || !back.Created.Equal(f.Created) {
		t.Errorf("fromRecord(toRecord(f)) = %+v, want %+v", back, f)
	}

	fresh := fromRecord(toRecord(NewFact("a", "b"), 0))
	if !fresh.State.Due.IsZero() || fresh.State.LastReview != nil || !fresh.Created.IsZero() {
		t.Errorf("unscheduled fact came back as %+v", fresh)
	}

	rec.UUID = "not-a-uuid"
	if got := fromRecord(rec).ID; got != uuid.Nil {
		t.Errorf("ID = %s, want uuid.Nil for a bad uuid", got)
	}
}
