package deck

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"flashgo/schedule"
)

// FactStore is the ordered in-memory collection. Positions follow
// insertion order; identities are unique.
type FactStore struct {
	facts []Fact
	ids   map[uuid.UUID]struct{}
}

func NewFactStore() *FactStore {
	return &FactStore{ids: make(map[uuid.UUID]struct{})}
}

// Add appends f and returns its position. A missing or already used ID is
// replaced with a fresh one.
func (s *FactStore) Add(f Fact) int {
	f = f.clone()
	if _, taken := s.ids[f.ID]; taken || f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	s.ids[f.ID] = struct{}{}
	s.facts = append(s.facts, f)
	return len(s.facts) - 1
}

func (s *FactStore) AddMany(facts []Fact) {
	for _, f := range facts {
		s.Add(f)
	}
}

// RemoveAt deletes and returns the fact at position i. The store is left
// untouched when i is out of range.
func (s *FactStore) RemoveAt(i int) (Fact, error) {
	if i < 0 || i >= len(s.facts) {
		return Fact{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.facts))
	}
	f := s.facts[i]
	s.facts = append(s.facts[:i], s.facts[i+1:]...)
	delete(s.ids, f.ID)
	return f, nil
}

func (s *FactStore) At(i int) (Fact, error) {
	if i < 0 || i >= len(s.facts) {
		return Fact{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.facts))
	}
	return s.facts[i].clone(), nil
}

// IndexOf returns the position of the fact with id, or -1.
func (s *FactStore) IndexOf(id uuid.UUID) int {
	if _, ok := s.ids[id]; !ok {
		return -1
	}
	for i, f := range s.facts {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *FactStore) Len() int { return len(s.facts) }

// All returns an ordered copy of every fact.
func (s *FactStore) All() []Fact {
	out := make([]Fact, len(s.facts))
	for i, f := range s.facts {
		out[i] = f.clone()
	}
	return out
}

// Eligible returns an ordered copy of the facts due at now.
func (s *FactStore) Eligible(policy schedule.Policy, now time.Time) []Fact {
	var out []Fact
	for _, f := range s.facts {
		if policy.IsEligible(f.State, now) {
			out = append(out, f.clone())
		}
	}
	return out
}

func (s *FactStore) CountEligible(policy schedule.Policy, now time.Time) int {
	n := 0
	for _, f := range s.facts {
		if policy.IsEligible(f.State, now) {
			n++
		}
	}
	return n
}

// Clear empties the store.
func (s *FactStore) Clear() {
	s.facts = nil
	s.ids = make(map[uuid.UUID]struct{})
}

// Replace swaps the whole content for facts.
func (s *FactStore) Replace(facts []Fact) {
	s.Clear()
	s.AddMany(facts)
}

func (s *FactStore) states() []schedule.State {
	out := make([]schedule.State, len(s.facts))
	for i, f := range s.facts {
		out[i] = f.State
	}
	return out
}

func (s *FactStore) setState(i int, st schedule.State) {
	s.facts[i].State = st
}
