package schedule

import "time"

// State is the per-fact scheduling metadata. Its meaning belongs to the
// Policy that produced it; stores and controllers only carry it around.
type State struct {
	Streak     int        `json:"streak" yaml:"streak"`
	Penalties  int        `json:"penalties" yaml:"penalties"`
	Reviews    int        `json:"reviews" yaml:"reviews"`
	Due        time.Time  `json:"due" yaml:"due"`                 // zero: due immediately.
	LastReview *time.Time `json:"last_review" yaml:"last_review"` // nil before the first outcome.
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	if s.LastReview != nil {
		v := *s.LastReview
		out.LastReview = &v
	}
	return out
}

// Equal reports whether two states hold the same values, comparing
// instants with time.Time.Equal.
func (s State) Equal(o State) bool {
	if s.Streak != o.Streak || s.Penalties != o.Penalties || s.Reviews != o.Reviews {
		return false
	}
	if !s.Due.Equal(o.Due) {
		return false
	}
	switch {
	case s.LastReview == nil && o.LastReview == nil:
		return true
	case s.LastReview == nil || o.LastReview == nil:
		return false
	default:
		return s.LastReview.Equal(*o.LastReview)
	}
}

func (s *State) recordReview(now time.Time) {
	s.Reviews++
	s.LastReview = &now
}
