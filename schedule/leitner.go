package schedule

import (
	"fmt"
	"time"
)

const (
	defaultBoxes = 5
	defaultBase  = 24 * time.Hour
	maxWait      = 100 * 365 * 24 * time.Hour
)

// Leitner models the box system: box n waits Base * 2^(n-1), a miss sends
// the fact back to box 0. Streak doubles as the box number.
type Leitner struct {
	boxes int
	base  time.Duration
}

// NewLeitner validates the box layout; zero values select the defaults.
func NewLeitner(boxes int, base time.Duration) (*Leitner, error) {
	if boxes == 0 {
		boxes = defaultBoxes
	}
	if base == 0 {
		base = defaultBase
	}
	if boxes < 0 {
		return nil, fmt.Errorf("%w: leitner boxes %d must be positive", ErrInvalidConfig, boxes)
	}
	if base <= 0 {
		return nil, fmt.Errorf("%w: leitner base %s must be positive", ErrInvalidConfig, base)
	}
	return &Leitner{boxes: boxes, base: base}, nil
}

func (l *Leitner) Name() string { return PolicyLeitner }

func (l *Leitner) Initial() State { return State{} }

func (l *Leitner) IsEligible(s State, now time.Time) bool {
	return !now.Before(s.Due)
}

func (l *Leitner) ApplyOutcome(s State, now time.Time, correct bool) State {
	out := s.Clone()
	out.recordReview(now)
	if !correct {
		out.Streak = 0
		out.Penalties++
		out.Due = now
		return out
	}
	out.Streak = min(out.Streak+1, l.boxes)
	out.Due = now.Add(l.wait(out.Streak))
	return out
}

// wait doubles base once per box above the first, saturating at maxWait.
func (l *Leitner) wait(box int) time.Duration {
	d := l.base
	for i := 1; i < box; i++ {
		if d > maxWait/2 {
			return maxWait
		}
		d *= 2
	}
	return d
}
