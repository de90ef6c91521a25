package schedule

import (
	"fmt"
	"time"
)

const (
	PolicyGraduated = "graduated"
	PolicyLeitner   = "leitner"
)

// DefaultIntervals is the ladder walked by consecutive correct answers.
var DefaultIntervals = []time.Duration{
	10 * time.Minute,
	time.Hour,
	8 * time.Hour,
	24 * time.Hour,
	3 * 24 * time.Hour,
	7 * 24 * time.Hour,
	14 * 24 * time.Hour,
	30 * 24 * time.Hour,
	90 * 24 * time.Hour,
}

// Graduated is the default policy. A correct answer climbs one rung of the
// interval ladder, an incorrect one drops the fact back to due-now and
// counts a penalty.
type Graduated struct {
	intervals []time.Duration
}

// NewGraduated validates intervals; nil selects DefaultIntervals.
func NewGraduated(intervals []time.Duration) (*Graduated, error) {
	if intervals == nil {
		intervals = DefaultIntervals
	}
	if len(intervals) == 0 {
		return nil, fmt.Errorf("%w: graduated policy needs at least one interval", ErrInvalidConfig)
	}
	for i, d := range intervals {
		if d <= 0 {
			return nil, fmt.Errorf("%w: interval[%d] = %s must be positive", ErrInvalidConfig, i, d)
		}
	}
	out := make([]time.Duration, len(intervals))
	copy(out, intervals)
	return &Graduated{intervals: out}, nil
}

func (g *Graduated) Name() string { return PolicyGraduated }

func (g *Graduated) Initial() State { return State{} }

func (g *Graduated) IsEligible(s State, now time.Time) bool {
	return !now.Before(s.Due)
}

func (g *Graduated) ApplyOutcome(s State, now time.Time, correct bool) State {
	out := s.Clone()
	out.recordReview(now)
	if !correct {
		out.Streak = 0
		out.Penalties++
		out.Due = now
		return out
	}
	out.Streak++
	out.Due = now.Add(g.interval(out.Streak))
	return out
}

// interval returns the wait after the streak-th consecutive correct answer.
func (g *Graduated) interval(streak int) time.Duration {
	rung := min(streak, len(g.intervals)) - 1
	return g.intervals[max(rung, 0)]
}
