package schedule

import (
	"math/rand"
	"time"
)

const (
	SelectorInOrder = "in-order"
	SelectorRandom  = "random"
)

// InOrder picks the first eligible fact by insertion order. With nothing
// eligible it falls back to the fact due soonest, ties going to the
// earlier insertion.
type InOrder struct{}

func (InOrder) Name() string { return SelectorInOrder }

func (InOrder) Select(states []State, policy Policy, now time.Time) (int, bool, bool) {
	if len(states) == 0 {
		return 0, false, false
	}
	soonest := 0
	for i, s := range states {
		if policy.IsEligible(s, now) {
			return i, true, true
		}
		if s.Due.Before(states[soonest].Due) {
			soonest = i
		}
	}
	return soonest, false, true
}

// Random picks uniformly among eligible facts, or uniformly among all of
// them when none is eligible. A given seed replays the same picks for the
// same sequence of calls.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Name() string { return SelectorRandom }

func (r *Random) Select(states []State, policy Policy, now time.Time) (int, bool, bool) {
	if len(states) == 0 {
		return 0, false, false
	}
	eligible := make([]int, 0, len(states))
	for i, s := range states {
		if policy.IsEligible(s, now) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return r.rng.Intn(len(states)), false, true
	}
	return eligible[r.rng.Intn(len(eligible))], true, true
}
