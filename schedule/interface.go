package schedule

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConfig = errors.New("schedule: invalid config")

// Policy decides when a fact is due and how a review outcome moves it.
// Implementations must be pure: the input State is never mutated.
type Policy interface {
	// Initial returns the state assigned to a freshly added fact.
	Initial() State

	// IsEligible reports whether a fact in state s is due at now.
	IsEligible(s State, now time.Time) bool

	// ApplyOutcome returns the state after an outcome recorded at now.
	ApplyOutcome(s State, now time.Time, correct bool) State

	// Name returns the policy name used in configuration.
	Name() string
}

// Selector picks the next fact to present out of states, given in
// insertion order. ok is false only when states is empty.
type Selector interface {
	Select(states []State, policy Policy, now time.Time) (index int, eligible bool, ok bool)

	Name() string
}

// Config selects and parameterizes a Policy and a Selector.
type Config struct {
	Policy    string          `yaml:"policy"`    // "graduated" (default), "leitner"
	Intervals []time.Duration `yaml:"intervals"` // graduated ladder; nil -> DefaultIntervals
	Boxes     int             `yaml:"boxes"`     // leitner box count; zero -> 5
	Base      time.Duration   `yaml:"base"`      // leitner first-box wait; zero -> 24h
	Selector  string          `yaml:"selector"`  // "in-order" (default), "random"
	Seed      int64           `yaml:"seed"`      // random selector seed
}

// NewPolicy builds the policy named by config.
func NewPolicy(config Config) (Policy, error) {
	switch config.Policy {
	case "", PolicyGraduated:
		return NewGraduated(config.Intervals)
	case PolicyLeitner:
		return NewLeitner(config.Boxes, config.Base)
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, config.Policy)
	}
}

// NewSelector builds the selector named by config.
func NewSelector(config Config) (Selector, error) {
	switch config.Selector {
	case "", SelectorInOrder:
		return InOrder{}, nil
	case SelectorRandom:
		return NewRandom(config.Seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown selector %q", ErrInvalidConfig, config.Selector)
	}
}
