package deck

import (
	"time"

	"github.com/google/uuid"

	"flashgo/schedule"
	"flashgo/storage"
)

// Fact is a term/definition pair under review.
type Fact struct {
	ID         uuid.UUID      `json:"id" yaml:"-"`
	Term       string         `json:"term" yaml:"term"`
	Definition string         `json:"definition" yaml:"definition"`
	State      schedule.State `json:"state" yaml:"-"`
	Created    time.Time      `json:"created" yaml:"-"`
}

// NewFact returns an unscheduled fact; the deck assigns identity and state
// when it is added.
func NewFact(term, definition string) Fact {
	return Fact{Term: term, Definition: definition}
}

func (f Fact) String() string {
	return f.Term + " = " + f.Definition
}

func (f Fact) clone() Fact {
	out := f
	out.State = f.State.Clone()
	return out
}

// SameContent reports whether two facts hold the same term and definition.
func (f Fact) SameContent(o Fact) bool {
	return f.Term == o.Term && f.Definition == o.Definition
}

func toRecord(f Fact, position int) storage.FactRecord {
	rec := storage.FactRecord{
		UUID:       f.ID.String(),
		Position:   position,
		Term:       f.Term,
		Definition: f.Definition,
		Streak:     f.State.Streak,
		Penalties:  f.State.Penalties,
		Reviews:    f.State.Reviews,
		DueNS:      storage.EncodeTime(f.State.Due),
	}
	if f.State.LastReview != nil {
		rec.LastReviewNS = storage.EncodeTime(*f.State.LastReview)
	}
	if !f.Created.IsZero() {
		rec.CreatedNS = f.Created.UnixNano()
	}
	return rec
}

// fromRecord rebuilds a fact. An unparsable UUID yields uuid.Nil, which
// the store replaces with a fresh identity.
func fromRecord(rec storage.FactRecord) Fact {
	id, err := uuid.Parse(rec.UUID)
	if err != nil {
		id = uuid.Nil
	}
	f := Fact{
		ID:         id,
		Term:       rec.Term,
		Definition: rec.Definition,
		State: schedule.State{
			Streak:    rec.Streak,
			Penalties: rec.Penalties,
			Reviews:   rec.Reviews,
			Due:       storage.DecodeTime(rec.DueNS),
		},
	}
	if rec.LastReviewNS != nil {
		t := storage.DecodeTime(rec.LastReviewNS)
		f.State.LastReview = &t
	}
	if rec.CreatedNS != 0 {
		f.Created = time.Unix(0, rec.CreatedNS).UTC()
	}
	return f
}
