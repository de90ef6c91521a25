package deck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"flashgo/schedule"
	"flashgo/storage"
)

// Deck is the session controller. It owns the fact store, the scheduling
// policy, the selector and a storage handle. A Deck is driven by a single
// caller and is not safe for concurrent use.
type Deck struct {
	Config *Config

	store    *FactStore
	policy   schedule.Policy
	selector schedule.Selector
	storage  Storage
	clock    func() time.Time
	logger   *slog.Logger

	// current is nil while idle.
	current *outstanding
	closed  bool
	optErr  error
}

type outstanding struct {
	id       uuid.UUID
	eligible bool
}

type Option func(*Deck)

// New builds a Deck. Unset pieces come from Config.Schedule; a deck with no
// storage persists to an in-process storage.Memory.
func New(opts ...Option) (*Deck, error) {
	d := &Deck{
		Config: newConfig(),
		store:  NewFactStore(),
		clock:  time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(d)
	}
	if d.optErr != nil {
		return nil, d.optErr
	}

	// Defaults
	if d.policy == nil {
		p, err := schedule.NewPolicy(d.Config.Schedule)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		d.policy = p
	}
	if d.selector == nil {
		s, err := schedule.NewSelector(d.Config.Schedule)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		d.selector = s
	}
	if d.storage == nil {
		m := storage.NewManager()
		if err := m.Start(storage.NewMemory()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		d.storage = NewManagedStorage(m)
	}

	d.logger.Debug("deck ready",
		"policy", d.policy.Name(),
		"selector", d.selector.Name(),
		"dialect", d.dialect(),
	)
	return d, nil
}

func WithStorage(s Storage) Option {
	return func(d *Deck) {
		d.storage = s
	}
}

// WithStorageConn persists through any connection the storage registry
// knows: *sql.DB, *mongo.Database, storage.FilePath or *storage.Memory.
func WithStorageConn(conn any) Option {
	return func(d *Deck) {
		m := storage.NewManager()
		if err := m.Start(conn); err != nil {
			d.optErr = fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			return
		}
		d.storage = NewManagedStorage(m)
	}
}

func WithPolicy(p schedule.Policy) Option {
	return func(d *Deck) {
		d.policy = p
	}
}

func WithSelector(s schedule.Selector) Option {
	return func(d *Deck) {
		d.selector = s
	}
}

func WithScheduleConfig(c schedule.Config) Option {
	return func(d *Deck) {
		d.Config.Schedule = c
	}
}

// WithClock replaces time.Now as the source of "now".
func WithClock(clock func() time.Time) Option {
	return func(d *Deck) {
		if clock != nil {
			d.clock = clock
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Deck) {
		if l != nil {
			d.logger = l
		}
	}
}

func (d *Deck) Policy() schedule.Policy     { return d.policy }
func (d *Deck) Selector() schedule.Selector { return d.selector }
func (d *Deck) Storage() Storage            { return d.storage }

func (d *Deck) dialect() string {
	if ds, ok := d.storage.(interface{ Dialect() string }); ok {
		return ds.Dialect()
	}
	return ""
}

// NextFact selects the fact to present and makes it outstanding. eligible
// is false when nothing was due and the selector fell back. ok is false
// only for an empty deck. Calling NextFact while a fact is outstanding
// abandons that fact without recording anything. After Shutdown ok is
// always false.
func (d *Deck) NextFact() (f Fact, eligible bool, ok bool) {
	pick, ok := d.Pick()
	if !ok {
		return Fact{}, false, false
	}
	return Collapse(pick), pick.IsLeft(), true
}

// Pick is NextFact returning a Left for an eligible fact and a Right for a
// fallback one.
func (d *Deck) Pick() (Either[Fact, Fact], bool) {
	if d.closed {
		return Either[Fact, Fact]{}, false
	}
	if d.current != nil {
		d.logger.Debug("abandoning outstanding fact", "id", d.current.id)
	}
	d.current = nil

	i, eligible, ok := d.selector.Select(d.store.states(), d.policy, d.clock())
	if !ok {
		return Either[Fact, Fact]{}, false
	}
	f, err := d.store.At(i)
	if err != nil {
		// A selector returned a position outside the input it was given.
		d.logger.Warn("selector returned invalid index", "selector", d.selector.Name(), "index", i)
		return Either[Fact, Fact]{}, false
	}

	d.current = &outstanding{id: f.ID, eligible: eligible}
	d.logger.Debug("fact selected", "id", f.ID, "eligible", eligible)
	if eligible {
		return Left[Fact, Fact](f), true
	}
	return Right[Fact, Fact](f), true
}

// Current returns the outstanding fact, if any.
func (d *Deck) Current() (f Fact, eligible bool, ok bool) {
	if d.current == nil {
		return Fact{}, false, false
	}
	i := d.store.IndexOf(d.current.id)
	if i < 0 {
		return Fact{}, false, false
	}
	f, _ = d.store.At(i)
	return f, d.current.eligible, true
}

// FinishCurrent resolves the outstanding fact. A nil outcome abandons it
// without touching its schedule. Calling FinishCurrent with nothing
// outstanding returns ErrNoOutstandingFact and changes nothing.
func (d *Deck) FinishCurrent(outcome *bool) error {
	if d.closed {
		return ErrShutdown
	}
	if d.current == nil {
		return ErrNoOutstandingFact
	}
	cur := d.current
	d.current = nil

	if outcome == nil {
		d.logger.Debug("fact abandoned", "id", cur.id)
		return nil
	}

	i := d.store.IndexOf(cur.id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFactNotFound, cur.id)
	}
	now := d.clock()
	f := d.store.facts[i]
	next := d.policy.ApplyOutcome(f.State, now, *outcome)
	d.store.setState(i, next)

	d.logger.Debug("outcome recorded",
		"id", cur.id,
		"correct", *outcome,
		"streak", next.Streak,
		"due", next.Due,
	)
	return nil
}

func (d *Deck) Correct() error {
	ok := true
	return d.FinishCurrent(&ok)
}

func (d *Deck) Incorrect() error {
	ok := false
	return d.FinishCurrent(&ok)
}

func (d *Deck) Abandon() error {
	return d.FinishCurrent(nil)
}

func (d *Deck) CountEligibleNow() int {
	return d.store.CountEligible(d.policy, d.clock())
}

func (d *Deck) EligibleNow() []Fact {
	return d.store.Eligible(d.policy, d.clock())
}

func (d *Deck) All() []Fact {
	return d.store.All()
}

func (d *Deck) Len() int { return d.store.Len() }

// AddFact adds a fresh, immediately schedulable fact and returns its
// position, or -1 once the deck is shut down.
func (d *Deck) AddFact(term, definition string) int {
	if d.closed {
		return -1
	}
	return d.store.Add(d.fresh(NewFact(term, definition)))
}

// AddFacts adds facts in order, giving each a new identity and a fresh
// schedule. De-duplication is up to the caller.
func (d *Deck) AddFacts(facts []Fact) {
	if d.closed {
		return
	}
	for _, f := range facts {
		d.store.Add(d.fresh(f))
	}
}

func (d *Deck) fresh(f Fact) Fact {
	f.ID = uuid.New()
	f.State = d.policy.Initial()
	f.Created = d.clock()
	return f
}

// DeleteAt removes the fact at position i. A stale index returns
// ErrIndexOutOfRange and leaves the deck as it was.
func (d *Deck) DeleteAt(i int) error {
	if d.closed {
		return ErrShutdown
	}
	f, err := d.store.RemoveAt(i)
	if err != nil {
		return err
	}
	d.dropCurrent(f.ID)
	return nil
}

func (d *Deck) DeleteByID(id uuid.UUID) error {
	if d.closed {
		return ErrShutdown
	}
	i := d.store.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFactNotFound, id)
	}
	return d.DeleteAt(i)
}

func (d *Deck) dropCurrent(id uuid.UUID) {
	if d.current != nil && d.current.id == id {
		d.current = nil
	}
}

// Clear empties the deck in memory. Storage keeps its content until the
// next Save. It does nothing once the deck is shut down.
func (d *Deck) Clear() {
	if d.closed {
		return
	}
	d.store.Clear()
	d.current = nil
}

// Load replaces the whole deck with what storage holds. On failure the
// deck is unchanged.
func (d *Deck) Load(ctx context.Context) error {
	if d.closed {
		return ErrShutdown
	}
	facts, err := d.storage.ReadDB(ctx)
	if err != nil {
		err = storageError(d.dialect(), "read", err)
		d.logger.Warn("load failed", "dialect", d.dialect(), "error", err)
		return err
	}
	d.store.Replace(facts)
	d.current = nil
	d.logger.Debug("deck loaded", "dialect", d.dialect(), "facts", d.store.Len())
	return nil
}

// Save writes the whole deck to storage. Failures are returned as
// *StorageError and are not retried.
func (d *Deck) Save(ctx context.Context) error {
	if d.closed {
		return ErrShutdown
	}
	if err := d.storage.WriteDB(ctx, d.store.All()); err != nil {
		err = storageError(d.dialect(), "write", err)
		d.logger.Warn("save failed", "dialect", d.dialect(), "error", err)
		return err
	}
	d.logger.Debug("deck saved", "dialect", d.dialect(), "facts", d.store.Len())
	return nil
}

// Shutdown runs the storage exit hook once. It does not save. Later calls
// return nil. A shut down deck is read-only: Load, Save, FinishCurrent and
// the Delete methods return ErrShutdown, Pick finds nothing, and AddFact,
// AddFacts and Clear leave the facts as they were.
func (d *Deck) Shutdown() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.current = nil
	if ex, ok := d.storage.(Exiter); ok {
		if err := ex.ExitApplication(); err != nil {
			return storageError(d.dialect(), "exit", err)
		}
	}
	d.logger.Debug("deck shut down")
	return nil
}

// Stats summarizes the deck at an instant.
type Stats struct {
	Total     int
	Eligible  int
	Learned   int // facts with a current streak
	Penalties int // sum over all facts
}

func (d *Deck) Stats() Stats {
	now := d.clock()
	st := Stats{Total: d.store.Len()}
	for _, f := range d.store.facts {
		if d.policy.IsEligible(f.State, now) {
			st.Eligible++
		}
		if f.State.Streak > 0 {
			st.Learned++
		}
		st.Penalties += f.State.Penalties
	}
	return st
}

// IsShutdown reports whether Shutdown has run.
func (d *Deck) IsShutdown() bool { return d.closed }
