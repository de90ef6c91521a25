package deck

import (
	"context"

	"flashgo/storage"
)

// Storage is the persistence boundary. WriteDB must be atomic from the
// caller's view: after a reported failure the previous dataset stays.
type Storage interface {
	ReadDB(ctx context.Context) ([]Fact, error)
	WriteDB(ctx context.Context, facts []Fact) error
}

// Exiter is implemented by storages holding resources to release when the
// deck shuts down.
type Exiter interface {
	ExitApplication() error
}

// ManagedStorage serves the Storage contract from a storage.Manager.
// Migrations run before the first read or write.
type ManagedStorage struct {
	m     *storage.Manager
	built bool
}

func NewManagedStorage(m *storage.Manager) *ManagedStorage {
	return &ManagedStorage{m: m}
}

func (s *ManagedStorage) Manager() *storage.Manager { return s.m }

func (s *ManagedStorage) Dialect() string { return s.m.Dialect() }

func (s *ManagedStorage) repo(ctx context.Context) (storage.FactRepo, error) {
	if !s.built {
		if err := s.m.Build(ctx); err != nil {
			return nil, err
		}
		s.built = true
	}
	return s.m.Facts()
}

func (s *ManagedStorage) ReadDB(ctx context.Context) ([]Fact, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, storageError(s.Dialect(), "read", err)
	}
	recs, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, storageError(s.Dialect(), "read", err)
	}
	facts := make([]Fact, len(recs))
	for i, rec := range recs {
		facts[i] = fromRecord(rec)
	}
	return facts, nil
}

func (s *ManagedStorage) WriteDB(ctx context.Context, facts []Fact) error {
	repo, err := s.repo(ctx)
	if err != nil {
		return storageError(s.Dialect(), "write", err)
	}
	recs := make([]storage.FactRecord, len(facts))
	for i, f := range facts {
		recs[i] = toRecord(f, i)
	}
	if err := repo.ReplaceAll(ctx, recs); err != nil {
		return storageError(s.Dialect(), "write", err)
	}
	return nil
}

// ExitApplication closes a connection the manager opened itself.
func (s *ManagedStorage) ExitApplication() error {
	if err := s.m.Close(); err != nil {
		return storageError(s.Dialect(), "exit", err)
	}
	return nil
}
