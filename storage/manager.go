package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrNoAdapter = errors.New("no adapter registered for connection type")
	ErrNoDriver  = errors.New("storage not started")
)

type Manager struct {
	adapter Adapter
	driver  Driver

	// closer is set when the manager opened the connection itself.
	closer io.Closer
}

func NewManager() *Manager {
	return &Manager{}
}

// Start resolves the adapter and driver for conn. A nil conn leaves the
// manager unstarted.
func (m *Manager) Start(conn any) error {
	if conn == nil {
		return nil
	}
	a, err := RegistryAdapter(conn)
	if err != nil {
		return err
	}
	d, err := RegistryDriver(a)
	if err != nil {
		return err
	}
	m.adapter = a
	m.driver = d
	return nil
}

func (m *Manager) Adapter() Adapter { return m.adapter }
func (m *Manager) Driver() Driver   { return m.driver }
func (m *Manager) Dialect() string {
	if m.adapter == nil {
		return ""
	}
	return m.adapter.Dialect()
}

// Build runs pending migrations.
func (m *Manager) Build(ctx context.Context) error {
	if m.driver == nil {
		return nil
	}
	return m.driver.Migrate(ctx)
}

// Facts returns the fact repository of the started driver.
func (m *Manager) Facts() (FactRepo, error) {
	if m.driver == nil {
		return nil, ErrNoDriver
	}
	repos, ok := m.driver.(Repos)
	if !ok {
		return nil, fmt.Errorf("driver %s does not implement Repos", m.driver.Dialect())
	}
	return repos.Facts(), nil
}

// Close releases a connection opened by Open. Connections passed to Start
// stay owned by the caller. Close is safe to call more than once.
func (m *Manager) Close() error {
	if m.closer == nil {
		return nil
	}
	c := m.closer
	m.closer = nil
	return c.Close()
}
