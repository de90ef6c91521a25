package storage

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process backend. It keeps deep copies of what it is
// given and can be told to fail, which makes it the test double for the
// persistence boundary.
type Memory struct {
	mu       sync.Mutex
	records  []FactRecord
	readErr  error
	writeErr error
	reads    int
	writes   int
}

func NewMemory() *Memory {
	return &Memory{}
}

// Seed replaces the stored records directly.
func (m *Memory) Seed(records []FactRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = cloneRecords(records)
}

// Records returns a copy of the stored records.
func (m *Memory) Records() []FactRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRecords(m.records)
}

// FailReads makes subsequent LoadAll calls return err; nil clears it.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErr = err
}

// FailWrites makes subsequent ReplaceAll calls return err; nil clears it.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Counts reports how many LoadAll and ReplaceAll calls were made.
func (m *Memory) Counts() (reads, writes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads, m.writes
}

func (m *Memory) LoadAll(_ context.Context) ([]FactRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	return cloneRecords(m.records), nil
}

func (m *Memory) ReplaceAll(_ context.Context, records []FactRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.records = cloneRecords(records)
	return nil
}

type MemoryAdapter struct {
	M *Memory
}

func (a *MemoryAdapter) Dialect() string { return DialectMemory }

func isMemory(conn any) bool {
	_, ok := conn.(*Memory)
	return ok
}

func newMemoryAdapter(conn any) (Adapter, error) {
	return &MemoryAdapter{M: conn.(*Memory)}, nil
}

type MemoryDriver struct {
	a *MemoryAdapter
}

func newMemoryDriver(adapter Adapter) (Driver, error) {
	a, ok := adapter.(*MemoryAdapter)
	if !ok {
		return nil, fmt.Errorf("memory driver expects *MemoryAdapter, got %T", adapter)
	}
	return &MemoryDriver{a: a}, nil
}

func (d *MemoryDriver) Dialect() string { return DialectMemory }

func (d *MemoryDriver) Migrate(_ context.Context) error { return nil }

func (d *MemoryDriver) Facts() FactRepo { return d.a.M }
