package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the decoys in memory
type MemoryStore struct {
	mux    sync.RWMutex
	decoys map[string]*Decoy
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		decoys: make(map[string]*Decoy),
	}
}

// Save creates or replaces the decoy
func (m *MemoryStore) Save(_ context.Context, d *Decoy) error {
	if err := d.validate(); err != nil {
		return err
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	m.decoys[d.ID] = d.clone()
	return nil
}

// Get returns the decoy or ErrNotFound
func (m *MemoryStore) Get(_ context.Context, id string) (*Decoy, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	d, ok := m.decoys[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d.clone(), nil
}

// ListByTarget returns the decoys of an operation target, oldest first
func (m *MemoryStore) ListByTarget(_ context.Context, targetID string) ([]*Decoy, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	var result []*Decoy
	for _, d := range m.decoys {
		if d.OperationTargetID == targetID {
			result = append(result, d.clone())
		}
	}
	sortDecoys(result)
	return result, nil
}

// Delete removes the decoy or returns ErrNotFound
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if _, ok := m.decoys[id]; !ok {
		return ErrNotFound
	}
	delete(m.decoys, id)
	return nil
}

// DeleteByTarget removes all the decoys of an operation target
func (m *MemoryStore) DeleteByTarget(_ context.Context, targetID string) (int, error) {
	m.mux.Lock()
	defer m.mux.Unlock()
	var removed int
	for id, d := range m.decoys {
		if d.OperationTargetID == targetID {
			delete(m.decoys, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op
func (*MemoryStore) Close(context.Context) error {
	return nil
}
