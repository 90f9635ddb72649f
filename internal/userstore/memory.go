package userstore

import (
	"context"
	"sync"

	"github.com/thanhdat24/code-learning/internal/progress"
)

// Memory is a process-local Repository.
type Memory struct {
	mu      sync.RWMutex
	records map[string]progress.Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]progress.Record)}
}

func (m *Memory) Find(_ context.Context, username string) (*progress.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[username]
	if !ok {
		return nil, nil
	}
	c := r.Clone()
	return &c, nil
}

func (m *Memory) Upsert(_ context.Context, r progress.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.Username] = r.Clone()
	return nil
}
