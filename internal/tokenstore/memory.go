package tokenstore

import (
	"context"
	"sync"
)

type Memory struct {
	mu    sync.RWMutex
	token string
	set   bool
}

func NewMemory() *Memory { return &Memory{} }

// NewMemoryWith returns a store that already holds token.
func NewMemoryWith(token string) *Memory {
	return &Memory{token: token, set: true}
}

func (m *Memory) Get(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.set, nil
}

func (m *Memory) Set(_ context.Context, token string) error {
	m.mu.Lock()
	m.token, m.set = token, true
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.token, m.set = "", false
	m.mu.Unlock()
	return nil
}
