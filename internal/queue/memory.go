package queue

import (
	"context"
	"sync"
)

// Memory is a volatile backend for development and tests.
type Memory struct {
	mu    sync.Mutex
	lines []string
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Append(_ context.Context, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
	return nil
}

func (m *Memory) Lines(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...), nil
}

// Take returns a copy of the lines; commit drops that many from the front.
func (m *Memory) Take(_ context.Context) ([]string, func(context.Context) error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	taken := append([]string(nil), m.lines...)
	commit := func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		n := len(taken)
		if n > len(m.lines) {
			n = len(m.lines)
		}
		m.lines = append([]string(nil), m.lines[n:]...)
		return nil
	}
	return taken, commit, nil
}
