package mixer

import (
	"context"
	"slices"
	"sync"
)

// DefaultMemoryRange is a typical Windows endpoint range in decibels.
var DefaultMemoryRange = Range{Min: -65.25, Max: 0, Step: 0.03125}

// Memory is an in-memory Endpoint that records every write.
type Memory struct {
	lock   sync.Mutex
	rng    Range
	level  float64
	writes []float64
	closed bool
}

var _ Endpoint = (*Memory)(nil)

// NewMemory returns an in-memory endpoint at the maximum level.
func NewMemory(r Range) *Memory {
	return &Memory{rng: r, level: r.Max}
}

func (m *Memory) VolumeRange(_ context.Context) (Range, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return Range{}, ErrClosed
	}
	return m.rng, nil
}

func (m *Memory) SetMasterVolumeLevel(_ context.Context, level float64) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.level = level
	m.writes = append(m.writes, level)
	return nil
}

// Level returns the current level.
func (m *Memory) Level() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.level
}

// Writes returns the levels written so far.
func (m *Memory) Writes() []float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return slices.Clone(m.writes)
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.closed
}

func (m *Memory) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closed = true
	return nil
}
