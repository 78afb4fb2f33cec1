package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in process memory. Everything is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	scores []ScoreRecord
	stats  []PlayerStatsRecord
	closed bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) AddScore(ctx context.Context, rec ScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	m.scores = append(m.scores, rec)
	if len(m.scores) > MaxScores {
		sortScores(m.scores)
		m.scores = m.scores[:MaxScores]
	}
	return nil
}

func (m *MemoryStore) TopScores(ctx context.Context, limit int) ([]ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	out := make([]ScoreRecord, len(m.scores))
	copy(out, m.scores)
	sortScores(out)
	return out[:clampLimit(limit, len(out))], nil
}

func (m *MemoryStore) ClearScores(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	m.scores = nil
	return nil
}

func (m *MemoryStore) AddPlayerStats(ctx context.Context, rec PlayerStatsRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	m.stats = append(m.stats, rec)
	if n := len(m.stats); n > MaxPlayerStats {
		m.stats = slices.Clone(m.stats[n-MaxPlayerStats:])
	}
	return nil
}

func (m *MemoryStore) RecentPlayerStats(ctx context.Context, limit int) ([]PlayerStatsRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	out := make([]PlayerStatsRecord, len(m.stats))
	copy(out, m.stats)
	slices.Reverse(out)
	sortStats(out)
	return out[:clampLimit(limit, len(out))], nil
}

// Close marks the store closed. Later calls fail with ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)
