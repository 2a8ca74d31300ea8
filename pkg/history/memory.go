package history

import (
	"context"
	"sync"
	"time"
)

// MemoryRecorder keeps rounds in memory
// It is used when no database is configured
type MemoryRecorder struct {
	mu     sync.RWMutex
	nextID int64
	rounds map[string][]*Round
	// maxPerRoom drops the oldest rounds of a room once exceeded, 0 keeps everything
	maxPerRoom int
}

// NewMemoryRecorder returns a recorder that keeps at most maxPerRoom rounds for each room
func NewMemoryRecorder(maxPerRoom int) *MemoryRecorder {
	return &MemoryRecorder{
		rounds:     make(map[string][]*Round),
		maxPerRoom: maxPerRoom,
	}
}

// RecordRound stores the round
func (m *MemoryRecorder) RecordRound(ctx context.Context, round *Round) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	round.ID = m.nextID
	round.Ended = time.Now().UTC()

	rounds := append(m.rounds[round.RoomID], round)
	if m.maxPerRoom > 0 && len(rounds) > m.maxPerRoom {
		rounds = rounds[len(rounds)-m.maxPerRoom:]
	}

	m.rounds[round.RoomID] = rounds
	return nil
}

// Rounds returns the newest rounds of the room
func (m *MemoryRecorder) Rounds(ctx context.Context, roomID string, limit int) ([]*Round, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit = normalizeLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.rounds[roomID]
	rounds := make([]*Round, 0, limit)
	for i := len(stored) - 1; i >= 0 && len(rounds) < limit; i-- {
		rounds = append(rounds, stored[i])
	}

	return rounds, nil
}

// Forget drops every round of the room
func (m *MemoryRecorder) Forget(roomID string) {
	m.mu.Lock()
	delete(m.rounds, roomID)
	m.mu.Unlock()
}
