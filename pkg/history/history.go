// Package history archives finished rounds
// The archive is write-only from the game's point of view. Nothing in it is
// ever loaded back into a running table
package history

import (
	"context"
	"time"

	"blackjack-server/pkg/blackjack"
)

// DefaultLimit is the number of rounds returned when no limit is given
const DefaultLimit = 25

// Round is an archived round
type Round struct {
	ID           int64                          `json:"id"`
	RoomID       string                         `json:"roomId"`
	Round        int                            `json:"round"`
	DeckHash     string                         `json:"deckHash"`
	Pot          int                            `json:"pot"`
	Forfeited    int                            `json:"forfeited"`
	Winners      []string                       `json:"winners"`
	Participants []*blackjack.ParticipantResult `json:"participants"`
	Ended        time.Time                      `json:"ended"`
}

// NewRound returns an archive record for the result
func NewRound(roomID string, result *blackjack.RoundResult) *Round {
	winners := make([]string, len(result.Winners))
	copy(winners, result.Winners)

	participants := make([]*blackjack.ParticipantResult, len(result.Participants))
	for i, p := range result.Participants {
		pCopy := *p
		participants[i] = &pCopy
	}

	return &Round{
		RoomID:       roomID,
		Round:        result.Round,
		DeckHash:     result.DeckHash,
		Pot:          result.Pot,
		Forfeited:    result.Forfeited,
		Winners:      winners,
		Participants: participants,
	}
}

// Recorder stores finished rounds
type Recorder interface {
	// RecordRound stores the round. ID and Ended are set on success
	RecordRound(ctx context.Context, round *Round) error

	// Rounds returns up to limit rounds for the room, newest first
	Rounds(ctx context.Context, roomID string, limit int) ([]*Round, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}

	return limit
}
