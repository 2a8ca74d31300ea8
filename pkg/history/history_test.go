package history

import (
	"context"
	"testing"

	"blackjack-server/pkg/blackjack"

	"github.com/stretchr/testify/assert"
)

func testResult(round int) *blackjack.RoundResult {
	return &blackjack.RoundResult{
		Round:    round,
		DeckHash: "abc",
		Pot:      25,
		Share:    12,
		Winners:  []string{"a", "b"},
		Participants: []*blackjack.ParticipantResult{
			{ID: "a", DisplayName: "A", Hand: "13c,12c", Score: 20, Bet: 5, Won: 12, Balance: 12},
			{ID: "b", DisplayName: "B", Hand: "10d,11d", Score: 20, Bet: 10, Won: 12, Balance: 102},
			{ID: "c", DisplayName: "C", Hand: "10h,2h,13h", Score: 22, Bet: 10, Balance: 90, Busted: true},
		},
		Forfeited: 1,
	}
}

func TestNewRound(t *testing.T) {
	a := assert.New(t)

	result := testResult(3)
	round := NewRound("room1", result)
	a.Equal("room1", round.RoomID)
	a.Equal(3, round.Round)
	a.Equal("abc", round.DeckHash)
	a.Equal(25, round.Pot)
	a.Equal(1, round.Forfeited)
	a.Equal([]string{"a", "b"}, round.Winners)
	a.Len(round.Participants, 3)

	// the archive record does not share memory with the result
	result.Winners[0] = "z"
	result.Participants[0].Balance = 1000
	a.Equal("a", round.Winners[0])
	a.Equal(12, round.Participants[0].Balance)
}

func TestMemoryRecorder(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	m := NewMemoryRecorder(3)
	for i := 1; i <= 5; i++ {
		a.NoError(m.RecordRound(ctx, NewRound("room1", testResult(i))))
	}
	a.NoError(m.RecordRound(ctx, NewRound("room2", testResult(1))))

	rounds, err := m.Rounds(ctx, "room1", 0)
	a.NoError(err)
	a.Len(rounds, 3)
	a.Equal(5, rounds[0].Round)
	a.Equal(3, rounds[2].Round)
	a.Equal(int64(5), rounds[0].ID)
	a.False(rounds[0].Ended.IsZero())

	rounds, err = m.Rounds(ctx, "room1", 2)
	a.NoError(err)
	a.Len(rounds, 2)

	rounds, err = m.Rounds(ctx, "room2", 10)
	a.NoError(err)
	a.Len(rounds, 1)
	a.Equal(int64(6), rounds[0].ID)

	m.Forget("room1")
	rounds, err = m.Rounds(ctx, "room1", 10)
	a.NoError(err)
	a.Empty(rounds)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	a.Equal(context.Canceled, m.RecordRound(cancelled, NewRound("room1", testResult(1))))
}
