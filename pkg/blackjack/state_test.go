package blackjack

import (
	"testing"

	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/snapshot"

	"github.com/stretchr/testify/assert"
)

func TestEngine_ProjectState(t *testing.T) {
	a := assert.New(t)

	// a: 14,5 = soft 16, b: 10,8 = 18
	e := newTestEngine(t, "14c,10d,5c,8d,13h", "a", "b")
	state := e.ProjectState()
	a.Len(state, 2)

	a.Equal(ParticipantState{
		ID:            "a",
		DisplayName:   "Player a",
		Hand:          []deck.Card{{Rank: deck.Ace, Suit: deck.Clubs}, {Rank: 5, Suit: deck.Clubs}},
		Score:         16,
		IsSoft:        true,
		IsCurrentTurn: true,
		ChipBalance:   90,
		CurrentBet:    10,
	}, state[0])
	a.False(state[1].IsCurrentTurn)
	a.Equal(18, state[1].Score)

	// the projection is a copy
	state[0].Hand[0].Rank = 2
	state[0].ChipBalance = 1000
	a.Equal(deck.Ace, e.participants[0].hand[0].Rank)
	a.Equal(90, e.participants[0].balance)

	_, err := e.RequestHit("a")
	a.NoError(err)
	state = e.ProjectState()
	a.Equal(16, state[0].Score)
	a.False(state[0].IsSoft)
	a.Len(state[0].Hand, 3)

	a.NoError(e.RequestStand("a"))
	a.NoError(e.RequestStand("b"))
	for _, s := range e.ProjectState() {
		a.True(s.IsRoundOver)
		a.False(s.IsCurrentTurn)
	}
}

func TestEngine_GetPlayerState_snapshot(t *testing.T) {
	e := newTestEngine(t, "14c,10d,5c,8d,13h", "a", "b")

	res, err := e.GetPlayerState("a")
	assert.NoError(t, err)
	snapshot.ValidateSnapshot(t, res, 0)

	_, _ = e.RequestHit("a")
	_ = e.RequestStand("a")
	_ = e.RequestStand("b")

	res, err = e.GetPlayerState("b")
	assert.NoError(t, err)
	snapshot.ValidateSnapshot(t, res, 0)
}
