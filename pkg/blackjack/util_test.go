package blackjack

import (
	"testing"

	"blackjack-server/pkg/deck"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func seats(ids ...string) []Seat {
	s := make([]Seat, len(ids))
	for i, id := range ids {
		s[i] = Seat{ID: id, DisplayName: "Player " + id}
	}

	return s
}

// stackDeck makes every new round deal from cards, front first
func stackDeck(e *Engine, cards string) {
	e.newDeck = func() *deck.Deck {
		return &deck.Deck{Cards: deck.CardsFromString(cards)}
	}
}

// newTestEngine deals a round from a stacked deck
// Cards are dealt one at a time around the table, twice, then hits are drawn
func newTestEngine(t *testing.T, cards string, ids ...string) *Engine {
	t.Helper()

	e, err := NewEngine(logrus.StandardLogger(), DefaultOptions())
	require.NoError(t, err)

	stackDeck(e, cards)
	require.NoError(t, e.StartRound(seats(ids...)))
	return e
}

func totalChips(e *Engine) int {
	total := 0
	for _, p := range e.participants {
		total += p.balance
	}

	return total
}
