package blackjack

import (
	"testing"

	"blackjack-server/pkg/deck"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		hand  string
		score int
		soft  bool
	}{
		{"2c,3d", 5, false},
		{"10c,13d", 20, false},
		{"11h,12s", 20, false},
		{"14c,13d", 21, true},
		{"14c,14d", 12, true},
		{"14c,14d,14h", 13, true},
		{"14c,14d,14h,14s", 14, true},
		{"14c,9d,5h", 15, false},
		{"14c,6d", 17, true},
		{"14c,6d,10h", 17, false},
		{"10c,5d,10h", 25, false},
		{"14c,14d,13h,13s", 22, false},
	}

	for _, test := range tests {
		hand := deck.CardsFromString(test.hand)
		assert.Equal(t, test.score, Score(hand), test.hand)
		assert.Equal(t, test.soft, IsSoft(hand), test.hand)
		assert.Equal(t, test.score > Blackjack, IsBust(hand), test.hand)
	}
}

func TestScore_orderInvariant(t *testing.T) {
	hands := []string{
		"14c,5d,14h,10s",
		"14c,14d,9h",
		"2c,14d,3h,14s,4d",
	}

	for _, h := range hands {
		cards := deck.CardsFromString(h)
		expects := Score(cards)

		reversed := make([]*deck.Card, len(cards))
		for i, c := range cards {
			reversed[len(cards)-1-i] = c
		}
		assert.Equal(t, expects, Score(reversed), h)

		rotated := append(append([]*deck.Card{}, cards[1:]...), cards[0])
		assert.Equal(t, expects, Score(rotated), h)
	}
}

func TestScore_empty(t *testing.T) {
	assert.Equal(t, 0, Score(nil))
	assert.False(t, IsSoft(nil))
}

func TestCardValue(t *testing.T) {
	a := assert.New(t)
	a.Equal(11, CardValue(deck.CardFromString("14s")))
	a.Equal(10, CardValue(deck.CardFromString("13s")))
	a.Equal(10, CardValue(deck.CardFromString("12s")))
	a.Equal(10, CardValue(deck.CardFromString("11s")))
	a.Equal(10, CardValue(deck.CardFromString("10s")))
	a.Equal(2, CardValue(deck.CardFromString("2s")))
}
