package blackjack

import "blackjack-server/pkg/deck"

// Blackjack is the best possible score
const Blackjack = 21

// CardValue returns the value of a card with an ace counted high (11)
func CardValue(c *deck.Card) int {
	switch {
	case c.Rank == deck.Ace:
		return 11
	case c.IsFace():
		return 10
	default:
		return c.Rank
	}
}

// Score returns the best total for the hand
// Aces count as 11 and are downgraded to 1, one at a time, while the total is over 21.
// The result can still be over 21, in which case the hand is bust
func Score(hand []*deck.Card) int {
	score, _ := scoreWithSoftAces(hand)
	return score
}

// IsBust returns true if the hand is over 21 after all aces are downgraded
func IsBust(hand []*deck.Card) bool {
	return Score(hand) > Blackjack
}

// IsSoft returns true if an ace in the hand is still counted as 11
func IsSoft(hand []*deck.Card) bool {
	_, softAces := scoreWithSoftAces(hand)
	return softAces > 0
}

func scoreWithSoftAces(hand []*deck.Card) (int, int) {
	score := 0
	aces := 0
	for _, card := range hand {
		score += CardValue(card)
		if card.Rank == deck.Ace {
			aces++
		}
	}

	for score > Blackjack && aces > 0 {
		score -= 10
		aces--
	}

	return score, aces
}
