package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"

	"blackjack-server/internal/rng"
)

// ErrDeckEmpty is an error when Draw() is attempted and there are no more cards
var ErrDeckEmpty = errors.New("deck is empty")

// Size is the number of cards in a standard deck
const Size = 52

// Deck represents a playing deck
type Deck struct {
	Cards []*Card `json:"cards"`

	// gen is the random source used by Shuffle()
	// when nil, every shuffle seeds a fresh math/rand source from the clock
	gen rng.Generator
}

// New returns a new deck of cards.
// Important! this deck is unshuffled. You must call the Shuffle() method to shuffle the cards
func New() *Deck {
	d := &Deck{}
	d.buildDeck()
	return d
}

// NewShuffled returns a full deck shuffled with the generator
// A nil generator uses a clock-seeded source
func NewShuffled(gen rng.Generator) *Deck {
	d := New()
	d.gen = gen
	d.Shuffle()
	return d
}

// SetSeed will set a deterministic seed
// This should only be used by tests and simulations
func (d *Deck) SetSeed(seed int64) {
	d.gen = rng.NewSeeded(seed)
}

func (d *Deck) buildDeck() {
	cards := make([]*Card, 0, Size)
	for _, suit := range Suits {
		for rank := 2; rank <= Ace; rank++ {
			cards = append(cards, &Card{
				Rank: rank,
				Suit: suit,
			})
		}
	}

	d.Cards = cards
}

// Shuffle will rebuild and shuffle the full deck of cards (Fisher-Yates)
func (d *Deck) Shuffle() {
	// we always want to shuffle from a complete deck
	d.buildDeck()

	gen := d.gen
	if gen == nil {
		gen = rng.NewSeeded(0)
	}

	for j := len(d.Cards) - 1; j > 0; j-- {
		i := gen.Intn(j + 1)

		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// HashCode returns a SHA1 hash code of the deck.
func (d *Deck) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range d.Cards {
		_, _ = hash.Write([]byte(card.String()))
	}

	return hex.EncodeToString(hash.Sum(nil)[:])
}

// Draw will draw the next card
// If there are no more cards, an ErrDeckEmpty is returned along with a nil card.
func (d *Deck) Draw() (*Card, error) {
	if len(d.Cards) <= 0 {
		return nil, ErrDeckEmpty
	}

	card := d.Cards[0]
	d.Cards = d.Cards[1:]

	return card, nil
}

// CanDraw returns true if there are {want} cards left in the deck
func (d *Deck) CanDraw(want int) bool {
	return len(d.Cards) >= want
}

// CardsLeft returns the number of cards left in the deck
func (d *Deck) CardsLeft() int {
	return len(d.Cards)
}
