package blackjack

import "blackjack-server/pkg/deck"

// Seat is a roster entry handed to the engine by the room
type Seat struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// Participant is the game record of a seated player
// The chip balance survives between rounds, everything else is reset on the deal
type Participant struct {
	ID          string
	DisplayName string

	hand    deck.Hand
	balance int
	bet     int
	won     int
	busted  bool
	held    bool
}

// NewParticipant returns a new participant
func NewParticipant(id, displayName string, balance int) *Participant {
	return &Participant{
		ID:          id,
		DisplayName: displayName,
		hand:        make(deck.Hand, 0, 5),
		balance:     balance,
	}
}

// Hand returns a shallow copy of the participant's hand
func (p *Participant) Hand() deck.Hand {
	return p.hand.Clone()
}

// Score is always computed from the current hand
func (p *Participant) Score() int {
	return Score(p.hand)
}

// Balance returns the participant's chips not currently at risk
func (p *Participant) Balance() int {
	return p.balance
}

// Bet returns the bet placed this round
func (p *Participant) Bet() int {
	return p.bet
}

// IsBusted returns true if the hand went over 21
func (p *Participant) IsBusted() bool {
	return p.busted
}

// HasHeld returns true if the participant stood
func (p *Participant) HasHeld() bool {
	return p.held
}

// done is true once the participant can no longer act this round
func (p *Participant) done() bool {
	return p.busted || p.held
}

func (p *Participant) reset() {
	p.hand = make(deck.Hand, 0, 5)
	p.bet = 0
	p.won = 0
	p.busted = false
	p.held = false
}

// placeBet bets the stake, or everything left if the balance is short
func (p *Participant) placeBet(stake int) int {
	bet := stake
	if p.balance < bet {
		bet = p.balance
	}

	p.balance -= bet
	p.bet = bet
	return bet
}

func (p *Participant) addCard(card *deck.Card) {
	p.hand.AddCard(card)
	if Score(p.hand) > Blackjack {
		p.busted = true
	}
}

func (p *Participant) credit(amount int) {
	p.balance += amount
	p.won += amount
}

// net is the chip change for the round
func (p *Participant) net() int {
	return p.won - p.bet
}
