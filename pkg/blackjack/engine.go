package blackjack

import (
	"fmt"
	"time"

	"blackjack-server/pkg/deck"
	"blackjack-server/pkg/playable"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the state of the current round
type State int

const (
	// StateNotStarted is before the first deal
	StateNotStarted State = iota
	// StateInProgress is while at least one participant can still act
	StateInProgress
	// StateOver is once everyone has busted or held and the pot was paid out
	StateOver
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "notStarted"
	case StateInProgress:
		return "inProgress"
	case StateOver:
		return "over"
	default:
		return "unknown"
	}
}

// cardsPerHand is how many cards each participant is dealt
const cardsPerHand = 2

// Engine runs the rounds of a single blackjack table
// It is not safe for concurrent use. The caller must serialize every call
type Engine struct {
	options Options
	logger  logrus.FieldLogger
	logChan chan []*playable.LogMessage

	deck    *deck.Deck
	newDeck func() *deck.Deck

	participants    []*Participant
	idToParticipant map[string]*Participant

	turnIndex int
	state     State
	round     int
	pot       int
	deckHash  string
	result    *RoundResult
}

// NewEngine returns a new engine. No round is started
func NewEngine(logger logrus.FieldLogger, opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	e := &Engine{
		options:         opts,
		logger:          logger,
		logChan:         make(chan []*playable.LogMessage, 256),
		idToParticipant: make(map[string]*Participant),
		state:           StateNotStarted,
	}

	e.newDeck = func() *deck.Deck {
		return deck.NewShuffled(e.options.Generator)
	}

	return e, nil
}

// StartRound seats the roster in order and deals a new round
// Participants already known to the engine keep their chip balance, new ones
// receive the starting chips
func (e *Engine) StartRound(roster []Seat) error {
	if e.state == StateInProgress {
		return ErrRoundInProgress
	}

	if len(roster) == 0 {
		return ErrNoParticipants
	}

	participants := make([]*Participant, 0, len(roster))
	idToParticipant := make(map[string]*Participant, len(roster))
	for _, seat := range roster {
		if seat.ID == "" {
			return ErrInvalidParticipant
		}

		if _, found := idToParticipant[seat.ID]; found {
			return ErrDuplicateParticipant
		}

		p, found := e.idToParticipant[seat.ID]
		if found {
			p.DisplayName = seat.DisplayName
		} else {
			p = NewParticipant(seat.ID, seat.DisplayName, e.options.StartingChips)
		}

		participants = append(participants, p)
		idToParticipant[seat.ID] = p
	}

	d := e.newDeck()
	if !d.CanDraw(cardsPerHand * len(participants)) {
		return ErrDeckEmpty
	}

	e.participants = participants
	e.idToParticipant = idToParticipant
	e.deal(d)
	return nil
}

// StartNextRound deals a new round to the participants of the previous round
func (e *Engine) StartNextRound() error {
	if e.state == StateInProgress {
		return ErrRoundInProgress
	}

	if len(e.participants) == 0 {
		return ErrNoParticipants
	}

	d := e.newDeck()
	if !d.CanDraw(cardsPerHand * len(e.participants)) {
		return ErrDeckEmpty
	}

	e.deal(d)
	return nil
}

// deal requires the deck to hold enough cards for every participant
func (e *Engine) deal(d *deck.Deck) {
	e.round++
	e.deck = d
	e.deckHash = d.HashCode()
	e.result = nil
	e.pot = 0

	messages := make([]*playable.LogMessage, 0, len(e.participants)+1)
	for _, p := range e.participants {
		p.reset()
		bet := p.placeBet(e.options.Stake)
		e.pot += bet

		if bet < e.options.Stake {
			messages = append(messages, playable.SimpleLogMessage(p.ID, "{} is all in for %d", bet))
		} else {
			messages = append(messages, playable.SimpleLogMessage(p.ID, "{} bet %d", bet))
		}
	}

	for i := 0; i < cardsPerHand; i++ {
		for _, p := range e.participants {
			card, err := e.deck.Draw()
			if err != nil {
				// the caller checked CanDraw()
				panic(fmt.Sprintf("could not deal: %v", err))
			}

			p.addCard(card)
		}
	}

	e.turnIndex = 0
	e.state = StateInProgress

	e.logger.WithFields(logrus.Fields{
		"round":        e.round,
		"participants": len(e.participants),
		"pot":          e.pot,
	}).Debug("dealt new round")

	messages = append(messages, playable.SimpleLogMessage("", "Round %d dealt with a pot of %d", e.round, e.pot))
	e.sendLogMessages(messages...)

	e.advanceTurn()
}

// RequestHit draws a card for the participant whose turn it is
func (e *Engine) RequestHit(participantID string) (*deck.Card, error) {
	p, err := e.actingParticipant(participantID)
	if err != nil {
		return nil, err
	}

	card, err := e.deck.Draw()
	if err != nil {
		return nil, err
	}

	p.addCard(card)

	msg := playable.SimpleLogMessage(p.ID, "{} hit and drew %s for %d", card.String(), p.Score())
	msg.Cards = []*deck.Card{card}
	if p.busted {
		e.sendLogMessages(msg, playable.SimpleLogMessage(p.ID, "{} busted"))
	} else {
		e.sendLogMessages(msg)
	}

	e.advanceTurn()
	return card, nil
}

// RequestStand holds the hand of the participant whose turn it is
func (e *Engine) RequestStand(participantID string) error {
	p, err := e.actingParticipant(participantID)
	if err != nil {
		return err
	}

	p.held = true
	e.sendLogMessages(playable.SimpleLogMessage(p.ID, "{} stood on %d", p.Score()))

	e.advanceTurn()
	return nil
}

// Withdraw removes a participant who left the table from the round in progress
// They are marked busted, so their bet stays in the pot and they cannot win it.
// Withdrawing someone who already busted or held does nothing
func (e *Engine) Withdraw(participantID string) error {
	if e.state != StateInProgress {
		return ErrRoundNotActive
	}

	p, found := e.idToParticipant[participantID]
	if !found {
		return ErrInvalidParticipant
	}

	if p.done() {
		return nil
	}

	p.busted = true
	e.sendLogMessages(playable.SimpleLogMessage(p.ID, "{} left the table and forfeits the bet of %d", p.bet))

	e.advanceTurn()
	return nil
}

func (e *Engine) actingParticipant(participantID string) (*Participant, error) {
	if e.state != StateInProgress {
		return nil, ErrRoundNotActive
	}

	current := e.participants[e.turnIndex]
	if current.ID != participantID || current.done() {
		return nil, ErrNotYourTurn
	}

	return current, nil
}

// advanceTurn moves the turn past everyone who busted or held
// Once nobody can act the round ends and the pot is paid out. Calling this
// on a round that is not in progress does nothing
func (e *Engine) advanceTurn() {
	if e.state != StateInProgress {
		return
	}

	for e.participants[e.turnIndex].done() {
		if e.allDone() {
			e.endRound()
			return
		}

		e.turnIndex = (e.turnIndex + 1) % len(e.participants)
	}
}

func (e *Engine) allDone() bool {
	for _, p := range e.participants {
		if !p.done() {
			return false
		}
	}

	return true
}

// winners returns everyone sharing the best score of 21 or under
func winners(participants []*Participant) []*Participant {
	best := -1
	w := make([]*Participant, 0, 1)
	for _, p := range participants {
		score := p.Score()
		if score > Blackjack {
			continue
		}

		if score > best {
			best = score
			w = w[:0]
		}

		if score == best {
			w = append(w, p)
		}
	}

	return w
}

// endRound pays out the pot. It is only reached once per round
func (e *Engine) endRound() {
	e.state = StateOver

	w := winners(e.participants)
	result := &RoundResult{
		Round:    e.round,
		DeckHash: e.deckHash,
		Pot:      e.pot,
		Winners:  make([]string, len(w)),
	}

	messages := make([]*playable.LogMessage, 0, len(w)+1)
	if len(w) == 0 {
		// the house keeps the pot
		result.Forfeited = e.pot
		messages = append(messages, playable.SimpleLogMessage("", "Everyone busted, the house keeps the pot of %d", e.pot))
	} else {
		share := e.pot / len(w)
		result.Share = share
		// the remainder of an uneven split is not paid to anyone
		result.Forfeited = e.pot % len(w)

		ids := make([]string, len(w))
		for i, p := range w {
			p.credit(share)
			ids[i] = p.ID
		}

		if len(w) == 1 {
			messages = append(messages, playable.SimpleLogMessage(w[0].ID, "{} won the pot of %d with %d", e.pot, w[0].Score()))
		} else {
			messages = append(messages, newLogMessageWithParticipants(ids, "{} split the pot of %d, %d each", e.pot, share))
		}

		if result.Forfeited > 0 {
			messages = append(messages, playable.SimpleLogMessage("", "%d could not be split evenly and was not paid out", result.Forfeited))
		}
	}

	for i, p := range w {
		result.Winners[i] = p.ID
	}

	result.Participants = make([]*ParticipantResult, len(e.participants))
	for i, p := range e.participants {
		result.Participants[i] = &ParticipantResult{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Hand:        p.hand.String(),
			Score:       p.Score(),
			Bet:         p.bet,
			Won:         p.won,
			Balance:     p.balance,
			Busted:      p.busted,
		}
	}

	e.result = result

	e.logger.WithFields(logrus.Fields{
		"round":     e.round,
		"pot":       e.pot,
		"winners":   result.Winners,
		"forfeited": result.Forfeited,
	}).Info("round over")

	e.sendLogMessages(messages...)
}

// IsRoundOver returns true once every participant busted or held
func (e *Engine) IsRoundOver() bool {
	return e.state == StateOver
}

// State returns the state of the current round
func (e *Engine) State() State {
	return e.state
}

// Round returns the number of rounds dealt so far
func (e *Engine) Round() int {
	return e.round
}

// Pot returns the sum of the bets placed this round
func (e *Engine) Pot() int {
	return e.pot
}

// CurrentTurn returns the ID of the participant who must act
// An empty string is returned if the round is not in progress
func (e *Engine) CurrentTurn() string {
	if e.state != StateInProgress {
		return ""
	}

	return e.participants[e.turnIndex].ID
}

// Winners returns the IDs of the winners of the round
// The slice is empty until the round is over, and stays empty if everyone busted
func (e *Engine) Winners() []string {
	if e.result == nil {
		return []string{}
	}

	return append([]string{}, e.result.Winners...)
}

// Result returns the outcome of the round, or nil if it is not over
func (e *Engine) Result() *RoundResult {
	return e.result
}

// Roster returns the seats of the current round in turn order
func (e *Engine) Roster() []Seat {
	seats := make([]Seat, len(e.participants))
	for i, p := range e.participants {
		seats[i] = Seat{ID: p.ID, DisplayName: p.DisplayName}
	}

	return seats
}

// Balance returns the chip balance of the participant
func (e *Engine) Balance(participantID string) (int, bool) {
	p, found := e.idToParticipant[participantID]
	if !found {
		return 0, false
	}

	return p.balance, true
}

// Options returns the options the engine was created with
func (e *Engine) Options() Options {
	return e.options
}

// sendLogMessages never blocks. Messages are dropped if nobody drains the channel
func (e *Engine) sendLogMessages(msg ...*playable.LogMessage) {
	if len(msg) == 0 {
		return
	}

	select {
	case e.logChan <- msg:
	default:
		e.logger.WithField("round", e.round).Trace("log channel full, dropping messages")
	}
}

func newLogMessageWithParticipants(participantIDs []string, format string, a ...interface{}) *playable.LogMessage {
	return &playable.LogMessage{
		UUID:           uuid.New().String(),
		ParticipantIDs: participantIDs,
		Message:        fmt.Sprintf(format, a...),
		Time:           time.Now(),
	}
}
