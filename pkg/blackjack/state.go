package blackjack

import "blackjack-server/pkg/deck"

// ParticipantState is a read-only projection of a participant
// It is a copy. Mutating it does not affect the engine
type ParticipantState struct {
	ID            string      `json:"id"`
	DisplayName   string      `json:"displayName"`
	Hand          []deck.Card `json:"hand"`
	Score         int         `json:"score"`
	IsSoft        bool        `json:"isSoft"`
	IsCurrentTurn bool        `json:"isCurrentTurn"`
	IsBusted      bool        `json:"isBusted"`
	HasHeld       bool        `json:"hasHeld"`
	IsRoundOver   bool        `json:"isRoundOver"`
	ChipBalance   int         `json:"chipBalance"`
	CurrentBet    int         `json:"currentBet"`
}

// RoundResult is the outcome of a finished round
type RoundResult struct {
	Round    int    `json:"round"`
	DeckHash string `json:"deckHash"`
	Pot      int    `json:"pot"`
	// Share is what each winner was paid
	Share int `json:"share"`
	// Forfeited is the part of the pot nobody was paid
	Forfeited    int                  `json:"forfeited"`
	Winners      []string             `json:"winners"`
	Participants []*ParticipantResult `json:"participants"`
}

// ParticipantResult is how a round ended for one participant
type ParticipantResult struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Hand        string `json:"hand"`
	Score       int    `json:"score"`
	Bet         int    `json:"bet"`
	Won         int    `json:"won"`
	Balance     int    `json:"balance"`
	Busted      bool   `json:"busted"`
}

// Net returns the chip change for the round
func (p *ParticipantResult) Net() int {
	return p.Won - p.Bet
}

// GameState is the table state that every connected client can see
type GameState struct {
	Round        int                `json:"round"`
	State        string             `json:"state"`
	Pot          int                `json:"pot"`
	Stake        int                `json:"stake"`
	CurrentTurn  string             `json:"currentTurn"`
	CardsLeft    int                `json:"cardsLeft"`
	Winners      []string           `json:"winners"`
	Result       *RoundResult       `json:"result,omitempty"`
	Participants []ParticipantState `json:"participants"`
}

// Response is the game state sent to a single client
type Response struct {
	GameState *GameState `json:"gameState"`
	// Balance is zero for spectators
	Balance int      `json:"balance"`
	CanAct  bool     `json:"canAct"`
	Actions []string `json:"actions"`
}

// ProjectState returns the participants in seat order
func (e *Engine) ProjectState() []ParticipantState {
	states := make([]ParticipantState, len(e.participants))
	currentTurn := e.CurrentTurn()
	isOver := e.state == StateOver

	for i, p := range e.participants {
		hand := make([]deck.Card, len(p.hand))
		for j, card := range p.hand {
			hand[j] = *card
		}

		states[i] = ParticipantState{
			ID:            p.ID,
			DisplayName:   p.DisplayName,
			Hand:          hand,
			Score:         p.Score(),
			IsSoft:        IsSoft(p.hand),
			IsCurrentTurn: p.ID == currentTurn,
			IsBusted:      p.busted,
			HasHeld:       p.held,
			IsRoundOver:   isOver,
			ChipBalance:   p.balance,
			CurrentBet:    p.bet,
		}
	}

	return states
}

func (e *Engine) getGameState() *GameState {
	cardsLeft := 0
	if e.deck != nil {
		cardsLeft = e.deck.CardsLeft()
	}

	return &GameState{
		Round:        e.round,
		State:        e.state.String(),
		Pot:          e.pot,
		Stake:        e.options.Stake,
		CurrentTurn:  e.CurrentTurn(),
		CardsLeft:    cardsLeft,
		Winners:      e.Winners(),
		Result:       e.result,
		Participants: e.ProjectState(),
	}
}

// actionsFor returns the actions the participant can take right now
func (e *Engine) actionsFor(participantID string) []string {
	if e.state != StateInProgress || e.CurrentTurn() != participantID {
		return []string{}
	}

	return []string{"hit", "stand"}
}
