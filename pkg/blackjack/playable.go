package blackjack

import (
	"fmt"
	"time"

	"blackjack-server/pkg/playable"
)

// Name returns the name of the game
func (e *Engine) Name() string {
	return "blackjack"
}

// LogChan returns the channel the engine sends game log messages to
func (e *Engine) LogChan() <-chan []*playable.LogMessage {
	return e.logChan
}

// RestartDelay is how long the table waits before dealing the next round
func (e *Engine) RestartDelay() time.Duration {
	return e.options.RestartDelay
}

// Action performs a participant action
func (e *Engine) Action(participantID string, message *playable.PayloadIn) (playerResponse *playable.Response, updateState bool, err error) {
	switch message.Action {
	case "hit":
		card, err := e.RequestHit(participantID)
		if err != nil {
			return nil, false, err
		}

		res := playable.OK(message.Context)
		res.Data = card
		return res, true, nil
	case "stand":
		if err := e.RequestStand(participantID); err != nil {
			return nil, false, err
		}

		return playable.OK(message.Context), true, nil
	default:
		return nil, false, fmt.Errorf("unknown action: %s", message.Action)
	}
}

// GetPlayerState returns the table state for the participant
// Spectators get the table state with a zero balance and no actions
func (e *Engine) GetPlayerState(participantID string) (*playable.Response, error) {
	balance := 0
	if p, found := e.idToParticipant[participantID]; found {
		balance = p.balance
	}

	return &playable.Response{
		Key:   "game",
		Value: "blackjack",
		Data: &Response{
			GameState: e.getGameState(),
			Balance:   balance,
			CanAct:    len(e.actionsFor(participantID)) > 0,
			Actions:   e.actionsFor(participantID),
		},
	}, nil
}

// GetEndOfRoundDetails returns the net chip change of every participant once the round is over
func (e *Engine) GetEndOfRoundDetails() (*playable.RoundOverDetails, bool) {
	if e.result == nil {
		return nil, false
	}

	adjustments := make(map[string]int, len(e.result.Participants))
	for _, p := range e.result.Participants {
		adjustments[p.ID] = p.Net()
	}

	return &playable.RoundOverDetails{
		BalanceAdjustments: adjustments,
		Log:                e.result,
	}, true
}
