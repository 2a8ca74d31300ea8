package blackjack

import (
	"errors"

	"blackjack-server/pkg/deck"
)

// ErrRoundNotActive is returned when an action is attempted before a round starts or after it ended
var ErrRoundNotActive = errors.New("round is not active")

// ErrNotYourTurn is returned when the participant is not the current turn, or has already busted or held
var ErrNotYourTurn = errors.New("it is not your turn")

// ErrDeckEmpty is returned when a card is needed and the deck is exhausted
var ErrDeckEmpty = deck.ErrDeckEmpty

// ErrNoParticipants is returned when a round is started without anyone seated
var ErrNoParticipants = errors.New("need at least one participant")

// ErrDuplicateParticipant is returned when the roster lists the same participant twice
var ErrDuplicateParticipant = errors.New("duplicate participant in roster")

// ErrInvalidParticipant is returned when a roster entry has no ID
var ErrInvalidParticipant = errors.New("participant ID is required")

// ErrRoundInProgress is returned when a round is started while another is being played
var ErrRoundInProgress = errors.New("round is already in progress")
