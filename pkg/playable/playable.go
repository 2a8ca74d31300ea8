package playable

import (
	"fmt"
	"time"

	"blackjack-server/pkg/deck"

	"github.com/google/uuid"
)

// Playable is a game that can be played at a table
type Playable interface {
	// Action performs with a message
	// If playerResponse is not null, that's the response sent directly to the client
	// If updateState is true, it will trigger a state update for all connected clients
	Action(participantID string, message *PayloadIn) (playerResponse *Response, updateState bool, err error)

	// GetPlayerState returns the current state of the game for the participant
	GetPlayerState(participantID string) (*Response, error)

	// GetEndOfRoundDetails returns the details after a round is over
	// If the round is still in progress, nil will be returned and the second param will be false
	GetEndOfRoundDetails() (details *RoundOverDetails, isRoundOver bool)

	// Name returns the name of the game
	Name() string

	// LogChan should return a channel that a game will send log messages to
	LogChan() <-chan []*LogMessage
}

// LogMessage is the format a game should send log messages in
// If ParticipantIDs is empty, assume it's a general statement, otherwise the message will be sent like "{} did X, Y, Z"
type LogMessage struct {
	UUID           string       `json:"uuid"`
	ParticipantIDs []string     `json:"participantIds"`
	Cards          []*deck.Card `json:"cards"`
	Message        string       `json:"message"`
	Time           time.Time    `json:"time"`
}

// Response is a container to determine who gets the specified message
type Response struct {
	Key     string      `json:"key"`
	Value   string      `json:"value"`
	Data    interface{} `json:"data"`
	Context string      `json:"context"`
}

// OK returns a generic success response
func OK(ctx ...string) *Response {
	res := &Response{
		Key:   "status",
		Value: "OK",
	}

	if len(ctx) == 1 {
		res.Context = ctx[0]
	}

	return res
}

// PayloadIn is the format we expect from the JS client
type PayloadIn struct {
	Action         string         `json:"action"`
	Subject        string         `json:"subject"`
	AdditionalData AdditionalData `json:"additionalData"`
	// Context will be passed back on any outgoing message
	Context string `json:"context"`
}

// RoundOverDetails provides details on how a round ended
type RoundOverDetails struct {
	// BalanceAdjustments is the net chip change per participant for the round
	BalanceAdjustments map[string]int
	Log                interface{}
}

// AdditionalData provides additional data in a payload
type AdditionalData map[string]interface{}

// GetString returns a string for the given key
func (a AdditionalData) GetString(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// SimpleLogMessage returns a new LogMessage
func SimpleLogMessage(participantID string, format string, a ...interface{}) *LogMessage {
	var ids []string
	if participantID != "" {
		ids = []string{participantID}
	}

	return &LogMessage{
		UUID:           uuid.New().String(),
		ParticipantIDs: ids,
		Message:        fmt.Sprintf(format, a...),
		Time:           time.Now(),
	}
}
