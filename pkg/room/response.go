package room

import (
	"blackjack-server/pkg/playable"
)

type clientStateMember struct {
	*Member
	Seat        int  `json:"seat"`
	IsConnected bool `json:"isConnected"`
}

func newErrorResponse(ctx string, err error) *playable.Response {
	return &playable.Response{
		Key:     "error",
		Value:   err.Error(),
		Context: ctx,
	}
}
