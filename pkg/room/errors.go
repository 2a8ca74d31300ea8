package room

import "errors"

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// ErrRoomNotFound is returned when no room has the ID
var ErrRoomNotFound = UserError("room not found")

// ErrRoomFull is returned when every seat is taken
var ErrRoomFull = UserError("room is full")

// ErrInvalidPasscode is returned when the passcode does not match the room's
var ErrInvalidPasscode = UserError("invalid passcode")

// ErrNotMember is returned when the caller is not seated in the room
var ErrNotMember = UserError("you are not a member of this room")

// ErrRoomClosed is returned when the room shut down while a request was pending
var ErrRoomClosed = errors.New("room is closed")
