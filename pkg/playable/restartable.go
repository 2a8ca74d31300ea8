package playable

import "time"

// Restartable is a game that automatically deals a new round after the previous one ends
type Restartable interface {
	// RestartDelay is how long to wait between the end of a round and the next deal
	RestartDelay() time.Duration

	// StartNextRound deals a new round to the registered roster
	StartNextRound() error
}
