package room

import (
	"blackjack-server/pkg/playable"
)

const logMessageLimit = 25

// addLogMessages keeps the newest log messages for clients that connect later
// Note: this must only be called from within the run loop
func (d *Dealer) addLogMessages(messages []*playable.LogMessage) {
	m := append(d.logMessages, messages...)
	if count := len(m); count > logMessageLimit {
		m = append([]*playable.LogMessage{}, m[count-logMessageLimit:]...)
	}

	d.logMessages = m
}
