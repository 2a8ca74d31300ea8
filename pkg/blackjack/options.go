package blackjack

import (
	"errors"
	"time"

	"blackjack-server/internal/rng"
)

// Options are options for creating a blackjack table engine
type Options struct {
	Stake         int           // fixed bet per round. Default: 10
	StartingChips int           // chips a new participant sits down with. Default: 100
	RestartDelay  time.Duration // wait between the end of a round and the next deal. Default: 5s

	// Generator is the shuffle source. nil seeds a new math/rand source every round
	Generator rng.Generator
}

// DefaultOptions returns the default options for a blackjack table
func DefaultOptions() Options {
	return Options{
		Stake:         10,
		StartingChips: 100,
		RestartDelay:  5 * time.Second,
	}
}

func (o Options) validate() error {
	if o.Stake <= 0 {
		return errors.New("stake must be > 0")
	}

	if o.StartingChips < 0 {
		return errors.New("starting chips cannot be negative")
	}

	if o.RestartDelay < 0 {
		return errors.New("restart delay cannot be negative")
	}

	return nil
}
