package util

import (
	"regexp"
	"testing"

	"blackjack-server/internal/rng"

	"github.com/stretchr/testify/assert"
)

func TestGetRandomName(t *testing.T) {
	orig := random
	defer func() { random = orig }()

	random = rng.NewSeeded(7)
	first := []string{GetRandomName(), GetRandomName(), GetRandomName()}

	random = rng.NewSeeded(7)
	second := []string{GetRandomName(), GetRandomName(), GetRandomName()}
	assert.Equal(t, first, second)

	// random names must pass the nickname rules
	rx := regexp.MustCompile(`^[\p{L}\p{N} ]{0,40}\z`)
	for _, name := range first {
		assert.Regexp(t, rx, name)
		assert.Contains(t, adjectives, name[:len(name)-len(lastWord(name))-1])
		assert.Contains(t, animals, lastWord(name))
	}
}

func lastWord(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ' ' {
			return s[i+1:]
		}
	}

	return s
}
