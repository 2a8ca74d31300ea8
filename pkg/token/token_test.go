package token

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestGenerate(t *testing.T) {
	token, err := Generate(8)
	assert.NoError(t, err)
	assert.Equal(t, 8, len(token))
	assert.Regexp(t, urlSafe, token)

	token2, err := Generate(8)
	assert.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestGenerate_lengths(t *testing.T) {
	for n := 1; n <= 64; n++ {
		token, err := Generate(n)
		if assert.NoError(t, err) {
			assert.Len(t, token, n)
			assert.Regexp(t, urlSafe, token)
		}
	}

	_, err := Generate(0)
	assert.EqualError(t, err, "token length must be > 0")
}
