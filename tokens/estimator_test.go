package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristic_Count(t *testing.T) {
	est := Heuristic{}

	assert.Equal(t, 0, est.Count(""))
	assert.Equal(t, 0, est.Count("abc"), "shorter than one token rounds down")
	assert.Equal(t, 1, est.Count("abcd"))
	assert.Equal(t, 100, est.Count(strings.Repeat("x", 400)))
}

func TestTotal(t *testing.T) {
	est := Heuristic{}
	texts := []string{
		strings.Repeat("a", 40),  // 10 tokens
		strings.Repeat("b", 400), // 100 tokens
		"abc",                    // 0 tokens
	}

	assert.Equal(t, 110, Total(est, texts))
}
