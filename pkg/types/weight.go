package types

import (
	"strconv"
	"strings"
)

// MaxWeight is the largest weight a selected tag can carry.
const MaxWeight = 100

// Weight is one entry of the tag_weights collection.
type Weight struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

// Weights maps a selected tag ID to its emphasis weight.
// A missing entry means weight 0.
type Weights map[string]int

// Clone returns a copy of w. A nil map clones to an empty map.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Get returns the weight for id, or 0 when absent.
func (w Weights) Get(id string) int {
	return w[id]
}

// ClampWeight coerces n into the range [0, MaxWeight].
func ClampWeight(n int) int {
	switch {
	case n < 0:
		return 0
	case n > MaxWeight:
		return MaxWeight
	}
	return n
}

// ParseWeight converts direct text input to a weight. Empty input means 0.
// Returns ErrInvalidWeight for non-integer, negative or too large input.
func ParseWeight(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > MaxWeight {
		return 0, ErrInvalidWeight
	}
	return n, nil
}
