// Package dice implements the die source for the game engine.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// Sides is the number of faces on the die every player rolls.
const Sides = 6

// Roller produces one die outcome per call, uniform in [1, Sides].
type Roller interface {
	Roll() int
}

// Source is a seeded Roller. Given the same seed it produces the same
// sequence of rolls, which is what the engine tests rely on.
type Source struct {
	rng *rand.Rand
}

// NewSource returns a Roller seeded with the provided seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a uniformly distributed value in [1, Sides].
func (s *Source) Roll() int {
	return s.rng.Intn(Sides) + 1
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
