package landing

import "math/rand/v2"

// Bounds of generated display ids.
const (
	MinID = 100000
	MaxID = 999999
)

// RandomIDs mints six-digit ids from the runtime's random source.
type RandomIDs struct{}

// NewRandomIDs creates a RandomIDs.
func NewRandomIDs() *RandomIDs {
	return &RandomIDs{}
}

// NewID returns an integer in [MinID, MaxID].
func (RandomIDs) NewID() int {
	return MinID + rand.IntN(MaxID-MinID+1)
}
