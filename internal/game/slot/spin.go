package slot

import (
	"math/rand/v2"
	"time"
)

// Rand is the randomness a spin needs: a uniform draw from [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a PCG-backed generator. A zero seed seeds from the clock;
// any other value replays the same sequence every time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Spin draws one symbol from each reel independently and returns the payline.
func Spin(rng Rand, reels Reels) Line {
	var line Line
	for i, reel := range reels {
		line[i] = reel.Draw(rng)
	}
	return line
}
