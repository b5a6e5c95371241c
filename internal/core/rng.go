package core

import (
	"math/rand"
	"time"
)

// newRNG returns the pseudorandom generator for one schedule generation. All
// randomness in a run — balancer shuffles, quota tie-breaks, trial pools — is
// drawn from this single generator, so a seeded run reproduces byte-for-byte
// given identical inputs. Without a seed only the statistical guarantees
// (balance, no triple repeats) hold.
func newRNG(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
