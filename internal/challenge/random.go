package challenge

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// NewRNG returns a deterministic generator for a non-zero seed and a
// clock-seeded one otherwise.
func NewRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seededRNG(seed)
}

func seededRNG(seed int64) *rand.Rand {
	// Puzzle generation only; no secrecy required.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, "prompt"), seedWord(seed, "answer")))
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}
