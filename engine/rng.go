// engine/rng.go
package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math"
)

// SeededRand produces a deterministic stream of floats from an opaque string
// seed using HMAC-SHA256 rounds. Two generators built from the same seed
// yield bit-identical streams, which is what makes a whole match replayable
// from nothing but its seed.
type SeededRand struct {
	seed         string
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewSeededRand creates a generator positioned at the start of the stream.
func NewSeededRand(seed string) *SeededRand {
	r := &SeededRand{seed: seed}
	r.generateRound()
	return r
}

func (r *SeededRand) next() byte {
	if r.currentPos >= 32 {
		r.currentRound++
		r.currentPos = 0
		r.generateRound()
	}

	b := r.buffer[r.currentPos]
	r.currentPos++
	return b
}

// Float64 returns the next float in [0, 1) using exactly 4 bytes of the stream.
func (r *SeededRand) Float64() float64 {
	b0 := r.next()
	b1 := r.next()
	b2 := r.next()
	b3 := r.next()

	result := 0.0
	for i, b := range [4]byte{b0, b1, b2, b3} {
		divider := math.Pow(256, float64(i+1))
		result += float64(b) / divider
	}
	return result
}

// Intn returns a deterministic integer in [0, n).
func (r *SeededRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(r.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

func (r *SeededRand) generateRound() {
	h := hmac.New(sha256.New, []byte(r.seed))
	h.Write([]byte(fmt.Sprintf("round:%d", r.currentRound)))
	copy(r.buffer[:], h.Sum(nil))
}
