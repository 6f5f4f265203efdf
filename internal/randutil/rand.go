// Package randutil centralises deterministic RNG construction so every call
// site gets reproducible sequences from a single int64 seed.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper derives the two 64-bit seeds required by rand/v2 in one place.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive produces an independent child seed, used when one master seed fans
// out to several agents or tables.
func Derive(seed int64, n int) int64 {
	return int64(mix(uint64(seed) + uint64(n+1)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Counting wraps a deterministic generator and counts draws so a consumer can
// be checkpointed mid-stream and fast-forwarded on restore. All randomness is
// funnelled through Float64; IntN is derived from it so one counter describes
// the generator's exact position.
type Counting struct {
	seed  int64
	rng   *rand.Rand
	draws int64
}

// NewCounting returns a counting generator at draw position zero.
func NewCounting(seed int64) *Counting {
	return &Counting{seed: seed, rng: New(seed)}
}

// Float64 returns a uniform value in [0,1) and advances the draw counter.
func (c *Counting) Float64() float64 {
	c.draws++
	return c.rng.Float64()
}

// IntN returns a uniform int in [0,n), consuming exactly one draw.
func (c *Counting) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(c.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Seed returns the seed the generator was constructed with.
func (c *Counting) Seed() int64 {
	return c.seed
}

// Draws returns how many values have been consumed since construction.
func (c *Counting) Draws() int64 {
	return c.draws
}

// Skip advances the generator by n draws. Restoring a checkpoint re-seeds and
// skips to the recorded position, reproducing the exact stream.
func (c *Counting) Skip(n int64) {
	for i := int64(0); i < n; i++ {
		c.Float64()
	}
}
