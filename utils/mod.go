package utils

import (
	"time"

	"golang.org/x/exp/rand"
)

const goldenGamma = 0x9e3779b97f4a7c15

// NewRand returns a generator for one stream of a master seed. The same
// (seed, stream) pair always yields the same sequence, and different streams of
// one seed are decorrelated, so workers can each own a generator.
func NewRand(seed uint64, stream int) *rand.Rand {
	return rand.New(rand.NewSource(mix(seed + uint64(stream+1)*goldenGamma)))
}

// Seed returns seed unchanged unless it is 0, in which case a time based seed is
// drawn.
func Seed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano())
}

// splitmix64 finalizer
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
