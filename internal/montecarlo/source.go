package montecarlo

import (
	"golang.org/x/exp/rand"
)

// NormalSource is a stream of independent standard-normal variates.
type NormalSource interface {
	NormFloat64() float64
}

// SourceFactory builds a NormalSource from a seed. Equal seeds must give
// equal streams.
type SourceFactory func(seed uint64) NormalSource

// NewNormalSource returns a PCG-backed standard-normal stream.
func NewNormalSource(seed uint64) NormalSource {
	return rand.New(rand.NewSource(seed))
}

// blockSeed derives the seed of one path block with a splitmix64 step, so
// that neighbouring blocks get unrelated streams.
func blockSeed(seed uint64, block int) uint64 {
	z := seed + uint64(block+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
