package rng

import (
	"context"
	"hash/fnv"
	"math/rand/v2"

	"gorandtest/ports"
)

// PCGAdapter implements ports.RNGPort with PCG sources. The operation name
// selects the PCG stream so two named operations never share a sequence.
type PCGAdapter struct{}

// NewPCGAdapter creates the default RNG adapter
func NewPCGAdapter() ports.RNGPort {
	return PCGAdapter{}
}

// SeededSource creates a deterministic source for a named operation
func (PCGAdapter) SeededSource(ctx context.Context, name string, seed int64) (rand.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.NewPCG(uint64(seed), streamFor(name)), nil
}

// DrawSeed draws from the runtime-seeded global generator
func (PCGAdapter) DrawSeed(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return rand.Int64(), nil
}

func streamFor(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}
