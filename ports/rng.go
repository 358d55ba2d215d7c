package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random sources for deterministic permutation sampling
type RNGPort interface {
	// SeededSource creates a deterministic source for a named operation
	SeededSource(ctx context.Context, name string, seed int64) (rand.Source, error)

	// DrawSeed picks a fresh seed when the caller did not supply one, so the run
	// can still be reproduced from its outcome record
	DrawSeed(ctx context.Context) (int64, error)
}
