package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// Stream creates a deterministic RNG stream scoped to one condition and
	// stage (tie-break, gof-bootstrap, stability-bootstrap, ...). Re-running
	// a single condition reproduces its draws regardless of which other
	// conditions ran concurrently.
	Stream(ctx context.Context, conditionID, stageName string, baseSeed int64) (*rand.Rand, error)
}
