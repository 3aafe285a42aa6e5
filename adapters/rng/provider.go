package rng

import (
	"context"
	"math/rand/v2"

	"gocopula/domain/core"
	"gocopula/ports"
)

// Provider implements ports.RNGPort with hash-derived PCG streams. Each
// (condition, stage) pair maps to its own generator, so bootstrap draws for
// one condition never depend on scheduling order across conditions.
type Provider struct{}

// NewProvider creates a deterministic RNG provider
func NewProvider() *Provider {
	return &Provider{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (p *Provider) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	hi, lo := core.SeedPair(seed, name)
	return rand.New(rand.NewPCG(hi, lo)), nil
}

// Stream creates a deterministic RNG stream scoped to one condition and stage
func (p *Provider) Stream(ctx context.Context, conditionID, stageName string, baseSeed int64) (*rand.Rand, error) {
	hi, lo := core.SeedPair(baseSeed, conditionID, stageName)
	return rand.New(rand.NewPCG(hi, lo)), nil
}

var _ ports.RNGPort = (*Provider)(nil)
