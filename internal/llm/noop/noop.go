package noop

import (
	"context"

	"macro-picks/internal/llm/schema"
	"macro-picks/internal/logger"
	"macro-picks/internal/types"
)

// Generator is a fallback used when no LLM provider is configured
type Generator struct{}

// NewGenerator returns a generator that always yields no picks
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns an empty PicksOutput so offline runs still publish a valid payload
func (g *Generator) Generate(ctx context.Context, prompt types.Prompt, desc *schema.Descriptor) (types.PicksOutput, error) {
	logger.Warn(ctx, "Noop generator called - returning no picks")
	return types.PicksOutput{Picks: []types.Pick{}}, nil
}
