package interfaces

import (
	"context"

	"macro-picks/internal/llm/schema"
	"macro-picks/internal/types"
)

// Generator turns a prompt into schema-validated picks. Implementations own
// transport, provider quirks and decoding; callers never retry.
type Generator interface {
	Generate(ctx context.Context, prompt types.Prompt, desc *schema.Descriptor) (types.PicksOutput, error)
}
