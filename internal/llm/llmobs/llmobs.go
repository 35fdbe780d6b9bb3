package llmobs

import (
	"context"
	"time"

	"macro-picks/internal/interfaces"
	"macro-picks/internal/llm/schema"
	"macro-picks/internal/logger"
	"macro-picks/internal/trace"
	"macro-picks/internal/types"
)

// observableGenerator wraps a Generator with observability (logging & tracing)
type observableGenerator struct {
	gen      interfaces.Generator
	provider string
}

// Compile-time interface check
var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware. provider is only
// used as a log field.
func Wrap(gen interfaces.Generator, provider string) interfaces.Generator {
	return &observableGenerator{gen: gen, provider: provider}
}

func (og *observableGenerator) Generate(ctx context.Context, prompt types.Prompt, desc *schema.Descriptor) (types.PicksOutput, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()

	start := time.Now()
	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting picks",
		"provider", og.provider,
		"schema", desc.Name(),
		"system_chars", len(prompt.System),
		"human_chars", len(prompt.Human),
	)

	out, err := og.gen.Generate(ctx, prompt, desc)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to generate picks", err,
			"provider", og.provider,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.PicksOutput{}, err
	}

	logger.InfoSkip(ctx, 1, "Picks received",
		"provider", og.provider,
		"count", len(out.Picks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
