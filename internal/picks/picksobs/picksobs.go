package picksobs

import (
	"context"

	"github.com/google/uuid"

	"macro-picks/internal/interfaces"
	"macro-picks/internal/logger"
	"macro-picks/internal/types"
)

// observableSynthesizer wraps a PickSynthesizer with run-level logging and tracing
type observableSynthesizer struct {
	synth interfaces.PickSynthesizer
}

var _ interfaces.PickSynthesizer = (*observableSynthesizer)(nil)

// Wrap wraps a PickSynthesizer with observability
func Wrap(s interfaces.PickSynthesizer) interfaces.PickSynthesizer {
	return &observableSynthesizer{synth: s}
}

func (ps *observableSynthesizer) Run(ctx context.Context, state types.State) (*types.Patch, error) {
	runID := uuid.NewString()
	op := logger.StartOperation(ctx, "picks.Run", "run_id", runID)
	ctx = op.GetContext()

	logger.InfoSkip(ctx, 1, "Starting pick synthesis",
		"run_id", runID,
		"messages", len(state.Messages),
		"show_reasoning", state.Metadata.ShowReasoning,
	)

	patch, err := ps.synth.Run(ctx, state)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}

	count := 0
	if out, ok := patch.Data[types.KeyMacroNewsPicks].(types.PicksOutput); ok {
		count = len(out.Picks)
	}
	logger.InfoSkip(ctx, 1, "Pick synthesis completed",
		"run_id", runID,
		"pick_count", count,
	)
	op.End("pick_count", count)
	return patch, nil
}
