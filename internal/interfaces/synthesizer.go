package interfaces

import (
	"context"

	"macro-picks/internal/types"
)

type PickSynthesizer interface {
	Run(ctx context.Context, state types.State) (*types.Patch, error)
}
