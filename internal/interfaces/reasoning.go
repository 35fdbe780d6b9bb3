package interfaces

import "context"

// ReasoningSink receives an agent's structured output when show_reasoning is on.
type ReasoningSink interface {
	Emit(ctx context.Context, agentName string, payload any) error
}
