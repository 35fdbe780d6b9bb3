package picks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"macro-picks/internal/interfaces"
	"macro-picks/internal/logger"
	"macro-picks/internal/types"
)

const (
	// ReasoningAgentName is the display name used for the reasoning sink.
	ReasoningAgentName   = "Macro News Opportunities Agent"
	reasoningAssumptions = "Derived dynamically from macro-news context"
)

// Publish builds the patch that stores out under KeyMacroNewsPicks and
// appends one AI message carrying its JSON. When meta.ShowReasoning is set the
// sink is called once; a sink failure is logged and does not fail publishing.
func Publish(ctx context.Context, out types.PicksOutput, agentID string, meta types.Metadata, sink interfaces.ReasoningSink) (*types.Patch, error) {
	content, err := marshalCompact(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode picks: %w", err)
	}

	patch := &types.Patch{
		Messages: []types.Message{{
			ID:      uuid.NewString(),
			Role:    types.RoleAI,
			Name:    agentID,
			Content: content,
		}},
		Data: map[string]any{types.KeyMacroNewsPicks: out},
	}

	if meta.ShowReasoning && sink != nil {
		payload := types.ReasoningPayload{Assumptions: reasoningAssumptions, Output: out}
		if err := sink.Emit(ctx, ReasoningAgentName, payload); err != nil {
			logger.Warn(ctx, "Failed to emit agent reasoning", "agent_id", agentID, "error", err)
		}
	}
	return patch, nil
}

// marshalCompact encodes v without HTML escaping so non-ASCII and '&' survive as-is.
func marshalCompact(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
