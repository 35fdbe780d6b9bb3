package picks

import (
	"context"
	"errors"

	"macro-picks/internal/llm/schema"
	"macro-picks/internal/types"
)

type fakeGenerator struct {
	out     types.PicksOutput
	err     error
	prompts []types.Prompt
	descs   []*schema.Descriptor
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt types.Prompt, desc *schema.Descriptor) (types.PicksOutput, error) {
	f.prompts = append(f.prompts, prompt)
	f.descs = append(f.descs, desc)
	if f.err != nil {
		return types.PicksOutput{}, f.err
	}
	return f.out, nil
}

type emitted struct {
	agent   string
	payload any
}

type countingSink struct {
	calls []emitted
	err   error
}

func (c *countingSink) Emit(ctx context.Context, agentName string, payload any) error {
	c.calls = append(c.calls, emitted{agent: agentName, payload: payload})
	return c.err
}

var errSink = errors.New("sink down")

func strPtr(s string) *string { return &s }
func intPtr(n int) *int { return &n }

func emptyState() types.State {
	return types.State{Data: map[string]any{types.KeyMacroNewsContext: ""}}
}
