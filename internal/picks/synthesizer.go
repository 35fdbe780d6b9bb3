package picks

import (
	"context"
	"errors"
	"fmt"

	"macro-picks/internal/experts"
	"macro-picks/internal/interfaces"
	"macro-picks/internal/llm/schema"
	"macro-picks/internal/logger"
	"macro-picks/internal/trace"
	"macro-picks/internal/types"
)

// DefaultAgentID is the node id the synthesizer reads and writes under.
const DefaultAgentID = "macro_news_opportunities_agent"

// ErrGeneration wraps every failure of the generator.
var ErrGeneration = errors.New("pick generation failed")

// Synthesizer runs read, prompt, generate, normalize and publish for one state.
type Synthesizer struct {
	gen     interfaces.Generator
	allow   experts.AllowList
	sink    interfaces.ReasoningSink
	agentID string
	prompt  PromptOptions
}

var _ interfaces.PickSynthesizer = (*Synthesizer)(nil)

type Option func(*Synthesizer)

func WithAgentID(id string) Option {
	return func(s *Synthesizer) {
		if id != "" {
			s.agentID = id
		}
	}
}

func WithPromptOptions(opts PromptOptions) Option {
	return func(s *Synthesizer) { s.prompt = opts }
}

// New builds a synthesizer. sink may be nil when reasoning output is not wanted.
func New(gen interfaces.Generator, allow experts.AllowList, sink interfaces.ReasoningSink, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		gen:     gen,
		allow:   allow,
		sink:    sink,
		agentID: DefaultAgentID,
		prompt:  DefaultPromptOptions(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// AgentID returns the id used for messages and node data.
func (s *Synthesizer) AgentID() string {
	return s.agentID
}

// Run produces the patch for state. state is never modified.
func (s *Synthesizer) Run(ctx context.Context, state types.State) (*types.Patch, error) {
	ctx, span := trace.StartSpan(ctx, "picks.Synthesize")
	defer span.End()

	s.status(ctx, "Synthesizing macro context")
	in := ReadInput(state, s.agentID)
	if in.UsedDefault {
		logger.Debug(ctx, "Narrative missing or short, using default", "agent_id", s.agentID)
	}
	prompt := BuildPrompt(in, s.allow, s.prompt)
	if logger.IsDebugEnabled() {
		logger.Debug(ctx, "Prompt built",
			"agent_id", s.agentID,
			"date", in.Date,
			"system_chars", len(prompt.System),
			"human", prompt.Human,
		)
	}

	s.status(ctx, "Generating picks")
	out, err := s.gen.Generate(ctx, prompt, schema.Picks())
	if err != nil {
		logger.ErrorWithErr(ctx, "Generator failed", err, "agent_id", s.agentID)
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	normalized, report := Normalize(out, s.allow)
	if s.prompt.ConfidenceField {
		if n := FillConfidence(&normalized); n > 0 {
			logger.Debug(ctx, "Defaulted missing confidence", "agent_id", s.agentID, "picks", n)
		}
	}
	if !report.Empty() {
		logger.Debug(ctx, "Normalized generator output",
			"agent_id", s.agentID,
			"dropped_experts", report.DroppedExperts,
			"trimmed_experts", report.TrimmedExperts,
			"dropped_picks", report.DroppedPicks,
		)
	}

	patch, err := Publish(ctx, normalized, s.agentID, state.Metadata, s.sink)
	if err != nil {
		return nil, err
	}
	logger.Picks(ctx, s.agentID, len(normalized.Picks), "used_default_narrative", in.UsedDefault)

	s.status(ctx, "Done")
	return patch, nil
}

func (s *Synthesizer) status(ctx context.Context, status string) {
	logger.Info(ctx, status, "agent_id", s.agentID)
}
