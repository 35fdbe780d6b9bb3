package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"macro-picks/internal/experts"
	"macro-picks/internal/interfaces"
	"macro-picks/internal/llm/claude"
	"macro-picks/internal/llm/gemini"
	"macro-picks/internal/llm/llmobs"
	"macro-picks/internal/llm/noop"
	"macro-picks/internal/llm/openai"
	"macro-picks/internal/logger"
	"macro-picks/internal/news"
	"macro-picks/internal/picks"
	"macro-picks/internal/picks/picksobs"
	"macro-picks/internal/reasoning"
	"macro-picks/internal/store"
	"macro-picks/internal/trace"
	"macro-picks/internal/types"
)

// initializeSystem loads .env and initializes logger and tracer.
// Logs go to stderr so stdout carries only command output.
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	logCfg := logger.LoadConfigFromEnv()
	logCfg.Output = os.Stderr
	if err := logger.InitWithConfig(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	logger.Debug(context.Background(), "System initialized",
		"tracing", logger.IsTracingEnabled(),
		"detailed_logging", logger.IsDebugEnabled(),
	)
	return nil
}

// shutdownSystem flushes pending spans
func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shut down tracer: %v\n", err)
	}
}

// loadConfig loads the configuration, falling back to defaults when the
// default path does not exist
func loadConfig(ctx context.Context, path string, explicit bool) (*store.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		logger.Warn(ctx, "Config file not found, using defaults", "path", path)
		return store.Parse(nil)
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeGenerator builds the configured LLM generator with observability
func initializeGenerator(ctx context.Context, cfg *store.Config, secrets *store.Secrets) (interfaces.Generator, error) {
	var (
		gen interfaces.Generator
		err error
	)

	switch cfg.LLM.Provider {
	case store.ProviderOpenAI:
		gen, err = openai.NewGenerator(openai.Params{
			APIKey:      secrets.OpenAIKey,
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	case store.ProviderClaude:
		gen, err = claude.NewGenerator(claude.Params{
			APIKey:      secrets.ClaudeKey,
			Endpoint:    secrets.ClaudeEndpoint,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	case store.ProviderGemini:
		gen, err = gemini.NewGenerator(ctx, gemini.Params{
			APIKey:      secrets.GeminiKey,
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		})
	default:
		gen = noop.NewGenerator()
		logger.Warn(ctx, "No LLM provider configured - using Noop generator (no picks)")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s generator: %w", cfg.LLM.Provider, err)
	}

	// Wrap with observability middleware
	return llmobs.Wrap(gen, cfg.LLM.Provider), nil
}

// initializeSink returns the console reasoning sink writing to w, or nil when disabled
func initializeSink(cfg *store.Config, w io.Writer) (interfaces.ReasoningSink, func()) {
	if !cfg.ReasoningEnabled() {
		return nil, func() {}
	}
	sink := reasoning.NewConsoleSink(w)
	return sink, func() { _ = sink.Close() }
}

// initializeSynthesizer wires the generator and sink into a wrapped synthesizer
func initializeSynthesizer(cfg *store.Config, gen interfaces.Generator, sink interfaces.ReasoningSink) interfaces.PickSynthesizer {
	synth := picks.New(gen, experts.Default(), sink,
		picks.WithAgentID(cfg.Agent.ID),
		picks.WithPromptOptions(picks.PromptOptions{
			ConfidenceField: cfg.ConfidenceEnabled(),
			ExpertDiversity: cfg.DiversityEnabled(),
		}),
	)
	return picksobs.Wrap(synth)
}

// initializeNews builds the narrative service from config. Callers must Close it.
func initializeNews(cfg *store.Config) *news.Service {
	sources := make([]news.Source, 0, len(cfg.News.Sources))
	for _, s := range cfg.News.Sources {
		sources = append(sources, news.Source{
			Name:    s.Name,
			URL:     s.URL,
			Item:    s.Item,
			Title:   s.Title,
			Summary: s.Summary,
		})
	}

	svcCfg := news.ServiceConfig{
		MaxHeadlines:   cfg.News.MaxHeadlines,
		CacheDuration:  time.Duration(cfg.News.CacheMinutes) * time.Minute,
		ScraperTimeout: time.Duration(cfg.News.TimeoutSeconds) * time.Second,
		Enabled:        cfg.News.Enabled,
	}
	return news.NewService(news.NewScraper(sources, svcCfg.ScraperTimeout), svcCfg)
}

// stateInput holds the run flags that shape the input state
type stateInput struct {
	StateFile     string
	Context       string
	ContextFile   string
	Date          string
	ShowReasoning bool
}

// buildState assembles the input state from an optional state file and flags.
// Flags override values from the file.
func buildState(in stateInput) (types.State, error) {
	state := types.State{Data: map[string]any{}}
	if in.StateFile != "" {
		b, err := os.ReadFile(in.StateFile)
		if err != nil {
			return types.State{}, fmt.Errorf("failed to read state file: %w", err)
		}
		if state, err = types.DecodeState(b); err != nil {
			return types.State{}, fmt.Errorf("failed to decode state file: %w", err)
		}
	}

	narrative := in.Context
	if narrative == "" && in.ContextFile != "" {
		b, err := os.ReadFile(in.ContextFile)
		if err != nil {
			return types.State{}, fmt.Errorf("failed to read context file: %w", err)
		}
		narrative = string(b)
	}
	if narrative != "" {
		state.Data[types.KeyMacroNewsContext] = narrative
	}
	if in.Date != "" {
		state.Data[types.KeyFallbackDate] = in.Date
	}
	if in.ShowReasoning {
		state.Metadata.ShowReasoning = true
	}
	return state, nil
}

// hasNarrative reports whether the state already carries a narrative for agentID
func hasNarrative(state types.State, agentID string) bool {
	for _, m := range []map[string]any{state.Data, state.Metadata.NodeData(agentID)} {
		if s, ok := m[types.KeyMacroNewsContext].(string); ok && strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// scrapeNarrative fills macro_news_context from the news service. Failures are
// logged; the agent then falls back to its default narrative.
func scrapeNarrative(ctx context.Context, src interfaces.NarrativeSource, state types.State, agentID string) types.State {
	if hasNarrative(state, agentID) {
		logger.Info(ctx, "Narrative supplied, skipping news scrape")
		return state
	}

	date, _ := state.Data[types.KeyFallbackDate].(string)
	narrative, err := src.Narrative(ctx, date)
	if err != nil {
		logger.Warn(ctx, "News scrape produced no narrative, agent default will be used", "error", err)
		return state
	}

	return state.Apply(&types.Patch{Data: map[string]any{types.KeyMacroNewsContext: narrative}})
}
