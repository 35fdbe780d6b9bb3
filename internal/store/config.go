package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"macro-picks/internal/picks"
)

// Providers accepted by llm.provider. Anything else selects the offline generator.
const (
	ProviderOpenAI = "OPENAI"
	ProviderClaude = "CLAUDE"
	ProviderGemini = "GEMINI"
	ProviderNone   = "NONE"
)

// NewsSource describes one page or feed the scraper visits.
// Item is the CSS selector for one headline; Title and Summary are
// selectors relative to Item. An empty Title uses the item's own text.
type NewsSource struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Item    string `yaml:"item"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
}

type Config struct {
	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"base_url"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"llm"`
	Agent struct {
		ID              string `yaml:"id"`
		ShowReasoning   bool   `yaml:"show_reasoning"`
		ConfidenceField *bool  `yaml:"confidence_field"`
		ExpertDiversity *bool  `yaml:"expert_diversity"`
	} `yaml:"agent"`
	News struct {
		Enabled        bool         `yaml:"enabled"`
		MaxHeadlines   int          `yaml:"max_headlines"`
		CacheMinutes   int          `yaml:"cache_minutes"`
		TimeoutSeconds int          `yaml:"timeout_seconds"`
		Sources        []NewsSource `yaml:"sources"`
	} `yaml:"news"`
	Reasoning struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"reasoning"`
}

// Secrets are never read from config.yaml.
type Secrets struct {
	OpenAIKey      string `envconfig:"OPENAI_API_KEY"`
	ClaudeKey      string `envconfig:"CLAUDE_API_KEY"`
	ClaudeEndpoint string `envconfig:"CLAUDE_API_ENDPOINT" default:"https://api.anthropic.com/v1/messages"`
	GeminiKey      string `envconfig:"GEMINI_API_KEY"`
}

// LoadSecrets reads API keys from the environment.
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to process env secrets: %w", err)
	}
	return &s, nil
}

func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderClaude, ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be OPENAI, CLAUDE, GEMINI or NONE", c.LLM.Provider)
	}
	if c.LLM.Provider != ProviderNone && c.LLM.Model == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0-2, got %.2f", c.LLM.Temperature)
	}
	if c.News.Enabled {
		if len(c.News.Sources) == 0 {
			return errors.New("news.sources cannot be empty when news is enabled")
		}
		for i, s := range c.News.Sources {
			if s.URL == "" || s.Item == "" {
				return fmt.Errorf("news.sources[%d] needs url and item", i)
			}
		}
	}
	return nil
}

// ConfidenceEnabled reports agent.confidence_field, defaulting to true.
func (c *Config) ConfidenceEnabled() bool {
	return c.Agent.ConfidenceField == nil || *c.Agent.ConfidenceField
}

// DiversityEnabled reports agent.expert_diversity, defaulting to true.
func (c *Config) DiversityEnabled() bool {
	return c.Agent.ExpertDiversity == nil || *c.Agent.ExpertDiversity
}

// ReasoningEnabled reports reasoning.enabled, defaulting to true. When false
// show_reasoning is ignored.
func (c *Config) ReasoningEnabled() bool {
	return c.Reasoning.Enabled == nil || *c.Reasoning.Enabled
}

// Parse decodes config YAML, applies defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.LLM.Provider = strings.ToUpper(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderNone
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2048
	}
	if c.Agent.ID == "" {
		c.Agent.ID = picks.DefaultAgentID
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 12
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 60
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 15
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}
