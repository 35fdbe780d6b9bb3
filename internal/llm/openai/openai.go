package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"macro-picks/internal/llm/schema"
	"macro-picks/internal/trace"
	"macro-picks/internal/types"
)

// Params configures the OpenAI generator. BaseURL switches to any
// OpenAI-compatible endpoint.
type Params struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// Generator produces picks with the chat completions API and a JSON-schema
// response format.
type Generator struct {
	client *goopenai.Client
	params Params
}

func NewGenerator(p Params) (*Generator, error) {
	if p.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY missing")
	}
	cfg := goopenai.DefaultConfig(p.APIKey)
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	return &Generator{client: goopenai.NewClientWithConfig(cfg), params: p}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt types.Prompt, desc *schema.Descriptor) (types.PicksOutput, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	req := goopenai.ChatCompletionRequest{
		Model: g.params.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt.Human},
		},
		MaxTokens:   g.params.MaxTokens,
		Temperature: g.params.Temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   desc.Name(),
				Schema: desc,
				// nullable fields are not all listed as required, which strict mode rejects
				Strict: false,
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return types.PicksOutput{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return types.PicksOutput{}, errors.New("openai: no choices")
	}

	var out types.PicksOutput
	if err := desc.Decode(resp.Choices[0].Message.Content, &out); err != nil {
		return types.PicksOutput{}, fmt.Errorf("openai: %w", err)
	}
	return out, nil
}
