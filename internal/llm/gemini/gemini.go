package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"macro-picks/internal/llm/schema"
	"macro-picks/internal/trace"
	"macro-picks/internal/types"
)

type Params struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// Generator produces picks with the Gemini API in JSON mode.
type Generator struct {
	client *genai.Client
	params Params
}

func NewGenerator(ctx context.Context, p Params) (*Generator, error) {
	if p.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY missing")
	}
	cc := &genai.ClientConfig{
		APIKey:  p.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: p.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	return &Generator{client: client, params: p}, nil
}

// Generate asks for application/json constrained by a Gemini schema, then
// validates the text against desc like every other provider.
func (g *Generator) Generate(ctx context.Context, prompt types.Prompt, desc *schema.Descriptor) (types.PicksOutput, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-api-call")
	defer span.End()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.System, genai.RoleUser),
		Temperature:       genai.Ptr(g.params.Temperature),
		MaxOutputTokens:   int32(g.params.MaxTokens),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    picksSchema(),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.params.Model, genai.Text(prompt.Human), cfg)
	if err != nil {
		return types.PicksOutput{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return types.PicksOutput{}, fmt.Errorf("gemini: %w", schema.ErrNoJSON)
	}

	var out types.PicksOutput
	if err := desc.Decode(text, &out); err != nil {
		return types.PicksOutput{}, fmt.Errorf("gemini: %w", err)
	}
	return out, nil
}
