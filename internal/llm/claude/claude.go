package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"macro-picks/internal/llm/schema"
	"macro-picks/internal/trace"
	"macro-picks/internal/types"
)

// DefaultEndpoint is the public Anthropic messages endpoint.
const DefaultEndpoint = "https://api.anthropic.com/v1/messages"

const apiVersion = "2023-06-01"

type Params struct {
	APIKey      string
	Endpoint    string // proxy/bedrock/vertex gateways set CLAUDE_API_ENDPOINT
	Model       string
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
}

// Generator implements picks generation using the Anthropic Claude API
type Generator struct {
	params Params
}

func NewGenerator(p Params) (*Generator, error) {
	if p.APIKey == "" {
		return nil, errors.New("CLAUDE_API_KEY missing")
	}
	if p.Endpoint == "" {
		p.Endpoint = DefaultEndpoint
	}
	if p.HTTPClient == nil {
		p.HTTPClient = http.DefaultClient
	}
	return &Generator{params: p}, nil
}

// Generate sends the prompt to the messages API. The schema is appended to
// the system block since the API has no response-format switch.
func (g *Generator) Generate(ctx context.Context, prompt types.Prompt, desc *schema.Descriptor) (types.PicksOutput, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	schemaB, err := json.Marshal(desc)
	if err != nil {
		return types.PicksOutput{}, fmt.Errorf("claude: encode schema: %w", err)
	}
	system := prompt.System + "\nThe JSON must validate against this schema:\n" + string(schemaB)

	reqBody := map[string]any{
		"model":  g.params.Model,
		"system": system,
		"messages": []map[string]string{
			{"role": "user", "content": prompt.Human},
		},
		"max_tokens":  g.params.MaxTokens,
		"temperature": g.params.Temperature,
	}
	bb, err := json.Marshal(reqBody)
	if err != nil {
		return types.PicksOutput{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.params.Endpoint, bytes.NewReader(bb))
	if err != nil {
		return types.PicksOutput{}, err
	}
	req.Header.Set("x-api-key", g.params.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.params.HTTPClient.Do(req)
	if err != nil {
		return types.PicksOutput{}, fmt.Errorf("claude request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.PicksOutput{}, fmt.Errorf("claude read body: %w", err)
	}
	if resp.StatusCode >= 300 {
		return types.PicksOutput{}, fmt.Errorf("claude http %d: %s", resp.StatusCode, string(respBytes))
	}

	var out types.PicksOutput
	if err := desc.Decode(extractText(respBytes), &out); err != nil {
		return types.PicksOutput{}, fmt.Errorf("claude: %w", err)
	}
	return out, nil
}

// extractText pulls the assistant text out of a messages response. Gateways
// that reshape the body fall back to a few common fields, then the raw body.
func extractText(body []byte) string {
	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Completion string `json:"completion"`
		OutputText string `json:"output_text"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return string(body)
	}

	var b strings.Builder
	for _, c := range r.Content {
		if c.Type == "" || c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		return s
	}
	for _, s := range []string{r.Completion, r.OutputText} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return string(body)
}
