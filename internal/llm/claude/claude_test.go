package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macro-picks/internal/llm/schema"
	"macro-picks/internal/types"
)

const picksJSON = `{"picks":[{"company":"Freeport-McMoRan","ticker":"FCX","sector":"Materials","thesis":"copper","strengths":"scale","risks":"cycle","best_experts":["Peter Lynch Agent"]}]}`

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(Params{})
	assert.EqualError(t, err, "CLAUDE_API_KEY missing")

	g, err := NewGenerator(Params{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpoint, g.params.Endpoint)
}

func TestGenerateMessagesAPI(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []any{map[string]any{"type": "text", "text": "```json\n" + picksJSON + "\n```"}},
		})
	}))
	defer srv.Close()

	g, err := NewGenerator(Params{APIKey: "k", Endpoint: srv.URL, Model: "claude-sonnet", MaxTokens: 900})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), types.Prompt{System: "rules", Human: "context"}, schema.Picks())
	require.NoError(t, err)
	require.Len(t, out.Picks, 1)
	assert.Equal(t, "Freeport-McMoRan", out.Picks[0].Company)

	assert.Contains(t, body["system"], "rules")
	assert.Contains(t, body["system"], `"best_experts"`)
	assert.Equal(t, float64(900), body["max_tokens"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "context", msgs[0].(map[string]any)["content"])
}

func TestGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g, err := NewGenerator(Params{APIKey: "k", Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), types.Prompt{}, schema.Picks())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude http 503")
}

func TestGenerateNoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"I would rather not."}]}`))
	}))
	defer srv.Close()

	g, err := NewGenerator(Params{APIKey: "k", Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), types.Prompt{}, schema.Picks())
	assert.ErrorIs(t, err, schema.ErrNoJSON)
}

func TestExtractText(t *testing.T) {
	assert.Equal(t, "a", extractText([]byte(`{"content":[{"type":"text","text":"a"}]}`)))
	assert.Equal(t, "b", extractText([]byte(`{"completion":"b"}`)))
	assert.Equal(t, "c", extractText([]byte(`{"output_text":"c"}`)))
	assert.Equal(t, "plain", extractText([]byte("plain")))
}
