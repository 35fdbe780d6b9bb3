package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macro-picks/internal/llm/schema"
	"macro-picks/internal/types"
)

const picksJSON = `{"picks":[{"company":"MP Materials","ticker":"MP","sector":"Materials","thesis":"rare earths","strengths":"domestic supply","risks":"pricing","best_experts":["Cathie Wood Agent"],"confidence":3}]}`

func geminiServer(t *testing.T, text string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			}},
		})
	}))
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), Params{Model: "gemini-2.0-flash"})
	assert.EqualError(t, err, "GEMINI_API_KEY missing")
}

func TestGenerate(t *testing.T) {
	var body map[string]any
	srv := geminiServer(t, picksJSON, &body)
	defer srv.Close()

	g, err := NewGenerator(context.Background(), Params{APIKey: "g", Model: "gemini-2.0-flash", BaseURL: srv.URL, MaxTokens: 800})
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), types.Prompt{System: "rules", Human: "context"}, schema.Picks())
	require.NoError(t, err)
	require.Len(t, out.Picks, 1)
	assert.Equal(t, 3, *out.Picks[0].Confidence)

	gen := body["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", gen["responseMimeType"])
	assert.Contains(t, gen, "responseSchema")
}

func TestGenerateSchemaViolation(t *testing.T) {
	srv := geminiServer(t, `{"picks":[{"company":"X","confidence":7}]}`, nil)
	defer srv.Close()

	g, err := NewGenerator(context.Background(), Params{APIKey: "g", Model: "gemini-2.0-flash", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), types.Prompt{}, schema.Picks())
	assert.ErrorIs(t, err, schema.ErrSchemaViolation)
}

func TestPicksSchemaMirrorsDescriptor(t *testing.T) {
	s := picksSchema()
	assert.Equal(t, []string{"picks"}, s.Required)

	item := s.Properties["picks"].Items
	require.NotNil(t, item)

	desc := schema.Picks().Map()
	descItem := desc["properties"].(map[string]any)["picks"].(map[string]any)["items"].(map[string]any)
	descProps := descItem["properties"].(map[string]any)

	assert.Len(t, item.Properties, len(descProps))
	for name := range descProps {
		assert.Contains(t, item.Properties, name)
	}
	var required []any
	for _, r := range item.Required {
		required = append(required, r)
	}
	assert.ElementsMatch(t, descItem["required"], required)
	assert.True(t, *item.Properties["ticker"].Nullable)
}
