package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macro-picks/internal/types"
)

const validPicks = `{"picks":[{"company":"Lockheed Martin","ticker":"LMT","sector":"Defense","thesis":"NATO spending","strengths":"backlog; margins","risks":"budget politics","best_experts":["Warren Buffett Agent","Bill Ackman Agent"],"confidence":4},{"company":"Rare earth basket","ticker":null,"sector":"Materials","thesis":"Supply security","strengths":"policy support","risks":"volatility","best_experts":null}]}`

func TestPicksDescriptorShape(t *testing.T) {
	d := Picks()
	require.NotNil(t, d)
	assert.Same(t, d, Picks())
	assert.Equal(t, "macro_news_picks", d.Name())

	m := d.Map()
	assert.Equal(t, "object", m["type"])
	assert.NotContains(t, m, "$schema")
	assert.Equal(t, []any{"picks"}, m["required"])

	picks := m["properties"].(map[string]any)["picks"].(map[string]any)
	item := picks["items"].(map[string]any)
	assert.ElementsMatch(t, []any{"company", "sector", "thesis", "strengths", "risks"}, item["required"])
}

func TestDescriptorMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Picks())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"best_experts"`)
}

func TestDecodeValid(t *testing.T) {
	var out types.PicksOutput
	require.NoError(t, Picks().Decode(validPicks, &out))

	require.Len(t, out.Picks, 2)
	assert.Equal(t, "LMT", *out.Picks[0].Ticker)
	assert.Equal(t, 4, *out.Picks[0].Confidence)
	assert.Nil(t, out.Picks[1].Ticker)
	assert.Nil(t, out.Picks[1].Confidence)
	assert.Nil(t, out.Picks[1].BestExperts)
}

func TestDecodeFencedAndWrappedText(t *testing.T) {
	var out types.PicksOutput
	require.NoError(t, Picks().Decode("```json\n"+validPicks+"\n```", &out))
	assert.Len(t, out.Picks, 2)

	out = types.PicksOutput{}
	require.NoError(t, Picks().Decode("Here are the picks:\n"+validPicks+"\nGood luck.", &out))
	assert.Len(t, out.Picks, 2)
}

func TestDecodeWithBracesAfterObject(t *testing.T) {
	var out types.PicksOutput
	require.NoError(t, Picks().Decode(validPicks+"\nSee {appendix} for sources.", &out))
	assert.Len(t, out.Picks, 2)
}

func TestDecodeMissingRequiredField(t *testing.T) {
	var out types.PicksOutput
	err := Picks().Decode(`{"picks":[{"company":"X","thesis":"t","strengths":"s","risks":"r"}]}`, &out)
	require.ErrorIs(t, err, ErrSchemaViolation)
	assert.Contains(t, err.Error(), "sector")
}

func TestDecodeMissingPicks(t *testing.T) {
	var out types.PicksOutput
	err := Picks().Decode(`{"ideas":[]}`, &out)
	require.ErrorIs(t, err, ErrSchemaViolation)
	assert.Contains(t, err.Error(), "picks")
}

func TestDecodeConfidenceOutOfRange(t *testing.T) {
	var out types.PicksOutput
	err := Picks().Decode(`{"picks":[{"company":"X","sector":"s","thesis":"t","strengths":"s","risks":"r","confidence":9}]}`, &out)
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestDecodeNoJSON(t *testing.T) {
	var out types.PicksOutput
	err := Picks().Decode("I cannot help with that.", &out)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		err  error
	}{
		{"plain", `{"a":1}`, `{"a":1}`, nil},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, nil},
		{"prose", `sure: {"a":{"b":2}} done`, `{"a":{"b":2}}`, nil},
		{"trailing brace", `{"a":1} note {x}`, `{"a":1}`, nil},
		{"leading brace", `use {x} then {"a":[1]} ok`, `{"a":[1]}`, nil},
		{"broken", `{"a":`, "", ErrNoJSON},
		{"empty", "", "", ErrNoJSON},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
