package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeNarrative(t *testing.T) {
	headlines := []Headline{
		{Title: "Davos diplomacy dominates agenda."},
		{Title: "  Ukraine   peace efforts  "},
		{Title: "DAVOS DIPLOMACY dominates agenda"},
		{Title: ""},
		{Title: "Rare earth export curbs"},
		{Title: "AI capex keeps rising"},
	}

	assert.Equal(t,
		"Macro themes: Davos diplomacy dominates agenda; Ukraine peace efforts; Rare earth export curbs.",
		ComposeNarrative(headlines, 3))
	assert.Equal(t,
		"Macro themes: Davos diplomacy dominates agenda; Ukraine peace efforts; Rare earth export curbs; AI capex keeps rising.",
		ComposeNarrative(headlines, 10))
}

func TestComposeNarrativeEmpty(t *testing.T) {
	assert.Equal(t, "", ComposeNarrative(nil, 5))
	assert.Equal(t, "", ComposeNarrative([]Headline{{Title: "x"}}, 0))
}

func TestFlattenHTML(t *testing.T) {
	cases := map[string]string{
		"plain":   "  rates   on hold ",
		"markup":  "<p>Allies <b>agree</b> on\n 3%</p>",
		"entity":  "Oil &amp; gas",
		"escaped": "&lt;p&gt;Copper&lt;/p&gt;",
	}
	want := map[string]string{
		"plain":   "rates on hold",
		"markup":  "Allies agree on 3%",
		"entity":  "Oil & gas",
		"escaped": "<p>Copper</p>",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want[name], FlattenHTML(in))
		})
	}
}
