// Package picks turns a macro-news narrative into five normalized investment
// picks and publishes them as a state patch.
package picks

import (
	"strings"
	"unicode/utf8"

	"macro-picks/internal/types"
)

// MinNarrativeLen is the shortest trimmed narrative, in characters, that is
// used as given.
const MinNarrativeLen = 50

// DefaultNarrative replaces a missing or too-short narrative.
const DefaultNarrative = "Macro themes: NATO and Arctic security focus; Davos diplomacy; Ukraine peace efforts; " +
	"AI and automation push across industries; supply chain resilience; critical minerals and rare earths."

// Input is what the agent reads from the shared state.
type Input struct {
	Narrative   string
	Date        string
	UsedDefault bool
}

// ReadInput resolves the narrative and date for agentID. State data wins over
// the node's own data. The state is not modified.
func ReadInput(state types.State, agentID string) Input {
	node := state.Metadata.NodeData(agentID)

	narrative := lookupString(state.Data, node, types.KeyMacroNewsContext)
	in := Input{
		Narrative: narrative,
		Date:      lookupString(state.Data, node, types.KeyFallbackDate),
	}
	if utf8.RuneCountInString(strings.TrimSpace(narrative)) < MinNarrativeLen {
		in.Narrative = DefaultNarrative
		in.UsedDefault = true
	}
	return in
}

func lookupString(data, node map[string]any, key string) string {
	if s, ok := data[key].(string); ok && s != "" {
		return s
	}
	if s, ok := node[key].(string); ok {
		return s
	}
	return ""
}
