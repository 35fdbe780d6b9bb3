package types

import "encoding/json"

// State keys shared with the rest of the pipeline.
const (
	KeyMacroNewsContext = "macro_news_context"
	KeyFallbackDate     = "fallback_date"
	KeyMacroNewsPicks   = "macro_news_picks"
)

// Pick is one structured investment recommendation.
type Pick struct {
	Company     string   `json:"company" jsonschema:"required" jsonschema_description:"Company or basket name"`
	Ticker      *string  `json:"ticker" jsonschema:"nullable" jsonschema_description:"Primary ticker, null for baskets"`
	Sector      string   `json:"sector" jsonschema:"required"`
	Thesis      string   `json:"thesis" jsonschema:"required"`
	Strengths   string   `json:"strengths" jsonschema:"required" jsonschema_description:"Concise points separated with '; '"`
	Risks       string   `json:"risks" jsonschema:"required" jsonschema_description:"Concise risks separated with '; '"`
	BestExperts []string `json:"best_experts" jsonschema:"nullable" jsonschema_description:"2-3 expert agent labels from the allow-list"`
	Confidence  *int     `json:"confidence,omitempty" jsonschema:"nullable,minimum=1,maximum=5"`
}

// PicksOutput is the payload published under KeyMacroNewsPicks.
type PicksOutput struct {
	Picks []Pick `json:"picks" jsonschema:"required"`
}

// Clone returns a deep copy so normalisation never touches the caller's value.
func (o PicksOutput) Clone() PicksOutput {
	out := PicksOutput{Picks: make([]Pick, len(o.Picks))}
	for i, p := range o.Picks {
		c := p
		if p.Ticker != nil {
			t := *p.Ticker
			c.Ticker = &t
		}
		if p.Confidence != nil {
			n := *p.Confidence
			c.Confidence = &n
		}
		if p.BestExperts != nil {
			c.BestExperts = append([]string(nil), p.BestExperts...)
		}
		out.Picks[i] = c
	}
	return out
}

// Message roles
const (
	RoleAI    = "ai"
	RoleHuman = "human"
)

// Message is a conversation entry appended by pipeline stages.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// Metadata carries per-run switches and per-node inputs.
type Metadata struct {
	ShowReasoning bool                      `json:"show_reasoning"`
	NodeDataByID  map[string]map[string]any `json:"node_data_by_id,omitempty"`
}

// NodeData returns the secondary input map for a node, never nil.
func (m Metadata) NodeData(id string) map[string]any {
	if d, ok := m.NodeDataByID[id]; ok && d != nil {
		return d
	}
	return map[string]any{}
}

// State is the shared context handed between pipeline stages.
type State struct {
	Messages []Message      `json:"messages"`
	Data     map[string]any `json:"data"`
	Metadata Metadata       `json:"metadata"`
}

// Patch is the delta a stage produces. Callers merge it with State.Apply.
type Patch struct {
	Messages []Message      `json:"messages"`
	Data     map[string]any `json:"data"`
}

// Apply returns a new State with the patch merged in. The receiver is not modified.
func (s State) Apply(p *Patch) State {
	out := State{
		Messages: make([]Message, 0, len(s.Messages)+lenMessages(p)),
		Data:     make(map[string]any, len(s.Data)+lenData(p)),
		Metadata: s.Metadata,
	}
	out.Messages = append(out.Messages, s.Messages...)
	for k, v := range s.Data {
		out.Data[k] = v
	}
	if p == nil {
		return out
	}
	out.Messages = append(out.Messages, p.Messages...)
	for k, v := range p.Data {
		out.Data[k] = v
	}
	return out
}

func lenMessages(p *Patch) int {
	if p == nil {
		return 0
	}
	return len(p.Messages)
}

func lenData(p *Patch) int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// Prompt is the two-part request sent to a generator.
type Prompt struct {
	System string `json:"system"`
	Human  string `json:"human"`
}

// ReasoningPayload is what the agent shows when show_reasoning is set.
type ReasoningPayload struct {
	Assumptions string      `json:"assumptions"`
	Output      PicksOutput `json:"output"`
}

// DecodeState parses a state document, tolerating missing sections.
func DecodeState(b []byte) (State, error) {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return State{}, err
	}
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	return s, nil
}
