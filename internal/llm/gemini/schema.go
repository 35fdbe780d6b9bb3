package gemini

import "google.golang.org/genai"

// picksSchema mirrors schema.Picks() in the OpenAPI subset Gemini accepts.
func picksSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	pick := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"company":   str("Company or basket name"),
			"ticker":    {Type: genai.TypeString, Nullable: genai.Ptr(true), Description: "Primary ticker, null for baskets"},
			"sector":    str(""),
			"thesis":    str(""),
			"strengths": str("Concise points separated with '; '"),
			"risks":     str("Concise risks separated with '; '"),
			"best_experts": {
				Type:        genai.TypeArray,
				Nullable:    genai.Ptr(true),
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "2-3 expert agent labels from the allow-list",
			},
			"confidence": {
				Type:     genai.TypeInteger,
				Nullable: genai.Ptr(true),
				Minimum:  genai.Ptr(1.0),
				Maximum:  genai.Ptr(5.0),
			},
		},
		Required: []string{"company", "sector", "thesis", "strengths", "risks"},
		PropertyOrdering: []string{
			"company", "ticker", "sector", "thesis", "strengths", "risks", "best_experts", "confidence",
		},
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: map[string]*genai.Schema{"picks": {Type: genai.TypeArray, Items: pick}},
		Required:   []string{"picks"},
	}
}
