package picks

import (
	"strings"

	"macro-picks/internal/experts"
	"macro-picks/internal/types"
)

// PromptOptions toggles the optional rule groups of the system prompt.
type PromptOptions struct {
	ConfidenceField bool
	ExpertDiversity bool
}

// DefaultPromptOptions enables both optional rule groups.
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{ConfidenceField: true, ExpertDiversity: true}
}

// BuildPrompt renders the system and human blocks. It is deterministic.
func BuildPrompt(in Input, allow experts.AllowList, opts PromptOptions) types.Prompt {
	return types.Prompt{
		System: systemBlock(allow, opts),
		Human:  humanBlock(in, opts),
	}
}

func systemBlock(allow experts.AllowList, opts PromptOptions) string {
	var b strings.Builder

	b.WriteString("You are an investment strategist agent. Convert the given macro-news context into 5 ")
	b.WriteString("actionable company picks with concise theses, strengths, risks, ")
	if opts.ConfidenceField {
		b.WriteString("confidence, ")
	}
	b.WriteString("and best-fit expert agents.\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- Return strict JSON only.\n")
	b.WriteString("- Produce exactly five picks.\n")
	b.WriteString("- Prioritize companies and sectors mentioned in the macro-news context.\n")
	b.WriteString("- Only add companies if a macro theme is mentioned but no specific company is identified.\n")
	b.WriteString("- Assign 2-3 'best_experts' ONLY from this list:\n")
	b.WriteString(allow.Prompt())
	b.WriteString("\n")
	if opts.ExpertDiversity {
		b.WriteString("- Do not assign the same expert to more than three picks.\n")
		b.WriteString("- Use at least four distinct experts across all picks.\n")
	}
	b.WriteString("- Keep 'strengths' and 'risks' concise; separate items with '; '.\n")
	b.WriteString("- Prefer primary tickers; for baskets leave 'ticker' null.\n")
	if opts.ConfidenceField {
		b.WriteString("- Set 'confidence' to an integer from 1 (low) to 5 (high).\n")
	}
	return b.String()
}

func humanBlock(in Input, opts PromptOptions) string {
	var b strings.Builder
	b.WriteString("Context date (optional): ")
	b.WriteString(in.Date)
	b.WriteString("\nMacro news context:\n")
	b.WriteString(in.Narrative)
	b.WriteString("\nReturn JSON with exactly this shape:\n")
	b.WriteString(`{ "picks": [ { "company": "string", "ticker": "string|null", "sector": "string", `)
	b.WriteString(`"thesis": "string", "strengths": "point; point; point", "risks": "risk; risk", `)
	b.WriteString(`"best_experts": ["Name Agent","Name Agent"]`)
	if opts.ConfidenceField {
		b.WriteString(`, "confidence": 1-5`)
	}
	b.WriteString(` } ] }`)
	return b.String()
}
