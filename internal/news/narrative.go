package news

import "strings"

const narrativePrefix = "Macro themes: "

// ComposeNarrative joins up to limit distinct headline titles into a macro
// narrative. Titles are compared case-insensitively; first occurrence wins.
// It returns "" when there is nothing to say.
func ComposeNarrative(headlines []Headline, limit int) string {
	if limit <= 0 {
		return ""
	}
	seen := make(map[string]struct{}, len(headlines))
	themes := make([]string, 0, limit)
	for _, h := range headlines {
		if len(themes) >= limit {
			break
		}
		title := strings.TrimRight(collapseSpace(h.Title), ".;")
		key := strings.ToLower(title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		themes = append(themes, title)
	}
	if len(themes) == 0 {
		return ""
	}
	return narrativePrefix + strings.Join(themes, "; ") + "."
}
