package interfaces

import "context"

// NarrativeSource produces a macro-news narrative for a date label.
type NarrativeSource interface {
	Narrative(ctx context.Context, date string) (string, error)
}
