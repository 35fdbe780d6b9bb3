// Package experts holds the static registry of investor personas and the
// allow-list of expert labels derived from it.
package experts

import (
	"sort"
	"strings"
	"sync"
)

// LabelSuffix is appended to a display name to form an expert label.
const LabelSuffix = " Agent"

// Profile is a named investor persona used elsewhere in the pipeline.
type Profile struct {
	ID          string
	DisplayName string
}

// Label returns the allow-list label for the profile, e.g. "Ben Graham Agent".
func (p Profile) Label() string {
	return p.DisplayName + LabelSuffix
}

var registry = map[string]Profile{
	"aswath_damodaran":      {ID: "aswath_damodaran", DisplayName: "Aswath Damodaran"},
	"ben_graham":            {ID: "ben_graham", DisplayName: "Ben Graham"},
	"bill_ackman":           {ID: "bill_ackman", DisplayName: "Bill Ackman"},
	"cathie_wood":           {ID: "cathie_wood", DisplayName: "Cathie Wood"},
	"charlie_munger":        {ID: "charlie_munger", DisplayName: "Charlie Munger"},
	"michael_burry":         {ID: "michael_burry", DisplayName: "Michael Burry"},
	"mohnish_pabrai":        {ID: "mohnish_pabrai", DisplayName: "Mohnish Pabrai"},
	"peter_lynch":           {ID: "peter_lynch", DisplayName: "Peter Lynch"},
	"phil_fisher":           {ID: "phil_fisher", DisplayName: "Phil Fisher"},
	"rakesh_jhunjhunwala":   {ID: "rakesh_jhunjhunwala", DisplayName: "Rakesh Jhunjhunwala"},
	"stanley_druckenmiller": {ID: "stanley_druckenmiller", DisplayName: "Stanley Druckenmiller"},
	"warren_buffett":        {ID: "warren_buffett", DisplayName: "Warren Buffett"},
}

// Profiles returns the registry ordered by display name.
func Profiles() []Profile {
	out := make([]Profile, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out
}

// Lookup finds a profile by id.
func Lookup(id string) (Profile, bool) {
	p, ok := registry[id]
	return p, ok
}

// AllowList is an immutable, ordered set of permissible expert labels.
type AllowList struct {
	labels []string
	index  map[string]struct{}
}

// NewAllowList builds an allow-list from profiles, keeping their order and
// skipping duplicate labels.
func NewAllowList(profiles []Profile) AllowList {
	al := AllowList{
		labels: make([]string, 0, len(profiles)),
		index:  make(map[string]struct{}, len(profiles)),
	}
	for _, p := range profiles {
		l := p.Label()
		if _, dup := al.index[l]; dup {
			continue
		}
		al.index[l] = struct{}{}
		al.labels = append(al.labels, l)
	}
	return al
}

var (
	defaultOnce sync.Once
	defaultList AllowList
)

// Default returns the process-wide allow-list built from the registry.
func Default() AllowList {
	defaultOnce.Do(func() {
		defaultList = NewAllowList(Profiles())
	})
	return defaultList
}

// Contains reports whether label is allowed. Matching is exact.
func (a AllowList) Contains(label string) bool {
	_, ok := a.index[label]
	return ok
}

// Labels returns a copy of the labels in order.
func (a AllowList) Labels() []string {
	return append([]string(nil), a.labels...)
}

// Len returns the number of labels.
func (a AllowList) Len() int {
	return len(a.labels)
}

// Prompt renders the list the way it is embedded in the system prompt:
// ['Aswath Damodaran Agent', 'Ben Graham Agent', ...]
func (a AllowList) Prompt() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, l := range a.labels {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('\'')
		b.WriteString(l)
		b.WriteByte('\'')
	}
	b.WriteByte(']')
	return b.String()
}
