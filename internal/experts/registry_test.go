package experts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAllowList(t *testing.T) {
	al := Default()

	require.Equal(t, 12, al.Len())
	labels := al.Labels()
	assert.Equal(t, "Aswath Damodaran Agent", labels[0])
	assert.Equal(t, "Warren Buffett Agent", labels[len(labels)-1])

	for _, l := range labels {
		assert.True(t, strings.HasSuffix(l, LabelSuffix), l)
		assert.True(t, al.Contains(l))
	}
	assert.False(t, al.Contains("Warren Buffett"))
	assert.False(t, al.Contains("warren buffett agent"))
	assert.False(t, al.Contains("Jim Cramer Agent"))
}

func TestLabelsReturnsCopy(t *testing.T) {
	al := Default()
	labels := al.Labels()
	labels[0] = "Mutated Agent"

	assert.Equal(t, "Aswath Damodaran Agent", al.Labels()[0])
	assert.False(t, al.Contains("Mutated Agent"))
}

func TestNewAllowListSkipsDuplicates(t *testing.T) {
	al := NewAllowList([]Profile{
		{ID: "a", DisplayName: "Alpha"},
		{ID: "b", DisplayName: "Beta"},
		{ID: "a2", DisplayName: "Alpha"},
	})
	assert.Equal(t, []string{"Alpha Agent", "Beta Agent"}, al.Labels())
}

func TestPromptRendering(t *testing.T) {
	al := NewAllowList([]Profile{{DisplayName: "Ben Graham"}, {DisplayName: "Peter Lynch"}})
	assert.Equal(t, "['Ben Graham Agent', 'Peter Lynch Agent']", al.Prompt())

	assert.Equal(t, "[]", AllowList{}.Prompt())
}

func TestLookup(t *testing.T) {
	p, ok := Lookup("warren_buffett")
	require.True(t, ok)
	assert.Equal(t, "Warren Buffett Agent", p.Label())

	_, ok = Lookup("nobody")
	assert.False(t, ok)
}
