package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var actions = []string{
	"quickOpen.show",
	"sources.search",
	"console.clear",
	"elements.toggle-element-search",
}

func TestFindOrdersByScore(t *testing.T) {
	got := Find("qos", actions)
	require.Len(t, got, 1)
	assert.Equal(t, "quickOpen.show", got[0].Text)
	assert.Equal(t, []int{0, 5, 10}, got[0].Positions)

	got = Find("search", actions)
	require.Len(t, got, 2)
	assert.Equal(t, "sources.search", got[0].Text)
	assert.Equal(t, 3, got[1].Index)
}

func TestFindPrefixWins(t *testing.T) {
	got := Find("con", []string{"sources.console", "console.clear"})
	require.Len(t, got, 2)
	assert.Equal(t, "console.clear", got[0].Text)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestFindCaseInsensitive(t *testing.T) {
	got := Find("QUICK", actions)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index)
}

func TestFindEmptyQuery(t *testing.T) {
	got := Find("  ", actions)
	require.Len(t, got, len(actions))
	for i, m := range got {
		assert.Equal(t, i, m.Index)
		assert.Zero(t, m.Score)
	}
}

func TestFindNoMatch(t *testing.T) {
	assert.Empty(t, Find("xyz", actions))
	assert.Empty(t, Find("a", nil))
}

func TestIsWordBoundary(t *testing.T) {
	r := []rune("quickOpen.show")
	assert.True(t, isWordBoundary(r, 0))
	assert.True(t, isWordBoundary(r, 5))
	assert.True(t, isWordBoundary(r, 10))
	assert.False(t, isWordBoundary(r, 1))
}
