package viewmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thanhdat24/code-learning/internal/catalog"
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestProject_Stats(t *testing.T) {
	p := NewProjector(catalog.Default())
	v := p.Project([]string{"two-sum"}, Filter{})

	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 1, v.Solved)
	assert.Equal(t, Tally{Solved: 1, Total: 2}, v.ByDifficulty[catalog.Easy])
	assert.Equal(t, Tally{Solved: 0, Total: 1}, v.ByDifficulty[catalog.Medium])
	assert.Equal(t, Tally{}, v.ByDifficulty[catalog.Hard])
	assert.Equal(t, []string{"two-sum", "palindrome-number", "reverse-linked-list"}, ids(v.Items))
	assert.True(t, v.Items[0].Solved)
	assert.False(t, v.Items[1].Solved)
}

func TestProject_Filters(t *testing.T) {
	solved := []string{"two-sum"}
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"search case-insensitive", Filter{Search: "TWO"}, []string{"two-sum"}},
		{"search keeps inner and trailing spaces", Filter{Search: "two "}, []string{"two-sum"}},
		{"trailing space is part of the term", Filter{Search: "sum "}, []string{}},
		{"search no match", Filter{Search: "graph"}, []string{}},
		{"solved", Filter{Status: StatusSolved}, []string{"two-sum"}},
		{"unsolved", Filter{Status: StatusUnsolved}, []string{"palindrome-number", "reverse-linked-list"}},
		{"difficulty", Filter{Difficulty: catalog.Easy}, []string{"two-sum", "palindrome-number"}},
		{"combined", Filter{Search: "number", Status: StatusUnsolved, Difficulty: catalog.Easy}, []string{"palindrome-number"}},
		{"explicit all", Filter{Status: StatusAll, Difficulty: DifficultyAll}, []string{"two-sum", "palindrome-number", "reverse-linked-list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewProjector(catalog.Default()).Project(solved, tt.filter)
			assert.Equal(t, tt.want, ids(v.Items))
			// Stats ignore the filter.
			assert.Equal(t, 3, v.Total)
		})
	}
}

func TestProject_Memoized(t *testing.T) {
	p := NewProjector(catalog.Default())

	p.Project([]string{"two-sum"}, Filter{})
	p.Project([]string{"two-sum"}, Filter{Status: StatusAll})
	assert.Equal(t, 1, p.Recomputations(), "equivalent filter")

	p.Project([]string{"two-sum", "two-sum"}, Filter{})
	assert.Equal(t, 1, p.Recomputations(), "same solved set")

	p.Project([]string{"two-sum", "palindrome-number"}, Filter{})
	assert.Equal(t, 2, p.Recomputations())

	p.Project([]string{"palindrome-number", "two-sum"}, Filter{Search: "sum"})
	assert.Equal(t, 3, p.Recomputations())
}

func TestProject_ReturnsCopy(t *testing.T) {
	p := NewProjector(catalog.Default())
	v := p.Project(nil, Filter{})
	v.Items[0].Title = "mutated"
	v.ByDifficulty[catalog.Easy] = Tally{Total: 99}

	again := p.Project(nil, Filter{})
	assert.Equal(t, "Two Sum", again.Items[0].Title)
	assert.Equal(t, 2, again.ByDifficulty[catalog.Easy].Total)
	assert.Equal(t, 1, p.Recomputations())
}

func TestParse(t *testing.T) {
	st, err := ParseStatus("Solved")
	require.NoError(t, err)
	assert.Equal(t, StatusSolved, st)
	st, err = ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusAll, st)
	_, err = ParseStatus("done")
	assert.Error(t, err)

	d, err := ParseDifficulty("medium")
	require.NoError(t, err)
	assert.Equal(t, catalog.Medium, d)
	d, err = ParseDifficulty("ALL")
	require.NoError(t, err)
	assert.Equal(t, DifficultyAll, d)
	_, err = ParseDifficulty("brutal")
	assert.Error(t, err)
}
