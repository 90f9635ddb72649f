// Package viewmodel derives the problem list and progress statistics
// shown to a user from the catalog and their solved set.
package viewmodel

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/thanhdat24/code-learning/internal/catalog"
)

// Status filters problems by whether the user has solved them.
type Status string

const (
	StatusAll      Status = "all"
	StatusSolved   Status = "solved"
	StatusUnsolved Status = "unsolved"
)

// DifficultyAll disables the difficulty filter.
const DifficultyAll catalog.Difficulty = "all"

// Filter narrows the problem list. Zero values mean no filtering.
type Filter struct {
	Search     string
	Status     Status
	Difficulty catalog.Difficulty
}

func (f Filter) normalize() Filter {
	f.Search = strings.ToLower(f.Search)
	if f.Status == "" {
		f.Status = StatusAll
	}
	if f.Difficulty == "" {
		f.Difficulty = DifficultyAll
	}
	return f
}

// ParseStatus accepts all, solved or unsolved, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "", StatusAll:
		return StatusAll, nil
	case StatusSolved, StatusUnsolved:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q (want all, solved or unsolved)", s)
}

// ParseDifficulty accepts all or a catalog difficulty, case-insensitively.
func ParseDifficulty(s string) (catalog.Difficulty, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(DifficultyAll)) {
		return DifficultyAll, nil
	}
	for _, d := range catalog.Difficulties() {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Item is one row of the problem list.
type Item struct {
	ID         string
	Title      string
	Difficulty catalog.Difficulty
	Category   string
	Solved     bool
}

// Tally counts solved problems against the total for one difficulty.
type Tally struct {
	Solved int
	Total  int
}

// View is the projection for one (solved set, filter) pair.
type View struct {
	Items        []Item
	ByDifficulty map[catalog.Difficulty]Tally
	Solved       int
	Total        int
}

func (v View) clone() View {
	v.Items = append([]Item(nil), v.Items...)
	v.ByDifficulty = maps.Clone(v.ByDifficulty)
	return v
}

// Projector memoizes the most recent View. It recomputes only when the
// solved set or the filter differs from the previous call.
type Projector struct {
	catalog *catalog.Catalog

	mu             sync.Mutex
	solved         mapset.Set[string]
	filter         Filter
	view           *View
	recomputations int
}

// NewProjector returns a Projector over c.
func NewProjector(c *catalog.Catalog) *Projector {
	return &Projector{catalog: c}
}

// Project returns the view for the given solved problem ids and filter.
func (p *Projector) Project(solvedIDs []string, f Filter) View {
	solved := mapset.NewThreadUnsafeSet(solvedIDs...)
	f = f.normalize()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view != nil && f == p.filter && solved.Equal(p.solved) {
		return p.view.clone()
	}

	v := project(p.catalog.All(), solved, f)
	p.solved, p.filter, p.view = solved, f, &v
	p.recomputations++
	return v.clone()
}

// Recomputations returns how many times a view was actually computed.
func (p *Projector) Recomputations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recomputations
}

func project(problems []catalog.Problem, solved mapset.Set[string], f Filter) View {
	v := View{
		Items:        []Item{},
		ByDifficulty: make(map[catalog.Difficulty]Tally, len(catalog.Difficulties())),
	}
	for _, d := range catalog.Difficulties() {
		v.ByDifficulty[d] = Tally{}
	}

	for _, pr := range problems {
		isSolved := solved.Contains(pr.ID)

		t := v.ByDifficulty[pr.Difficulty]
		t.Total++
		v.Total++
		if isSolved {
			t.Solved++
			v.Solved++
		}
		v.ByDifficulty[pr.Difficulty] = t

		if !f.matches(pr, isSolved) {
			continue
		}
		v.Items = append(v.Items, Item{
			ID:         pr.ID,
			Title:      pr.Title,
			Difficulty: pr.Difficulty,
			Category:   pr.Category,
			Solved:     isSolved,
		})
	}
	return v
}

func (f Filter) matches(p catalog.Problem, solved bool) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Title), f.Search) {
		return false
	}
	switch f.Status {
	case StatusSolved:
		if !solved {
			return false
		}
	case StatusUnsolved:
		if solved {
			return false
		}
	}
	return f.Difficulty == DifficultyAll || f.Difficulty == p.Difficulty
}
