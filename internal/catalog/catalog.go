package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrNotFound is returned when a problem id is not in the catalog.
var ErrNotFound = errors.New("problem not found")

// ErrInvalid wraps every catalog validation failure.
var ErrInvalid = errors.New("invalid catalog")

//go:embed problems.toml
var defaultCatalog []byte

// Catalog is a read-only, ordered set of problems.
type Catalog struct {
	problems []Problem
	byID     map[string]int
}

type catalogFile struct {
	Problems []Problem `toml:"problems"`
}

// New validates problems and builds a Catalog preserving their order.
func New(problems []Problem) (*Catalog, error) {
	c := &Catalog{
		problems: make([]Problem, 0, len(problems)),
		byID:     make(map[string]int, len(problems)),
	}
	for _, p := range problems {
		if err := validateProblem(p); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate problem id %q", ErrInvalid, p.ID)
		}
		if p.Difficulty == "" {
			p.Difficulty = Easy
		}
		for i := range p.TestCases {
			if p.TestCases[i].Visibility == "" {
				p.TestCases[i].Visibility = Public
			}
		}
		c.byID[p.ID] = len(c.problems)
		c.problems = append(c.problems, p)
	}
	return c, nil
}

// Parse decodes a TOML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog TOML: %w", err)
	}
	return New(f.Problems)
}

// Load reads and parses a TOML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// All returns every problem in catalog order.
func (c *Catalog) All() []Problem {
	out := make([]Problem, len(c.problems))
	copy(out, c.problems)
	return out
}

// Len returns the number of problems.
func (c *Catalog) Len() int {
	return len(c.problems)
}

// Get returns the problem with the given id.
func (c *Catalog) Get(id string) (*Problem, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	p := c.problems[i]
	return &p, nil
}

func validateProblem(p Problem) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: problem with empty id", ErrInvalid)
	}
	if p.Difficulty != "" && !p.Difficulty.Valid() {
		return fmt.Errorf("%w: problem %q has unknown difficulty %q", ErrInvalid, p.ID, p.Difficulty)
	}
	seen := make(map[string]bool, len(p.TestCases))
	for _, tc := range p.TestCases {
		if tc.ID == "" {
			return fmt.Errorf("%w: problem %q has a test case with empty id", ErrInvalid, p.ID)
		}
		if seen[tc.ID] {
			return fmt.Errorf("%w: problem %q has duplicate test case id %q", ErrInvalid, p.ID, tc.ID)
		}
		if tc.Visibility != "" && tc.Visibility != Public && tc.Visibility != Hidden {
			return fmt.Errorf("%w: test case %q of %q has unknown visibility %q", ErrInvalid, tc.ID, p.ID, tc.Visibility)
		}
		seen[tc.ID] = true
	}
	return nil
}
