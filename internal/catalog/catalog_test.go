package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	wantOrder := []string{"two-sum", "palindrome-number", "reverse-linked-list"}
	for i, p := range c.All() {
		if p.ID != wantOrder[i] {
			t.Errorf("All()[%d].ID = %q, want %q", i, p.ID, wantOrder[i])
		}
		if len(p.TestCases) == 0 {
			t.Errorf("problem %q has no test cases", p.ID)
		}
		if p.StarterCode == "" {
			t.Errorf("problem %q has no starter code", p.ID)
		}
	}

	p, err := c.Get("reverse-linked-list")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Difficulty != Medium || p.Category != "Linked List" {
		t.Errorf("got %s/%s, want Medium/Linked List", p.Difficulty, p.Category)
	}
}

func TestGetNotFound(t *testing.T) {
	_, err := Default().Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Title = "mutated"
	p, _ := c.Get(all[0].ID)
	if p.Title == "mutated" {
		t.Fatal("All() exposed internal slice")
	}
}

func TestPublicTestCases(t *testing.T) {
	p, err := Default().Get("two-sum")
	if err != nil {
		t.Fatal(err)
	}
	pub := p.PublicTestCases()
	if len(pub) != 2 {
		t.Fatalf("public cases = %d, want 2", len(pub))
	}
	for _, tc := range pub {
		if tc.IsHidden() {
			t.Errorf("hidden case %q returned as public", tc.ID)
		}
	}
	if tc, ok := p.TestCase("two-sum-3"); !ok || !tc.IsHidden() {
		t.Errorf("TestCase(two-sum-3) = %+v, %v", tc, ok)
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(`
[[problems]]
id = "p"
title = "P"
  [[problems.test_cases]]
  id = "t1"
  input = "1"
  expected_output = "1"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, _ := c.Get("p")
	if p.Difficulty != Easy {
		t.Errorf("Difficulty = %q, want Easy", p.Difficulty)
	}
	if p.TestCases[0].Visibility != Public {
		t.Errorf("Visibility = %q, want public", p.TestCases[0].Visibility)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty id", `[[problems]]
id = ""`},
		{"duplicate problem", `[[problems]]
id = "a"
[[problems]]
id = "a"`},
		{"bad difficulty", `[[problems]]
id = "a"
difficulty = "Insane"`},
		{"duplicate case", `[[problems]]
id = "a"
  [[problems.test_cases]]
  id = "x"
  [[problems.test_cases]]
  id = "x"`},
		{"bad visibility", `[[problems]]
id = "a"
  [[problems.test_cases]]
  id = "x"
  visibility = "secret"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseMalformedTOML(t *testing.T) {
	if _, err := Parse([]byte("[[problems")); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	doc := "[[problems]]\nid = \"only\"\ntitle = \"Only\"\ndifficulty = \"Hard\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
