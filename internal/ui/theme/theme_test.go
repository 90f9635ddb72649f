package theme

import (
	"strings"
	"testing"
)

func TestBar(t *testing.T) {
	tests := []struct {
		solved, total, width int
		wantFull             int
	}{
		{0, 3, 9, 0},
		{1, 3, 9, 3},
		{3, 3, 9, 9},
		{0, 0, 4, 0},
	}
	for _, tt := range tests {
		bar := Bar(tt.solved, tt.total, tt.width)
		if got := strings.Count(bar, "█"); got != tt.wantFull {
			t.Errorf("Bar(%d,%d,%d) filled = %d, want %d", tt.solved, tt.total, tt.width, got, tt.wantFull)
		}
		if got := strings.Count(bar, "░"); got != tt.width-tt.wantFull {
			t.Errorf("Bar(%d,%d,%d) empty = %d, want %d", tt.solved, tt.total, tt.width, got, tt.width-tt.wantFull)
		}
	}
	if Bar(1, 2, 0) != "" {
		t.Error("zero width bar should be empty")
	}
}

func TestDifficulty(t *testing.T) {
	if Difficulty("Hard").Render("x") != Hard.Render("x") {
		t.Error("Hard badge style mismatch")
	}
	if Difficulty("Unknown").Render("x") != Body.Render("x") {
		t.Error("unknown difficulty should fall back to Body")
	}
}
