package innovation

import (
	"strings"
	"testing"

	"github.com/swarmboard/swarmboard/internal/store"
)

func TestScoreIsDeterministic(t *testing.T) {
	candidate := &store.Innovation{
		Title:          "fast vector index",
		Description:    "an algorithm for approximate nearest neighbour search",
		Category:       "ai",
		AgentsInvolved: []int64{1, 2},
	}
	first, firstComp := Score(candidate, nil)
	second, secondComp := Score(candidate, nil)
	if first != second || firstComp != secondComp {
		t.Errorf("identical inputs scored differently: %d/%+v vs %d/%+v",
			first, firstComp, second, secondComp)
	}
}

func TestScoreBaseline(t *testing.T) {
	// Nothing on the platform, no keywords, no collaborators.
	score, comp := Score(&store.Innovation{Title: "x"}, nil)
	want := Components{Novelty: 3, Complexity: 1, Impact: 1.5, Collaboration: 0.5}
	if comp != want {
		t.Errorf("components = %+v, want %+v", comp, want)
	}
	if score != 6 {
		t.Errorf("score = %d, want 6", score)
	}
}

func TestScoreMaximumIsCappedAtTen(t *testing.T) {
	sentence := "The algorithm uses a layered architecture and a streaming pipeline to automate code review. "
	candidate := &store.Innovation{
		Meta:           store.Meta{ID: 1},
		Title:          "deep review engine",
		Description:    strings.Repeat(sentence, 6),
		Category:       "ai",
		AgentsInvolved: []int64{1, 2, 3, 4, 5},
	}

	score, comp := Score(candidate, []*store.Innovation{candidate})
	want := Components{Novelty: 3, Complexity: 2, Impact: 2.5, Collaboration: 2}
	if comp != want {
		t.Fatalf("components = %+v, want %+v", comp, want)
	}
	if score != 10 {
		t.Errorf("score = %d, want 10", score)
	}
}

func TestNoveltyCountsSimilarInnovations(t *testing.T) {
	candidate := &store.Innovation{Meta: store.Meta{ID: 1}, Title: "fast vector index cache"}
	bySharedWords := &store.Innovation{Meta: store.Meta{ID: 2}, Title: "vector index rebuild"}
	byCategory := &store.Innovation{Meta: store.Meta{ID: 3}, Title: "unrelated", Category: "tools"}

	tests := []struct {
		name        string
		candidate   *store.Innovation
		all         []*store.Innovation
		wantNovelty float64
	}{
		{"no similar", candidate, []*store.Innovation{candidate}, 3.0},
		{"one by shared title words", candidate,
			[]*store.Innovation{candidate, bySharedWords}, 2.5},
		{"one by category", &store.Innovation{Meta: store.Meta{ID: 1}, Title: "zzz", Category: "tools"},
			[]*store.Innovation{byCategory}, 2.5},
		{"two similar", candidate,
			[]*store.Innovation{candidate, bySharedWords,
				{Meta: store.Meta{ID: 4}, Title: "another vector index"}}, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assessNovelty(tt.candidate, tt.all); got != tt.wantNovelty {
				t.Errorf("novelty = %v, want %v", got, tt.wantNovelty)
			}
		})
	}
}

func TestNoveltyIgnoresEmptyCategoryMatch(t *testing.T) {
	candidate := &store.Innovation{Meta: store.Meta{ID: 1}, Title: "zzz"}
	other := &store.Innovation{Meta: store.Meta{ID: 2}, Title: "yyy"}
	if got := assessNovelty(candidate, []*store.Innovation{other}); got != 3.0 {
		t.Errorf("two empty categories must not count as similar, novelty = %v", got)
	}
}

func TestCollaborationCountsDistinctAgents(t *testing.T) {
	tests := []struct {
		agents []int64
		want   float64
	}{
		{nil, 0.5},
		{[]int64{7}, 0.5},
		{[]int64{7, 7, 8}, 1.0},
		{[]int64{1, 2, 3}, 1.5},
		{[]int64{1, 2, 3, 4, 5}, 2.0},
		{[]int64{1, 2, 3, 4, 5, 6, 7}, 2.0},
	}
	for _, tt := range tests {
		got := assessCollaboration(&store.Innovation{AgentsInvolved: tt.agents})
		if got != tt.want {
			t.Errorf("agents %v: collaboration = %v, want %v", tt.agents, got, tt.want)
		}
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		title, description, want string
	}{
		{"CI workflow runner", "", "automation"},
		{"release automation", "", "automation"},
		{"log grep utility", "", "tools"},
		{"training a model", "", "ai-ml"},
		{"billing api", "", "services"},
		{"admin dashboard", "", "interfaces"},
		{"churn analytics", "", "data-analytics"},
		{"something else entirely", "", "general"},
		// Rule priority: automation outranks tools.
		{"workflow tool", "", "automation"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.title, tt.description); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestStarRatingAndLevel(t *testing.T) {
	if got := StarRating(3); got != "⭐⭐⭐" {
		t.Errorf("StarRating(3) = %q", got)
	}
	if got := StarRating(-1); got != "" {
		t.Errorf("StarRating(-1) = %q", got)
	}
	if got := StarRating(15); got != strings.Repeat("⭐", 10) {
		t.Errorf("StarRating(15) = %q", got)
	}

	levels := []struct {
		score int
		want  string
	}{
		{10, "🚀 LEGENDARY"}, {9, "🚀 LEGENDARY"},
		{8, "✨ AMAZING"}, {7, "✨ AMAZING"},
		{6, "👍 IMPRESSIVE"}, {5, "👍 IMPRESSIVE"},
		{4, "👌 GOOD"}, {3, "👌 GOOD"},
		{2, "🌱 PROMISING"}, {0, "🌱 PROMISING"},
	}
	for _, tt := range levels {
		if got := Level(tt.score); got != tt.want {
			t.Errorf("Level(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
