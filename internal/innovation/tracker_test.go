package innovation

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/swarmboard/swarmboard/internal/store"
)

func newTestTracker(t *testing.T) (*Tracker, *store.Store) {
	t.Helper()
	st, err := store.Open(store.NewFileBackend(filepath.Join(t.TempDir(), "database.json")))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return New(st, nil), st
}

func TestCreatePersistsScoreAndCategory(t *testing.T) {
	tr, _ := newTestTracker(t)

	inn, err := tr.Create("release workflow runner", "runs the deploy steps", "", []int64{1}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inn.Category != "automation" {
		t.Errorf("derived category = %q, want automation", inn.Category)
	}
	if inn.WowScore == 0 {
		t.Error("wow score must be computed at creation")
	}

	// The score is on the stored record, not just the returned copy.
	stored, err := tr.Get(inn.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.WowScore != inn.WowScore {
		t.Errorf("stored score %d != returned score %d", stored.WowScore, inn.WowScore)
	}
}

func TestCreateKeepsExplicitCategory(t *testing.T) {
	tr, _ := newTestTracker(t)

	inn, err := tr.Create("release workflow runner", "", "security", nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inn.Category != "security" {
		t.Errorf("category = %q, want the explicit one", inn.Category)
	}
	if inn.AgentsInvolved == nil || inn.OutputData == nil {
		t.Error("nil inputs must normalize to empty, not nil")
	}
}

func TestUpvoteIncrementsByOne(t *testing.T) {
	tr, _ := newTestTracker(t)

	inn, _ := tr.Create("a thing", "", "general", nil, nil)
	base := inn.WowScore
	for i := 0; i < 3; i++ {
		if _, err := tr.Upvote(inn.ID); err != nil {
			t.Fatalf("upvote %d: %v", i, err)
		}
	}
	got, _ := tr.Get(inn.ID)
	if got.WowScore != base+3 {
		t.Errorf("score after 3 upvotes = %d, want %d", got.WowScore, base+3)
	}

	if _, err := tr.Upvote(999); !errors.Is(err, ErrInnovationNotFound) {
		t.Errorf("upvote missing: got %v", err)
	}
}

func TestTopOrdersByScore(t *testing.T) {
	tr, _ := newTestTracker(t)

	low, _ := tr.Create("plain thing", "", "general", nil, nil)
	time.Sleep(2 * time.Millisecond)
	high, _ := tr.Create("different entry", "", "general", nil, nil)
	for i := 0; i < 4; i++ {
		tr.Upvote(high.ID)
	}

	top := tr.Top(1)
	if len(top) != 1 || top[0].ID != high.ID {
		t.Fatalf("top(1) = %v, want innovation %d", top, high.ID)
	}
	all := tr.Top(10)
	if len(all) != 2 || all[0].ID != high.ID || all[1].ID != low.ID {
		t.Errorf("top(10) order wrong: %v", all)
	}
}

func TestByCategoryIsExact(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.Create("one", "", "tools", nil, nil)
	tr.Create("two", "", "tools", nil, nil)
	tr.Create("three", "", "security", nil, nil)

	if got := tr.ByCategory("tools"); len(got) != 2 {
		t.Errorf("ByCategory(tools) = %d entries, want 2", len(got))
	}
	if got := tr.ByCategory("tool"); len(got) != 0 {
		t.Errorf("category match must be exact, got %d entries", len(got))
	}
}

func TestStats(t *testing.T) {
	tr, st := newTestTracker(t)

	tr.Create("one", "", "tools", nil, nil)
	tr.Create("two", "", "security", nil, nil)
	// A record that never went through Create has no category.
	if _, err := st.Innovations.Insert(&store.Innovation{Title: "raw", WowScore: 4}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	stats := tr.Stats()
	if stats.Total != 3 {
		t.Errorf("total = %d", stats.Total)
	}
	if stats.ByCategory["tools"] != 1 || stats.ByCategory["security"] != 1 ||
		stats.ByCategory["uncategorized"] != 1 {
		t.Errorf("by_category = %v", stats.ByCategory)
	}
	if len(stats.TopInnovations) != 3 {
		t.Errorf("top innovations = %d entries", len(stats.TopInnovations))
	}
	if stats.AverageWowScore == 0 {
		t.Error("average wow score not computed")
	}
}

func TestContributions(t *testing.T) {
	tr, _ := newTestTracker(t)

	tr.Create("one", "", "tools", []int64{1, 2}, nil)
	tr.Create("two", "", "tools", []int64{2}, nil)
	tr.Create("three", "", "tools", []int64{3}, nil)

	got := tr.Contributions(2)
	if got.TotalContributions != 2 || len(got.Innovations) != 2 {
		t.Errorf("contributions = %+v", got)
	}
	if empty := tr.Contributions(9); empty.TotalContributions != 0 {
		t.Errorf("expected no contributions, got %+v", empty)
	}
}

func TestDelete(t *testing.T) {
	tr, _ := newTestTracker(t)

	inn, _ := tr.Create("one", "", "tools", nil, nil)
	if err := tr.Delete(inn.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tr.Get(inn.ID); !errors.Is(err, ErrInnovationNotFound) {
		t.Errorf("deleted innovation still readable: %v", err)
	}
	if err := tr.Delete(inn.ID); !errors.Is(err, ErrInnovationNotFound) {
		t.Errorf("double delete: got %v", err)
	}
}
