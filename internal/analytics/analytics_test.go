package analytics

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/swarmboard/swarmboard/internal/directory"
	"github.com/swarmboard/swarmboard/internal/discussion"
	"github.com/swarmboard/swarmboard/internal/innovation"
	"github.com/swarmboard/swarmboard/internal/store"
	"github.com/swarmboard/swarmboard/internal/tasks"
)

type fixture struct {
	store       *store.Store
	dir         *directory.Directory
	tasks       *tasks.Coordinator
	discussions *discussion.Coordinator
	innovations *innovation.Tracker
	analytics   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(store.NewFileBackend(filepath.Join(t.TempDir(), "database.json")))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	dir := directory.New(st, nil)
	return &fixture{
		store:       st,
		dir:         dir,
		tasks:       tasks.New(st, dir, nil),
		discussions: discussion.New(st, dir, nil),
		innovations: innovation.New(st, nil),
		analytics:   New(st),
	}
}

func TestOverview(t *testing.T) {
	f := newFixture(t)

	a, _ := f.dir.Register("a", nil, "")
	b, _ := f.dir.Register("b", nil, "")
	f.dir.Disconnect(b.ID)

	t1, _ := f.tasks.Create("1", "", a.ID, 0)
	f.tasks.Create("2", "", a.ID, 0)
	f.tasks.Assign(t1.ID, a.ID)
	f.tasks.Complete(t1.ID, nil)

	disc, _ := f.discussions.Create("retro")
	f.discussions.AddMessage(disc.ID, a.ID, "hi")
	f.innovations.Create("thing", "", "tools", []int64{a.ID}, nil)

	o := f.analytics.Overview()
	if o.TotalAgents != 2 || o.OnlineAgents != 1 {
		t.Errorf("agents = %d/%d", o.TotalAgents, o.OnlineAgents)
	}
	if o.TotalTasks != 2 || o.CompletedTasks != 1 || o.PendingTasks != 1 {
		t.Errorf("tasks = %d/%d/%d", o.TotalTasks, o.CompletedTasks, o.PendingTasks)
	}
	if o.TaskCompletionRate != 50 {
		t.Errorf("completion rate = %v, want 50", o.TaskCompletionRate)
	}
	if o.AvgTasksPerAgent != 1 {
		t.Errorf("avg tasks per agent = %v, want 1", o.AvgTasksPerAgent)
	}
	if o.TotalDiscussions != 1 || o.ActiveDiscussions != 1 || o.TotalMessages != 1 {
		t.Errorf("discussions = %d/%d messages=%d",
			o.TotalDiscussions, o.ActiveDiscussions, o.TotalMessages)
	}
	if o.TotalInnovations != 1 || o.TotalWowScore == 0 {
		t.Errorf("innovations = %d wow=%d", o.TotalInnovations, o.TotalWowScore)
	}
}

func TestOverviewOnEmptyStore(t *testing.T) {
	f := newFixture(t)
	o := f.analytics.Overview()
	if o.TaskCompletionRate != 0 || o.AvgTasksPerAgent != 0 {
		t.Errorf("rates on empty store = %v/%v", o.TaskCompletionRate, o.AvgTasksPerAgent)
	}
}

func TestAgentPerformance(t *testing.T) {
	f := newFixture(t)
	a, _ := f.dir.Register("a", nil, "")
	b, _ := f.dir.Register("b", nil, "")

	t1, _ := f.tasks.Create("1", "", a.ID, 0)
	t2, _ := f.tasks.Create("2", "", a.ID, 0)
	other, _ := f.tasks.Create("3", "", a.ID, 0)
	f.tasks.Assign(t1.ID, a.ID)
	f.tasks.Complete(t1.ID, nil)
	f.tasks.Assign(t2.ID, a.ID)
	f.tasks.Assign(other.ID, b.ID)

	f.innovations.Create("thing", "", "tools", []int64{a.ID}, nil)
	f.innovations.Create("solo", "", "tools", []int64{b.ID}, nil)

	perf, err := f.analytics.AgentPerformance(a.ID)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if perf.Agent != "a" {
		t.Errorf("agent = %q", perf.Agent)
	}
	if perf.TotalTasks != 2 || perf.CompletedTasks != 1 {
		t.Errorf("tasks = %d/%d", perf.TotalTasks, perf.CompletedTasks)
	}
	if perf.CompletionRate != 50 {
		t.Errorf("completion rate = %v", perf.CompletionRate)
	}
	if perf.Innovations != 1 || perf.TotalWowScore == 0 {
		t.Errorf("innovations = %d wow=%d", perf.Innovations, perf.TotalWowScore)
	}

	if _, err := f.analytics.AgentPerformance(999); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("missing agent: got %v", err)
	}
}

func TestTimeline(t *testing.T) {
	f := newFixture(t)
	a, _ := f.dir.Register("a", nil, "")
	f.tasks.Create("1", "", a.ID, 0)
	f.tasks.Create("2", "", a.ID, 0)
	f.innovations.Create("thing", "", "tools", nil, nil)

	days := f.analytics.Timeline()
	if len(days) != 1 {
		t.Fatalf("timeline spans %d days, want 1", len(days))
	}
	today := days[0]
	if today.Agents != 1 || today.Tasks != 2 || today.Innovations != 1 {
		t.Errorf("day activity = %+v", today)
	}
	if today.Date == "" {
		t.Error("date not rendered")
	}
}
