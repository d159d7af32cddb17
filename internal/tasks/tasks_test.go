package tasks

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/swarmboard/swarmboard/internal/directory"
	"github.com/swarmboard/swarmboard/internal/store"
)

type fixture struct {
	store *store.Store
	dir   *directory.Directory
	tasks *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(store.NewFileBackend(filepath.Join(t.TempDir(), "database.json")))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	dir := directory.New(st, nil)
	return &fixture{store: st, dir: dir, tasks: New(st, dir, nil)}
}

func (f *fixture) agent(t *testing.T, name string) *store.Agent {
	t.Helper()
	a, err := f.dir.Register(name, nil, "")
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return a
}

func TestCreateRequiresRegisteredCreator(t *testing.T) {
	f := newFixture(t)

	if _, err := f.tasks.Create("t", "", 42, 0); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected ErrAgentNotFound, got %v", err)
	}

	// The rejected creation must not consume a task id.
	a := f.agent(t, "a")
	task, err := f.tasks.Create("t", "", a.ID, 0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != 1 {
		t.Errorf("first accepted task got id %d, want 1", task.ID)
	}
	if task.Status != store.TaskPending {
		t.Errorf("new task status = %s, want pending", task.Status)
	}
	if task.AssignedAgentID != nil {
		t.Error("new task must be unassigned")
	}
	if task.CreatorName == nil || *task.CreatorName != "a" {
		t.Errorf("creator name not resolved: %v", task.CreatorName)
	}
}

func TestAssignTransitions(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")
	b := f.agent(t, "b")
	task, _ := f.tasks.Create("t", "", a.ID, 0)

	got, err := f.tasks.Assign(task.ID, b.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if got.Status != store.TaskInProgress {
		t.Errorf("status = %s, want in_progress", got.Status)
	}
	if got.AssignedAgentID == nil || *got.AssignedAgentID != b.ID {
		t.Errorf("assigned agent = %v, want %d", got.AssignedAgentID, b.ID)
	}
	if got.AssignedName == nil || *got.AssignedName != "b" {
		t.Errorf("assigned name = %v", got.AssignedName)
	}

	if _, err := f.tasks.Assign(task.ID, a.ID); !errors.Is(err, ErrNotAssignable) {
		t.Errorf("re-assign of in_progress task: got %v, want ErrNotAssignable", err)
	}
	if _, err := f.tasks.Assign(999, a.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("assign of missing task: got %v", err)
	}

	other, _ := f.tasks.Create("u", "", a.ID, 0)
	if _, err := f.tasks.Assign(other.ID, 999); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("assign to missing agent: got %v", err)
	}
	if fresh, _ := f.tasks.Get(other.ID); fresh.Status != store.TaskPending {
		t.Error("failed assign must leave the task pending")
	}
}

func TestAutoAssignPicksLeastLoaded(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")
	b := f.agent(t, "b")

	// Load up a with one open task.
	busywork, _ := f.tasks.Create("busywork", "", a.ID, 0)
	if _, err := f.tasks.Assign(busywork.ID, a.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	task, _ := f.tasks.Create("t", "", a.ID, 0)
	got, err := f.tasks.AutoAssign(task.ID)
	if err != nil {
		t.Fatalf("autoassign: %v", err)
	}
	if *got.AssignedAgentID != b.ID {
		t.Errorf("autoassign picked %d, want least-loaded %d", *got.AssignedAgentID, b.ID)
	}
}

func TestAutoAssignIgnoresCompletedLoad(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")
	b := f.agent(t, "b")

	done, _ := f.tasks.Create("done", "", a.ID, 0)
	f.tasks.Assign(done.ID, b.ID)
	if _, err := f.tasks.Complete(done.ID, nil); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Both agents now carry zero open tasks; the tie goes to whoever was
	// active most recently.
	time.Sleep(2 * time.Millisecond)
	if _, err := f.dir.SetStatus(b.ID, store.AgentOnline); err != nil {
		t.Fatalf("set status: %v", err)
	}

	task, _ := f.tasks.Create("t", "", a.ID, 0)
	got, err := f.tasks.AutoAssign(task.ID)
	if err != nil {
		t.Fatalf("autoassign: %v", err)
	}
	if *got.AssignedAgentID != b.ID {
		t.Errorf("tie should go to most recently active agent %d, got %d",
			b.ID, *got.AssignedAgentID)
	}
}

func TestAutoAssignWithNobodyOnline(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")
	task, _ := f.tasks.Create("t", "", a.ID, 0)
	if _, err := f.dir.Disconnect(a.ID); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	if _, err := f.tasks.AutoAssign(task.ID); !errors.Is(err, ErrNoAvailableAgents) {
		t.Errorf("expected ErrNoAvailableAgents, got %v", err)
	}
	if _, err := f.tasks.AutoAssign(999); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestCompleteStampsAndGuards(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")
	task, _ := f.tasks.Create("t", "", a.ID, 0)

	got, err := f.tasks.Complete(task.ID, map[string]any{"exit": 0})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != store.TaskCompleted {
		t.Errorf("status = %s", got.Status)
	}
	if got.CompletedAt == nil || got.CompletedAt.IsZero() {
		t.Error("completed_at not stamped")
	}

	if _, err := f.tasks.Complete(task.ID, nil); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("re-complete: got %v, want ErrAlreadyCompleted", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")
	task, _ := f.tasks.Create("t", "", a.ID, 0)

	if _, err := f.tasks.UpdateStatus(task.ID, "paused"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("invalid status: got %v", err)
	}

	got, err := f.tasks.UpdateStatus(task.ID, store.TaskCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != store.TaskCancelled {
		t.Errorf("status = %s", got.Status)
	}
	if got.CompletedAt != nil {
		t.Error("cancellation must not stamp completed_at")
	}

	done, err := f.tasks.UpdateStatus(task.ID, store.TaskCompleted)
	if err != nil {
		t.Fatalf("complete via status: %v", err)
	}
	if done.CompletedAt == nil {
		t.Error("completed_at not stamped on status transition")
	}
	if _, err := f.tasks.UpdateStatus(task.ID, store.TaskCompleted); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("re-complete via status: got %v", err)
	}
}

func TestPendingOrdering(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")

	low, _ := f.tasks.Create("low", "", a.ID, 1)
	time.Sleep(2 * time.Millisecond)
	highOld, _ := f.tasks.Create("high-old", "", a.ID, 5)
	time.Sleep(2 * time.Millisecond)
	highNew, _ := f.tasks.Create("high-new", "", a.ID, 5)

	pending := f.tasks.Pending()
	if len(pending) != 3 {
		t.Fatalf("pending = %d tasks", len(pending))
	}
	want := []int64{highOld.ID, highNew.ID, low.ID}
	for i, task := range pending {
		if task.ID != want[i] {
			t.Fatalf("pending[%d] = %d, want %d", i, task.ID, want[i])
		}
	}
}

func TestEnrichmentResolvesNamesLive(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")
	task, _ := f.tasks.Create("t", "", a.ID, 0)

	if err := f.dir.Delete(a.ID); err != nil {
		t.Fatalf("delete agent: %v", err)
	}
	got, err := f.tasks.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CreatorName != nil {
		t.Errorf("creator name should be nil after agent deletion, got %q", *got.CreatorName)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")
	task, _ := f.tasks.Create("t", "", a.ID, 0)

	if err := f.tasks.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.tasks.Get(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("deleted task still readable: %v", err)
	}
	if err := f.tasks.Delete(task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("double delete: got %v", err)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	a := f.agent(t, "a")

	t1, _ := f.tasks.Create("1", "", a.ID, 0)
	t2, _ := f.tasks.Create("2", "", a.ID, 0)
	f.tasks.Create("3", "", a.ID, 0)
	f.tasks.Assign(t1.ID, a.ID)
	f.tasks.Complete(t1.ID, nil)
	f.tasks.UpdateStatus(t2.ID, store.TaskCancelled)

	stats := f.tasks.Stats()
	want := Stats{Total: 3, Pending: 1, InProgress: 0, Completed: 1, Cancelled: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
