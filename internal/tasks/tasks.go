// Package tasks implements the task lifecycle state machine and the
// assignment heuristic.
//
// Lifecycle: pending -> in_progress (assign), in_progress -> completed
// (complete), pending|in_progress -> cancelled (status update). completed and
// cancelled are terminal; re-completing a completed task is rejected.
package tasks

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/swarmboard/swarmboard/internal/bus"
	"github.com/swarmboard/swarmboard/internal/directory"
	"github.com/swarmboard/swarmboard/internal/store"
)

var (
	// ErrTaskNotFound is returned when a task id references nothing.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAgentNotFound is returned when an operation references an agent
	// that does not exist.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrNotAssignable is returned when assigning a task that is not
	// pending.
	ErrNotAssignable = errors.New("task is not available for assignment")
	// ErrAlreadyCompleted is returned when re-completing a completed task.
	ErrAlreadyCompleted = errors.New("task is already completed")
	// ErrInvalidStatus is returned for a status outside the allowed set.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrNoAvailableAgents is returned by auto-assignment when no agent is
	// online.
	ErrNoAvailableAgents = errors.New("no available agents for task assignment")
)

// Coordinator drives the task lifecycle over the store.
type Coordinator struct {
	store     *store.Store
	directory *directory.Directory
	bus       *bus.Bus
}

// New creates a task coordinator. The bus may be nil when no fan-out is
// wanted.
func New(st *store.Store, dir *directory.Directory, b *bus.Bus) *Coordinator {
	return &Coordinator{store: st, directory: dir, bus: b}
}

// Detail is a task enriched with display names resolved live from the agent
// directory. Names are nil when the referenced agent no longer exists; they
// are never stored, so renaming an agent is reflected in historical reads.
type Detail struct {
	store.Task
	CreatorName  *string `json:"creator_name"`
	AssignedName *string `json:"assigned_name"`
}

// Create creates a pending, unassigned task. The creator must be a
// registered agent.
func (c *Coordinator) Create(title, description string, creatorAgentID int64, priority int) (*Detail, error) {
	if _, ok := c.store.Agents.Get(creatorAgentID); !ok {
		return nil, fmt.Errorf("create task: creator %d: %w", creatorAgentID, ErrAgentNotFound)
	}
	task, err := c.store.Tasks.Insert(&store.Task{
		Title:          title,
		Description:    description,
		CreatorAgentID: creatorAgentID,
		Status:         store.TaskPending,
		Priority:       priority,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	detail := c.enrich(task)
	c.publish(bus.EventTaskCreated, detail)
	slog.Info("task created", "task", task.ID, "title", title, "creator", creatorAgentID)
	return detail, nil
}

// Get returns the task with the given id, enriched.
func (c *Coordinator) Get(id int64) (*Detail, error) {
	task, ok := c.store.Tasks.Get(id)
	if !ok {
		return nil, ErrTaskNotFound
	}
	return c.enrich(task), nil
}

// Assign hands a pending task to an agent and moves it to in_progress.
func (c *Coordinator) Assign(taskID, agentID int64) (*Detail, error) {
	task, ok := c.store.Tasks.Get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	if task.Status != store.TaskPending {
		return nil, ErrNotAssignable
	}
	if _, ok := c.store.Agents.Get(agentID); !ok {
		return nil, ErrAgentNotFound
	}
	updated, _, err := c.store.Tasks.Update(taskID, func(t *store.Task) {
		t.AssignedAgentID = &agentID
		t.Status = store.TaskInProgress
	})
	if err != nil {
		return nil, fmt.Errorf("assign task %d: %w", taskID, err)
	}
	detail := c.enrich(updated)
	c.publish(bus.EventTaskAssigned, detail)
	slog.Info("task assigned", "task", taskID, "agent", agentID)
	return detail, nil
}

// AutoAssign hands the task to the least-loaded online agent, where load is
// the agent's count of not-completed tasks. Ties go to the agent with the
// most recent last_seen.
func (c *Coordinator) AutoAssign(taskID int64) (*Detail, error) {
	if _, ok := c.store.Tasks.Get(taskID); !ok {
		return nil, ErrTaskNotFound
	}
	online := c.directory.Online()
	if len(online) == 0 {
		return nil, ErrNoAvailableAgents
	}

	best := online[0]
	bestLoad := c.agentLoad(best.ID)
	for _, agent := range online[1:] {
		// Strict comparison keeps the earlier (more recently active)
		// agent on ties.
		if load := c.agentLoad(agent.ID); load < bestLoad {
			best = agent
			bestLoad = load
		}
	}
	return c.Assign(taskID, best.ID)
}

func (c *Coordinator) agentLoad(agentID int64) int {
	return c.store.Tasks.Count(func(t *store.Task) bool {
		return t.AssignedAgentID != nil && *t.AssignedAgentID == agentID &&
			t.Status != store.TaskCompleted
	})
}

// Complete marks a task completed and stamps completed_at. The result payload
// is accepted for the completion event but is not persisted on the task
// record; callers must not rely on it being stored.
func (c *Coordinator) Complete(taskID int64, result map[string]any) (*Detail, error) {
	task, ok := c.store.Tasks.Get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	if task.Status == store.TaskCompleted {
		return nil, ErrAlreadyCompleted
	}
	now := time.Now().UTC()
	updated, _, err := c.store.Tasks.Update(taskID, func(t *store.Task) {
		t.Status = store.TaskCompleted
		t.CompletedAt = &now
	})
	if err != nil {
		return nil, fmt.Errorf("complete task %d: %w", taskID, err)
	}
	detail := c.enrich(updated)
	c.publish(bus.EventTaskCompleted, detail)
	slog.Info("task completed", "task", taskID, "result_fields", len(result))
	return detail, nil
}

// UpdateStatus writes a lifecycle state directly. It does not enforce the
// assign-then-progress discipline; this is the intended path for
// cancellation. Re-completing an already-completed task is still rejected.
func (c *Coordinator) UpdateStatus(taskID int64, status store.TaskStatus) (*Detail, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	task, ok := c.store.Tasks.Get(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}
	if status == store.TaskCompleted && task.Status == store.TaskCompleted {
		return nil, ErrAlreadyCompleted
	}
	now := time.Now().UTC()
	updated, _, err := c.store.Tasks.Update(taskID, func(t *store.Task) {
		t.Status = status
		if status == store.TaskCompleted && t.CompletedAt == nil {
			t.CompletedAt = &now
		}
	})
	if err != nil {
		return nil, fmt.Errorf("update task %d status: %w", taskID, err)
	}
	return c.enrich(updated), nil
}

// All returns every task, most recently created first.
func (c *Coordinator) All() []*Detail {
	all := c.store.Tasks.All()
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return c.enrichAll(all)
}

// Pending returns pending tasks, highest priority first, oldest first within
// a priority.
func (c *Coordinator) Pending() []*Detail {
	pending := c.store.Tasks.FindAll(func(t *store.Task) bool {
		return t.Status == store.TaskPending
	})
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority > pending[j].Priority
		}
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.Before(pending[j].CreatedAt)
		}
		return pending[i].ID < pending[j].ID
	})
	return c.enrichAll(pending)
}

// ByAgent returns the tasks assigned to an agent, most recently created
// first.
func (c *Coordinator) ByAgent(agentID int64) []*Detail {
	assigned := c.store.Tasks.FindAll(func(t *store.Task) bool {
		return t.AssignedAgentID != nil && *t.AssignedAgentID == agentID
	})
	sort.Slice(assigned, func(i, j int) bool {
		if !assigned[i].CreatedAt.Equal(assigned[j].CreatedAt) {
			return assigned[i].CreatedAt.After(assigned[j].CreatedAt)
		}
		return assigned[i].ID > assigned[j].ID
	})
	return c.enrichAll(assigned)
}

// Delete removes a task record.
func (c *Coordinator) Delete(id int64) error {
	ok, err := c.store.Tasks.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

// Stats summarizes tasks by lifecycle state.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// Stats returns counts by status.
func (c *Coordinator) Stats() Stats {
	var stats Stats
	for _, t := range c.store.Tasks.All() {
		stats.Total++
		switch t.Status {
		case store.TaskPending:
			stats.Pending++
		case store.TaskInProgress:
			stats.InProgress++
		case store.TaskCompleted:
			stats.Completed++
		case store.TaskCancelled:
			stats.Cancelled++
		}
	}
	return stats
}

func (c *Coordinator) enrich(task *store.Task) *Detail {
	detail := &Detail{Task: *task}
	if creator, ok := c.store.Agents.Get(task.CreatorAgentID); ok {
		detail.CreatorName = &creator.Name
	}
	if task.AssignedAgentID != nil {
		if assigned, ok := c.store.Agents.Get(*task.AssignedAgentID); ok {
			detail.AssignedName = &assigned.Name
		}
	}
	return detail
}

func (c *Coordinator) enrichAll(list []*store.Task) []*Detail {
	out := make([]*Detail, len(list))
	for i, t := range list {
		out[i] = c.enrich(t)
	}
	return out
}

func (c *Coordinator) publish(evtType bus.EventType, payload any) {
	if c.bus != nil {
		c.bus.Publish(evtType, payload)
	}
}
