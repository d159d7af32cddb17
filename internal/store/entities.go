// Package store provides the persistent entity store for the coordination
// engine: one keyed collection per entity type, per-type monotonic identity
// counters, and whole-document write-through persistence.
package store

import "time"

// Kind names an entity collection inside the persisted document.
type Kind string

const (
	KindAgents      Kind = "agents"
	KindTasks       Kind = "tasks"
	KindDiscussions Kind = "discussions"
	KindMessages    Kind = "messages"
	KindInnovations Kind = "innovations"
)

// Meta carries the fields every stored entity shares. ID is assigned from the
// per-kind counter on insert; CreatedAt is stamped once and never changed.
type Meta struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *Meta) meta() *Meta { return m }

// AgentStatus is an agent presence state.
type AgentStatus string

const (
	AgentOnline  AgentStatus = "online"
	AgentOffline AgentStatus = "offline"
	AgentBusy    AgentStatus = "busy"
)

// Valid reports whether s is one of the allowed presence states.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentOnline, AgentOffline, AgentBusy:
		return true
	}
	return false
}

// Agent is a registered autonomous participant. Name is unique and
// case-sensitive. An empty Endpoint means the agent is local.
type Agent struct {
	Meta
	Name         string      `json:"name"`
	Capabilities []string    `json:"capabilities"`
	Endpoint     string      `json:"endpoint,omitempty"`
	Status       AgentStatus `json:"status"`
	LastSeen     time.Time   `json:"last_seen"`
}

// TaskStatus is a task lifecycle state.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the allowed lifecycle states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Task is a unit of work with a four-state lifecycle, optionally assigned to
// one agent. AssignedAgentID is nil until assignment.
type Task struct {
	Meta
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CreatorAgentID  int64      `json:"creator_agent_id"`
	AssignedAgentID *int64     `json:"assigned_agent_id"`
	Status          TaskStatus `json:"status"`
	Priority        int        `json:"priority"`
	CompletedAt     *time.Time `json:"completed_at"`
}

// DiscussionStatus is a discussion lifecycle state. The transition is one-way:
// active discussions may close, closed ones never reopen.
type DiscussionStatus string

const (
	DiscussionActive DiscussionStatus = "active"
	DiscussionClosed DiscussionStatus = "closed"
)

// Discussion is an append-only message thread.
type Discussion struct {
	Meta
	Topic  string           `json:"topic"`
	Status DiscussionStatus `json:"status"`
}

// Message is a single post in a discussion. Messages are never edited or
// reordered once created.
type Message struct {
	Meta
	DiscussionID int64  `json:"discussion_id"`
	AgentID      int64  `json:"agent_id"`
	Content      string `json:"content"`
}

// Innovation is a recorded contribution. WowScore starts at the value computed
// by the scoring engine at creation and grows by one per upvote.
type Innovation struct {
	Meta
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	AgentsInvolved []int64        `json:"agents_involved"`
	OutputData     map[string]any `json:"output_data"`
	WowScore       int            `json:"wow_score"`
}
