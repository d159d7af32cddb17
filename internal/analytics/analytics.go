// Package analytics derives read-only platform-wide aggregates from the
// entity store.
package analytics

import (
	"errors"
	"slices"
	"sort"

	"github.com/swarmboard/swarmboard/internal/store"
)

// ErrAgentNotFound is returned when a performance query references an unknown
// agent.
var ErrAgentNotFound = errors.New("agent not found")

// Service computes aggregates. It never mutates the store.
type Service struct {
	store *store.Store
}

// New creates an analytics service over the given store.
func New(st *store.Store) *Service {
	return &Service{store: st}
}

// Overview is the platform-wide snapshot.
type Overview struct {
	TotalAgents        int     `json:"total_agents"`
	OnlineAgents       int     `json:"online_agents"`
	TotalTasks         int     `json:"total_tasks"`
	CompletedTasks     int     `json:"completed_tasks"`
	PendingTasks       int     `json:"pending_tasks"`
	TotalDiscussions   int     `json:"total_discussions"`
	ActiveDiscussions  int     `json:"active_discussions"`
	TotalInnovations   int     `json:"total_innovations"`
	TotalMessages      int     `json:"total_messages"`
	TaskCompletionRate float64 `json:"task_completion_rate"`
	AvgTasksPerAgent   float64 `json:"avg_tasks_per_agent"`
	TotalWowScore      int     `json:"total_wow_score"`
}

// Overview returns current totals and derived rates.
func (s *Service) Overview() Overview {
	o := Overview{
		TotalAgents: s.store.Agents.Count(nil),
		OnlineAgents: s.store.Agents.Count(func(a *store.Agent) bool {
			return a.Status == store.AgentOnline
		}),
		TotalTasks: s.store.Tasks.Count(nil),
		CompletedTasks: s.store.Tasks.Count(func(t *store.Task) bool {
			return t.Status == store.TaskCompleted
		}),
		PendingTasks: s.store.Tasks.Count(func(t *store.Task) bool {
			return t.Status == store.TaskPending
		}),
		TotalDiscussions: s.store.Discussions.Count(nil),
		ActiveDiscussions: s.store.Discussions.Count(func(d *store.Discussion) bool {
			return d.Status == store.DiscussionActive
		}),
		TotalInnovations: s.store.Innovations.Count(nil),
		TotalMessages:    s.store.Messages.Count(nil),
	}
	if o.TotalTasks > 0 {
		o.TaskCompletionRate = float64(o.CompletedTasks) / float64(o.TotalTasks) * 100
	}
	if o.TotalAgents > 0 {
		o.AvgTasksPerAgent = float64(o.TotalTasks) / float64(o.TotalAgents)
	}
	for _, inn := range s.store.Innovations.All() {
		o.TotalWowScore += inn.WowScore
	}
	return o
}

// Performance summarizes one agent's track record.
type Performance struct {
	Agent          string  `json:"agent"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	PendingTasks   int     `json:"pending_tasks"`
	CompletionRate float64 `json:"completion_rate"`
	Innovations    int     `json:"innovations"`
	TotalWowScore  int     `json:"total_wow_score"`
}

// AgentPerformance returns task and innovation aggregates for one agent.
func (s *Service) AgentPerformance(agentID int64) (*Performance, error) {
	agent, ok := s.store.Agents.Get(agentID)
	if !ok {
		return nil, ErrAgentNotFound
	}
	perf := &Performance{Agent: agent.Name}
	for _, t := range s.store.Tasks.All() {
		if t.AssignedAgentID == nil || *t.AssignedAgentID != agentID {
			continue
		}
		perf.TotalTasks++
		switch t.Status {
		case store.TaskCompleted:
			perf.CompletedTasks++
		case store.TaskPending:
			perf.PendingTasks++
		}
	}
	if perf.TotalTasks > 0 {
		perf.CompletionRate = float64(perf.CompletedTasks) / float64(perf.TotalTasks) * 100
	}
	for _, inn := range s.store.Innovations.All() {
		if slices.Contains(inn.AgentsInvolved, agentID) {
			perf.Innovations++
			perf.TotalWowScore += inn.WowScore
		}
	}
	return perf, nil
}

// DayActivity counts creations on one calendar day (UTC).
type DayActivity struct {
	Date        string `json:"date"`
	Agents      int    `json:"agents"`
	Tasks       int    `json:"tasks"`
	Innovations int    `json:"innovations"`
}

// Timeline returns per-day creation counts, oldest day first.
func (s *Service) Timeline() []DayActivity {
	days := map[string]*DayActivity{}
	day := func(date string) *DayActivity {
		if d, ok := days[date]; ok {
			return d
		}
		d := &DayActivity{Date: date}
		days[date] = d
		return d
	}
	for _, a := range s.store.Agents.All() {
		day(a.CreatedAt.UTC().Format("2006-01-02")).Agents++
	}
	for _, t := range s.store.Tasks.All() {
		day(t.CreatedAt.UTC().Format("2006-01-02")).Tasks++
	}
	for _, inn := range s.store.Innovations.All() {
		day(inn.CreatedAt.UTC().Format("2006-01-02")).Innovations++
	}
	out := make([]DayActivity, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
