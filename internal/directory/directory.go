// Package directory manages agent registration, presence and capability
// lookup.
package directory

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/swarmboard/swarmboard/internal/bus"
	"github.com/swarmboard/swarmboard/internal/store"
)

var (
	// ErrAgentNotFound is returned when an agent id references nothing.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrInvalidStatus is returned for a status outside the allowed set.
	ErrInvalidStatus = errors.New("invalid agent status")
)

// Directory is the agent registry. All state lives in the store; the
// directory itself is stateless.
type Directory struct {
	store *store.Store
	bus   *bus.Bus
}

// New creates a directory over the given store. The bus may be nil when no
// fan-out is wanted.
func New(st *store.Store, b *bus.Bus) *Directory {
	return &Directory{store: st, bus: b}
}

// Register creates an agent with the given name, or brings an existing agent
// of that name back online. Re-registration is idempotent: it refreshes
// last_seen and leaves identity, capabilities and created_at untouched.
func (d *Directory) Register(name string, capabilities []string, endpoint string) (*store.Agent, error) {
	existing, ok := d.store.Agents.Find(func(a *store.Agent) bool { return a.Name == name })
	if ok {
		agent, _, err := d.store.Agents.Update(existing.ID, func(a *store.Agent) {
			a.Status = store.AgentOnline
			a.LastSeen = time.Now().UTC()
		})
		if err != nil {
			return nil, fmt.Errorf("re-register agent %q: %w", name, err)
		}
		d.publish(bus.EventAgentConnected, agent)
		slog.Info("agent reconnected", "agent", name, "id", agent.ID)
		return agent, nil
	}

	if capabilities == nil {
		capabilities = []string{}
	}
	agent, err := d.store.Agents.Insert(&store.Agent{
		Name:         name,
		Capabilities: capabilities,
		Endpoint:     endpoint,
		Status:       store.AgentOnline,
		LastSeen:     time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("register agent %q: %w", name, err)
	}
	d.publish(bus.EventAgentConnected, agent)
	slog.Info("agent registered", "agent", name, "id", agent.ID, "capabilities", len(capabilities))
	return agent, nil
}

// Get returns the agent with the given id.
func (d *Directory) Get(id int64) (*store.Agent, error) {
	agent, ok := d.store.Agents.Get(id)
	if !ok {
		return nil, ErrAgentNotFound
	}
	return agent, nil
}

// SetStatus updates an agent's presence and refreshes last_seen.
func (d *Directory) SetStatus(id int64, status store.AgentStatus) (*store.Agent, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	agent, found, err := d.store.Agents.Update(id, func(a *store.Agent) {
		a.Status = status
		a.LastSeen = time.Now().UTC()
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAgentNotFound
	}
	return agent, nil
}

// Disconnect marks an agent offline.
func (d *Directory) Disconnect(id int64) (*store.Agent, error) {
	agent, err := d.SetStatus(id, store.AgentOffline)
	if err != nil {
		return nil, err
	}
	d.publish(bus.EventAgentDisconnected, agent)
	slog.Info("agent disconnected", "agent", agent.Name, "id", agent.ID)
	return agent, nil
}

// All returns every registered agent, most recently created first.
func (d *Directory) All() []*store.Agent {
	agents := d.store.Agents.All()
	sort.Slice(agents, func(i, j int) bool {
		if !agents[i].CreatedAt.Equal(agents[j].CreatedAt) {
			return agents[i].CreatedAt.After(agents[j].CreatedAt)
		}
		return agents[i].ID > agents[j].ID
	})
	return agents
}

// Online returns the online agents ordered by last_seen descending. Task
// auto-assignment breaks load ties by this ordering, so the most recently
// active agent must come first.
func (d *Directory) Online() []*store.Agent {
	agents := d.store.Agents.FindAll(func(a *store.Agent) bool {
		return a.Status == store.AgentOnline
	})
	sort.Slice(agents, func(i, j int) bool {
		if !agents[i].LastSeen.Equal(agents[j].LastSeen) {
			return agents[i].LastSeen.After(agents[j].LastSeen)
		}
		return agents[i].ID > agents[j].ID
	})
	return agents
}

// FindByCapability returns the online agents whose capability list contains
// the exact string.
func (d *Directory) FindByCapability(capability string) []*store.Agent {
	online := d.Online()
	out := make([]*store.Agent, 0, len(online))
	for _, a := range online {
		if slices.Contains(a.Capabilities, capability) {
			out = append(out, a)
		}
	}
	return out
}

// Delete removes an agent record. Historical references to the id remain and
// resolve to no name at read time.
func (d *Directory) Delete(id int64) error {
	ok, err := d.store.Agents.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAgentNotFound
	}
	return nil
}

// Stats summarizes the registry.
type Stats struct {
	Total        int            `json:"total"`
	Online       int            `json:"online"`
	Offline      int            `json:"offline"`
	Capabilities map[string]int `json:"capabilities"`
}

// Stats returns aggregate counts and a capability histogram over all agents.
func (d *Directory) Stats() Stats {
	all := d.store.Agents.All()
	stats := Stats{
		Total:        len(all),
		Capabilities: map[string]int{},
	}
	for _, a := range all {
		if a.Status == store.AgentOnline {
			stats.Online++
		}
		for _, cap := range a.Capabilities {
			stats.Capabilities[cap]++
		}
	}
	stats.Offline = stats.Total - stats.Online
	return stats
}

func (d *Directory) publish(evtType bus.EventType, payload any) {
	if d.bus != nil {
		d.bus.Publish(evtType, payload)
	}
}
