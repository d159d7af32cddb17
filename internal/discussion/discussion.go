// Package discussion manages append-only message threads: sequencing,
// participant derivation and agent-name enrichment.
package discussion

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/swarmboard/swarmboard/internal/bus"
	"github.com/swarmboard/swarmboard/internal/directory"
	"github.com/swarmboard/swarmboard/internal/store"
)

// DefaultMessageLimit bounds message reads when the caller gives no limit.
const DefaultMessageLimit = 100

var (
	// ErrDiscussionNotFound is returned when a discussion id references
	// nothing.
	ErrDiscussionNotFound = errors.New("discussion not found")
	// ErrAgentNotFound is returned when a message references an agent that
	// does not exist.
	ErrAgentNotFound = errors.New("agent not found")
	// ErrNotActive is returned when posting to a closed discussion.
	ErrNotActive = errors.New("discussion is not active")
)

// Coordinator drives discussion lifecycles and message ordering over the
// store.
type Coordinator struct {
	store     *store.Store
	directory *directory.Directory
	bus       *bus.Bus
}

// New creates a discussion coordinator. The bus may be nil when no fan-out is
// wanted.
func New(st *store.Store, dir *directory.Directory, b *bus.Bus) *Coordinator {
	return &Coordinator{store: st, directory: dir, bus: b}
}

// Summary is a discussion with its live message count.
type Summary struct {
	store.Discussion
	MessageCount int `json:"message_count"`
}

// MessageDetail is a message enriched with the posting agent's current name,
// resolved at read time. Nil when the agent no longer exists.
type MessageDetail struct {
	store.Message
	AgentName *string `json:"agent_name"`
}

// Create opens a new active discussion.
func (c *Coordinator) Create(topic string) (*store.Discussion, error) {
	disc, err := c.store.Discussions.Insert(&store.Discussion{
		Topic:  topic,
		Status: store.DiscussionActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create discussion: %w", err)
	}
	slog.Info("discussion created", "discussion", disc.ID, "topic", topic)
	return disc, nil
}

// Get returns the discussion with the given id.
func (c *Coordinator) Get(id int64) (*store.Discussion, error) {
	disc, ok := c.store.Discussions.Get(id)
	if !ok {
		return nil, ErrDiscussionNotFound
	}
	return disc, nil
}

// Close moves a discussion to closed. The transition is one-way; closing a
// closed discussion is a no-op returning the current record.
func (c *Coordinator) Close(id int64) (*store.Discussion, error) {
	disc, ok := c.store.Discussions.Get(id)
	if !ok {
		return nil, ErrDiscussionNotFound
	}
	if disc.Status == store.DiscussionClosed {
		return disc, nil
	}
	updated, _, err := c.store.Discussions.Update(id, func(d *store.Discussion) {
		d.Status = store.DiscussionClosed
	})
	if err != nil {
		return nil, fmt.Errorf("close discussion %d: %w", id, err)
	}
	slog.Info("discussion closed", "discussion", id)
	return updated, nil
}

// AddMessage appends a message to an active discussion. Validation order:
// the discussion must exist, the agent must exist, the discussion must be
// active. No message record is created on any failure.
func (c *Coordinator) AddMessage(discussionID, agentID int64, content string) (*MessageDetail, error) {
	disc, ok := c.store.Discussions.Get(discussionID)
	if !ok {
		return nil, ErrDiscussionNotFound
	}
	if _, ok := c.store.Agents.Get(agentID); !ok {
		return nil, ErrAgentNotFound
	}
	if disc.Status != store.DiscussionActive {
		return nil, ErrNotActive
	}
	msg, err := c.store.Messages.Insert(&store.Message{
		DiscussionID: discussionID,
		AgentID:      agentID,
		Content:      content,
	})
	if err != nil {
		return nil, fmt.Errorf("add message to discussion %d: %w", discussionID, err)
	}
	detail := c.enrich(msg)
	c.publish(bus.EventMessagePosted, detail)
	slog.Info("message posted", "discussion", discussionID, "agent", agentID, "message", msg.ID)
	return detail, nil
}

// Messages returns a discussion's messages in ascending creation order,
// truncated to the most recent limit entries (the tail of the ordered
// sequence). A non-positive limit uses DefaultMessageLimit.
func (c *Coordinator) Messages(discussionID int64, limit int) []*MessageDetail {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	msgs := c.ordered(discussionID)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*MessageDetail, len(msgs))
	for i, m := range msgs {
		out[i] = c.enrich(m)
	}
	return out
}

// Stats summarizes one discussion's activity.
type Stats struct {
	TotalMessages       int            `json:"total_messages"`
	Participants        int            `json:"participants"`
	MessageDistribution map[string]int `json:"message_distribution"`
}

// Stats returns the message count, the distinct participant count and a
// per-agent-name message histogram. Messages from deleted agents are counted
// under "unknown".
func (c *Coordinator) Stats(discussionID int64) (Stats, error) {
	if _, ok := c.store.Discussions.Get(discussionID); !ok {
		return Stats{}, ErrDiscussionNotFound
	}
	msgs := c.ordered(discussionID)
	distribution := map[string]int{}
	participants := map[int64]struct{}{}
	for _, m := range msgs {
		participants[m.AgentID] = struct{}{}
		name := "unknown"
		if agent, ok := c.store.Agents.Get(m.AgentID); ok {
			name = agent.Name
		}
		distribution[name]++
	}
	return Stats{
		TotalMessages:       len(msgs),
		Participants:        len(participants),
		MessageDistribution: distribution,
	}, nil
}

// SuggestAgents returns the online agents that have not yet posted in the
// discussion, in the Online() ordering.
func (c *Coordinator) SuggestAgents(discussionID int64) ([]*store.Agent, error) {
	if _, ok := c.store.Discussions.Get(discussionID); !ok {
		return nil, ErrDiscussionNotFound
	}
	posted := map[int64]struct{}{}
	for _, m := range c.ordered(discussionID) {
		posted[m.AgentID] = struct{}{}
	}
	online := c.directory.Online()
	out := make([]*store.Agent, 0, len(online))
	for _, a := range online {
		if _, ok := posted[a.ID]; !ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// All returns every discussion with its message count, most recently created
// first.
func (c *Coordinator) All() []*Summary {
	return c.summarize(c.store.Discussions.All())
}

// Active returns the active discussions with message counts, most recently
// created first.
func (c *Coordinator) Active() []*Summary {
	return c.summarize(c.store.Discussions.FindAll(func(d *store.Discussion) bool {
		return d.Status == store.DiscussionActive
	}))
}

// Delete removes a discussion and all its messages. Messages are deleted
// first, then the discussion record.
func (c *Coordinator) Delete(id int64) error {
	if _, ok := c.store.Discussions.Get(id); !ok {
		return ErrDiscussionNotFound
	}
	msgs := c.store.Messages.FindAll(func(m *store.Message) bool {
		return m.DiscussionID == id
	})
	for _, m := range msgs {
		if _, err := c.store.Messages.Delete(m.ID); err != nil {
			return fmt.Errorf("delete discussion %d messages: %w", id, err)
		}
	}
	if _, err := c.store.Discussions.Delete(id); err != nil {
		return fmt.Errorf("delete discussion %d: %w", id, err)
	}
	slog.Info("discussion deleted", "discussion", id, "messages", len(msgs))
	return nil
}

// ordered returns a discussion's messages sorted by created_at ascending,
// message id as the tie-break so ordering is total.
func (c *Coordinator) ordered(discussionID int64) []*store.Message {
	msgs := c.store.Messages.FindAll(func(m *store.Message) bool {
		return m.DiscussionID == discussionID
	})
	sort.Slice(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	return msgs
}

func (c *Coordinator) summarize(list []*store.Discussion) []*Summary {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	out := make([]*Summary, len(list))
	for i, d := range list {
		out[i] = &Summary{
			Discussion: *d,
			MessageCount: c.store.Messages.Count(func(m *store.Message) bool {
				return m.DiscussionID == d.ID
			}),
		}
	}
	return out
}

func (c *Coordinator) enrich(msg *store.Message) *MessageDetail {
	detail := &MessageDetail{Message: *msg}
	if agent, ok := c.store.Agents.Get(msg.AgentID); ok {
		detail.AgentName = &agent.Name
	}
	return detail
}

func (c *Coordinator) publish(evtType bus.EventType, payload any) {
	if c.bus != nil {
		c.bus.Publish(evtType, payload)
	}
}
