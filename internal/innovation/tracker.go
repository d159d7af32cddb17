// Package innovation records agent contributions and scores them with the
// deterministic WOW algorithm.
package innovation

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/swarmboard/swarmboard/internal/bus"
	"github.com/swarmboard/swarmboard/internal/store"
)

// ErrInnovationNotFound is returned when an innovation id references nothing.
var ErrInnovationNotFound = errors.New("innovation not found")

// Tracker manages innovation records over the store.
type Tracker struct {
	store *store.Store
	bus   *bus.Bus
}

// New creates a tracker. The bus may be nil when no fan-out is wanted.
func New(st *store.Store, b *bus.Bus) *Tracker {
	return &Tracker{store: st, bus: b}
}

// Create records an innovation. When category is empty it is derived from
// the title and description. The WOW score is computed against every other
// innovation on the platform and persisted with the record.
func (t *Tracker) Create(title, description, category string, agentsInvolved []int64, outputData map[string]any) (*store.Innovation, error) {
	if category == "" {
		category = Categorize(title, description)
	}
	if agentsInvolved == nil {
		agentsInvolved = []int64{}
	}
	if outputData == nil {
		outputData = map[string]any{}
	}
	inn, err := t.store.Innovations.Insert(&store.Innovation{
		Title:          title,
		Description:    description,
		Category:       category,
		AgentsInvolved: agentsInvolved,
		OutputData:     outputData,
	})
	if err != nil {
		return nil, fmt.Errorf("create innovation: %w", err)
	}

	score, _ := Score(inn, t.store.Innovations.All())
	scored, _, err := t.store.Innovations.Update(inn.ID, func(i *store.Innovation) {
		i.WowScore = score
	})
	if err != nil {
		return nil, fmt.Errorf("score innovation %d: %w", inn.ID, err)
	}
	t.publish(bus.EventInnovationCreated, scored)
	slog.Info("innovation created", "innovation", scored.ID, "title", title,
		"category", category, "wow_score", score)
	return scored, nil
}

// Get returns the innovation with the given id.
func (t *Tracker) Get(id int64) (*store.Innovation, error) {
	inn, ok := t.store.Innovations.Get(id)
	if !ok {
		return nil, ErrInnovationNotFound
	}
	return inn, nil
}

// Upvote increments an innovation's WOW score by exactly one. Upvotes are
// not re-clamped, so votes may push a stored score past the creation-time
// cap of 10.
func (t *Tracker) Upvote(id int64) (*store.Innovation, error) {
	if _, ok := t.store.Innovations.Get(id); !ok {
		return nil, ErrInnovationNotFound
	}
	inn, _, err := t.store.Innovations.Update(id, func(i *store.Innovation) {
		i.WowScore++
	})
	if err != nil {
		return nil, fmt.Errorf("upvote innovation %d: %w", id, err)
	}
	return inn, nil
}

// All returns every innovation, most recently created first.
func (t *Tracker) All() []*store.Innovation {
	all := t.store.Innovations.All()
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return all
}

// ByCategory returns the innovations with the exact category, most recently
// created first.
func (t *Tracker) ByCategory(category string) []*store.Innovation {
	list := t.store.Innovations.FindAll(func(i *store.Innovation) bool {
		return i.Category == category
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

// Top returns up to limit innovations by WOW score descending, newest first
// among equals.
func (t *Tracker) Top(limit int) []*store.Innovation {
	all := t.store.Innovations.All()
	sort.Slice(all, func(i, j int) bool {
		if all[i].WowScore != all[j].WowScore {
			return all[i].WowScore > all[j].WowScore
		}
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// Stats summarizes the innovation catalog.
type Stats struct {
	Total           int                 `json:"total"`
	ByCategory      map[string]int      `json:"by_category"`
	AverageWowScore float64             `json:"average_wow_score"`
	TopInnovations  []*store.Innovation `json:"top_innovations"`
}

// Stats returns counts, the per-category histogram, the mean WOW score and
// the five top-rated innovations.
func (t *Tracker) Stats() Stats {
	all := t.store.Innovations.All()
	stats := Stats{
		Total:          len(all),
		ByCategory:     map[string]int{},
		TopInnovations: t.Top(5),
	}
	total := 0
	for _, inn := range all {
		cat := inn.Category
		if cat == "" {
			cat = "uncategorized"
		}
		stats.ByCategory[cat]++
		total += inn.WowScore
	}
	if len(all) > 0 {
		stats.AverageWowScore = float64(total) / float64(len(all))
	}
	return stats
}

// Contributions summarizes one agent's share of the catalog.
type Contributions struct {
	TotalContributions int                 `json:"total_contributions"`
	Innovations        []*store.Innovation `json:"innovations"`
}

// Contributions returns the innovations the agent was involved in.
func (t *Tracker) Contributions(agentID int64) Contributions {
	list := t.store.Innovations.FindAll(func(i *store.Innovation) bool {
		return slices.Contains(i.AgentsInvolved, agentID)
	})
	return Contributions{
		TotalContributions: len(list),
		Innovations:        list,
	}
}

// Delete removes an innovation record.
func (t *Tracker) Delete(id int64) error {
	ok, err := t.store.Innovations.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInnovationNotFound
	}
	return nil
}

// Categorize derives a category from title and description by fixed-priority
// keyword rules; the first matching rule wins.
func Categorize(title, description string) string {
	text := strings.ToLower(title + " " + description)
	switch {
	case strings.Contains(text, "automat") || strings.Contains(text, "workflow"):
		return "automation"
	case strings.Contains(text, "tool") || strings.Contains(text, "utility"):
		return "tools"
	case strings.Contains(text, "ai") || strings.Contains(text, "ml") || strings.Contains(text, "model"):
		return "ai-ml"
	case strings.Contains(text, "api") || strings.Contains(text, "service"):
		return "services"
	case strings.Contains(text, "ui") || strings.Contains(text, "interface") || strings.Contains(text, "dashboard"):
		return "interfaces"
	case strings.Contains(text, "data") || strings.Contains(text, "analyt"):
		return "data-analytics"
	default:
		return "general"
	}
}

func (t *Tracker) publish(evtType bus.EventType, payload any) {
	if t.bus != nil {
		t.bus.Publish(evtType, payload)
	}
}
