package store

import (
	"fmt"
	"sync"
)

// Document is the single logical unit of durability: one ordered collection
// per entity type plus the per-type identity counters. The whole document is
// written on every mutation.
type Document struct {
	Agents      []*Agent      `json:"agents"`
	Tasks       []*Task       `json:"tasks"`
	Discussions []*Discussion `json:"discussions"`
	Messages    []*Message    `json:"messages"`
	Innovations []*Innovation `json:"innovations"`
	Counters    Counters      `json:"_counters"`
}

// Counters holds the next-identity state per entity type. Counters only move
// forward; deleted identities are never reused.
type Counters struct {
	Agents      int64 `json:"agents"`
	Tasks       int64 `json:"tasks"`
	Discussions int64 `json:"discussions"`
	Messages    int64 `json:"messages"`
	Innovations int64 `json:"innovations"`
}

func emptyDocument() Document {
	return Document{
		Agents:      []*Agent{},
		Tasks:       []*Task{},
		Discussions: []*Discussion{},
		Messages:    []*Message{},
		Innovations: []*Innovation{},
	}
}

// Store owns the document and its persistence backend. It is an explicit
// object passed to the coordinators; all shared mutable state lives here and
// is only reachable through collection operations.
type Store struct {
	mu      sync.Mutex
	backend Backend
	doc     Document

	Agents      *Collection[Agent, *Agent]
	Tasks       *Collection[Task, *Task]
	Discussions *Collection[Discussion, *Discussion]
	Messages    *Collection[Message, *Message]
	Innovations *Collection[Innovation, *Innovation]
}

// Open loads the existing document from the backend, or initializes and
// persists an empty one on first use.
func Open(backend Backend) (*Store, error) {
	doc, found, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}
	if !found {
		doc = emptyDocument()
		if err := backend.Save(&doc); err != nil {
			return nil, fmt.Errorf("initialize store: %w", err)
		}
	}
	normalize(&doc)

	s := &Store{backend: backend, doc: doc}
	s.Agents = newCollection[Agent](s, KindAgents, &s.doc.Agents, &s.doc.Counters.Agents)
	s.Tasks = newCollection[Task](s, KindTasks, &s.doc.Tasks, &s.doc.Counters.Tasks)
	s.Discussions = newCollection[Discussion](s, KindDiscussions, &s.doc.Discussions, &s.doc.Counters.Discussions)
	s.Messages = newCollection[Message](s, KindMessages, &s.doc.Messages, &s.doc.Counters.Messages)
	s.Innovations = newCollection[Innovation](s, KindInnovations, &s.doc.Innovations, &s.doc.Counters.Innovations)
	return s, nil
}

// Reset drops every record and zeroes the counters, then persists.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.doc
	s.doc = emptyDocument()
	if err := s.persistLocked(); err != nil {
		s.doc = prev
		return fmt.Errorf("reset store: %w", err)
	}
	return nil
}

// persistLocked writes the whole document through the backend. Callers hold
// the store lock.
func (s *Store) persistLocked() error {
	return s.backend.Save(&s.doc)
}

// normalize replaces nil slices from a hand-edited or partial document so
// the persisted form always carries every collection.
func normalize(doc *Document) {
	if doc.Agents == nil {
		doc.Agents = []*Agent{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []*Task{}
	}
	if doc.Discussions == nil {
		doc.Discussions = []*Discussion{}
	}
	if doc.Messages == nil {
		doc.Messages = []*Message{}
	}
	if doc.Innovations == nil {
		doc.Innovations = []*Innovation{}
	}
}
