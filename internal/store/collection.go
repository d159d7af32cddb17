package store

import (
	"fmt"
	"time"
)

// record is the constraint collection element pointers satisfy: any entity
// type embedding Meta.
type record interface {
	meta() *Meta
}

// Collection is a typed view over one entity slice of the store document.
// Every mutating operation allocates identities under the store lock and
// persists the whole document before returning; on a failed persist the
// in-memory change is rolled back so rejected operations leave no trace.
type Collection[T any, PT interface {
	*T
	record
}] struct {
	kind    Kind
	store   *Store
	items   *[]PT
	counter *int64
}

func newCollection[T any, PT interface {
	*T
	record
}](s *Store, kind Kind, items *[]PT, counter *int64) *Collection[T, PT] {
	return &Collection[T, PT]{kind: kind, store: s, items: items, counter: counter}
}

// Insert allocates the next identity for the collection, stamps created_at,
// appends the record and persists. The counter increment and the appended
// record land in the same snapshot write, so no identity is ever observed
// without its record and no identity is reused.
func (c *Collection[T, PT]) Insert(rec PT) (PT, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id := *c.counter + 1
	m := rec.meta()
	m.ID = id
	m.CreatedAt = time.Now().UTC()

	*c.counter = id
	*c.items = append(*c.items, rec)

	if err := s.persistLocked(); err != nil {
		*c.counter = id - 1
		*c.items = (*c.items)[:len(*c.items)-1]
		m.ID = 0
		m.CreatedAt = time.Time{}
		return nil, fmt.Errorf("insert %s: %w", c.kind, err)
	}
	return clone[T, PT](rec), nil
}

// Get returns the record with the given id.
func (c *Collection[T, PT]) Get(id int64) (PT, bool) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range *c.items {
		if rec.meta().ID == id {
			return clone[T, PT](rec), true
		}
	}
	return nil, false
}

// Find returns the first record matching the predicate.
func (c *Collection[T, PT]) Find(pred func(PT) bool) (PT, bool) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range *c.items {
		if pred(rec) {
			return clone[T, PT](rec), true
		}
	}
	return nil, false
}

// All returns every record in insertion order.
func (c *Collection[T, PT]) All() []PT {
	return c.FindAll(nil)
}

// FindAll returns the records matching the predicate, in insertion order.
// A nil predicate matches everything.
func (c *Collection[T, PT]) FindAll(pred func(PT) bool) []PT {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PT, 0, len(*c.items))
	for _, rec := range *c.items {
		if pred == nil || pred(rec) {
			out = append(out, clone[T, PT](rec))
		}
	}
	return out
}

// Count returns the number of records matching the predicate. A nil predicate
// counts everything.
func (c *Collection[T, PT]) Count(pred func(PT) bool) int {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if pred == nil {
		return len(*c.items)
	}
	n := 0
	for _, rec := range *c.items {
		if pred(rec) {
			n++
		}
	}
	return n
}

// Update applies mutate to the record with the given id and persists. The
// second return is false when the id references nothing. Mutators must only
// assign fields; identity and created_at are not theirs to touch.
func (c *Collection[T, PT]) Update(id int64, mutate func(PT)) (PT, bool, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range *c.items {
		if rec.meta().ID != id {
			continue
		}
		prev := *rec
		mutate(rec)
		rec.meta().ID = id
		if err := s.persistLocked(); err != nil {
			*rec = prev
			return nil, true, fmt.Errorf("update %s %d: %w", c.kind, id, err)
		}
		return clone[T, PT](rec), true, nil
	}
	return nil, false, nil
}

// Delete removes the record with the given id and persists. The identity is
// never reused; the counter only moves forward.
func (c *Collection[T, PT]) Delete(id int64) (bool, error) {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range *c.items {
		if rec.meta().ID != id {
			continue
		}
		items := *c.items
		*c.items = append(items[:i:i], items[i+1:]...)
		if err := s.persistLocked(); err != nil {
			*c.items = items
			return false, fmt.Errorf("delete %s %d: %w", c.kind, id, err)
		}
		return true, nil
	}
	return false, nil
}

// clone returns a shallow copy so callers never hold aliases into the
// persisted document.
func clone[T any, PT interface {
	*T
	record
}](rec PT) PT {
	cp := *rec
	return PT(&cp)
}
