// Package engine wires the entity store, the event bus and the coordinators
// into one coordination engine.
package engine

import (
	"fmt"

	"github.com/swarmboard/swarmboard/internal/analytics"
	"github.com/swarmboard/swarmboard/internal/bus"
	"github.com/swarmboard/swarmboard/internal/config"
	"github.com/swarmboard/swarmboard/internal/directory"
	"github.com/swarmboard/swarmboard/internal/discussion"
	"github.com/swarmboard/swarmboard/internal/innovation"
	"github.com/swarmboard/swarmboard/internal/store"
	"github.com/swarmboard/swarmboard/internal/tasks"
)

// Engine is the assembled coordination engine. All coordinators share one
// store and publish to one bus.
type Engine struct {
	Store       *store.Store
	Bus         *bus.Bus
	Directory   *directory.Directory
	Tasks       *tasks.Coordinator
	Discussions *discussion.Coordinator
	Innovations *innovation.Tracker
	Analytics   *analytics.Service

	sqlite *store.SQLiteBackend
}

// New opens the configured store backend and builds the coordinators.
func New(cfg *config.Config) (*Engine, error) {
	e := &Engine{Bus: bus.New()}

	var backend store.Backend
	switch cfg.Store.Backend {
	case config.StoreBackendSQLite:
		sqlite, err := store.OpenSQLite(cfg.StorePath())
		if err != nil {
			return nil, err
		}
		e.sqlite = sqlite
		backend = sqlite
	default:
		backend = store.NewFileBackend(cfg.StorePath())
	}

	st, err := store.Open(backend)
	if err != nil {
		if e.sqlite != nil {
			e.sqlite.Close()
		}
		return nil, fmt.Errorf("open entity store: %w", err)
	}

	e.Store = st
	e.Directory = directory.New(st, e.Bus)
	e.Tasks = tasks.New(st, e.Directory, e.Bus)
	e.Discussions = discussion.New(st, e.Directory, e.Bus)
	e.Innovations = innovation.New(st, e.Bus)
	e.Analytics = analytics.New(st)
	return e, nil
}

// Close releases backend resources.
func (e *Engine) Close() error {
	if e.sqlite != nil {
		return e.sqlite.Close()
	}
	return nil
}
