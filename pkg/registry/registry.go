// Package registry maps action ids to their registered handlers.
package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/models"
	"github.com/georgi-georgiev/testmesh-plugin-sdk/pkg/protocol"
)

// Entry is one registered action: its definition plus the handler to
// invoke for it.
type Entry struct {
	Definition models.ActionDefinition
	Handler    protocol.ActionHandler
}

// Registry holds the action table of a plugin. It is populated during
// plugin setup, before the server starts, and is read-only afterwards —
// concurrent lookups from request workers need no locking.
type Registry struct {
	logger  *slog.Logger
	entries map[string]Entry
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger:  logger,
		entries: make(map[string]Entry),
	}
}

// Register adds an action under def.ID. Name and Description default to
// the id when empty. Re-registering an id replaces the previous handler
// (last write wins) and logs a warning.
func (r *Registry) Register(def models.ActionDefinition, handler protocol.ActionHandler) error {
	if strings.TrimSpace(def.ID) == "" {
		return fmt.Errorf("action id is required")
	}

	if handler == nil {
		return fmt.Errorf("action '%s': handler is required", def.ID)
	}

	if def.Name == "" {
		def.Name = def.ID
	}

	if def.Description == "" {
		def.Description = "Action: " + def.ID
	}

	if _, exists := r.entries[def.ID]; exists {
		r.logger.Warn("Action re-registered, previous handler replaced", "action_id", def.ID)
	}

	r.entries[def.ID] = Entry{Definition: def, Handler: handler}

	return nil
}

// RegisterFunc registers a handler under id with a defaulted definition.
func (r *Registry) RegisterFunc(id string, handler protocol.ActionHandler) error {
	return r.Register(models.ActionDefinition{ID: id}, handler)
}

func (r *Registry) Lookup(id string) (Entry, bool) {
	entry, ok := r.entries[id]

	return entry, ok
}

// Actions returns the definitions of all registered actions, sorted by
// id so /info output is stable across runs.
func (r *Registry) Actions() []models.ActionDefinition {
	defs := make([]models.ActionDefinition, 0, len(r.entries))
	for _, entry := range r.entries {
		defs = append(defs, entry.Definition)
	}

	slices.SortFunc(defs, func(a, b models.ActionDefinition) int {
		return strings.Compare(a.ID, b.ID)
	})

	return defs
}
