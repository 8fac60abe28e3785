// Selection and layer visibility state shared by the dashboard surfaces
package view

import (
	"fmt"
	"sync"

	"julferiin-ops/internal/logistics"
)

// Layer names an optional map overlay.
type Layer string

const (
	LayerGeofences    Layer = "geofences"
	LayerHistory      Layer = "history"
	LayerPlannedRoute Layer = "route"
)

// ParseLayer converts a layer name, accepting a few aliases.
func ParseLayer(s string) (Layer, error) {
	switch s {
	case "geofences", "geofence", "g":
		return LayerGeofences, nil
	case "history", "trail", "h":
		return LayerHistory, nil
	case "route", "planned_route", "r":
		return LayerPlannedRoute, nil
	}
	return "", fmt.Errorf("unknown layer %q", s)
}

// Layers holds the visibility of each overlay.
type Layers struct {
	Geofences    bool `json:"geofences"`
	History      bool `json:"history"`
	PlannedRoute bool `json:"planned_route"`
}

// AllLayers has every overlay visible.
var AllLayers = Layers{Geofences: true, History: true, PlannedRoute: true}

// Selection tracks the selected entity and the overlay toggles. Only the id is
// authoritative; the entity itself is re-resolved from every snapshot so it
// never goes stale.
type Selection struct {
	mu      sync.Mutex
	id      string
	current logistics.Entity
	layers  Layers
}

// NewSelection returns an empty selection with all layers visible.
func NewSelection() *Selection {
	return &Selection{layers: AllLayers}
}

// Select makes id the selected entity if it exists in entities.
func (s *Selection) Select(id string, entities []logistics.Entity) bool {
	e, ok := find(entities, id)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.current = e
	return true
}

// Clear deselects.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	s.current = logistics.Entity{}
}

// Toggle flips one layer and returns its new visibility.
func (s *Selection) Toggle(l Layer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch l {
	case LayerGeofences:
		s.layers.Geofences = !s.layers.Geofences
		return s.layers.Geofences, nil
	case LayerHistory:
		s.layers.History = !s.layers.History
		return s.layers.History, nil
	case LayerPlannedRoute:
		s.layers.PlannedRoute = !s.layers.PlannedRoute
		return s.layers.PlannedRoute, nil
	}
	return false, fmt.Errorf("unknown layer %q", l)
}

// Layers returns the current overlay visibility.
func (s *Selection) Layers() Layers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layers
}

// Refresh re-resolves the selected entity against a new snapshot. A selection
// whose entity disappeared is cleared.
func (s *Selection) Refresh(entities []logistics.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return
	}
	e, ok := find(entities, s.id)
	if !ok {
		s.id = ""
		s.current = logistics.Entity{}
		return
	}
	s.current = e
}

// Current returns the selected entity as of the last Select or Refresh.
func (s *Selection) Current() (logistics.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return logistics.Entity{}, false
	}
	return s.current.Clone(), true
}

// SelectedID returns the selected id or "".
func (s *Selection) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func find(entities []logistics.Entity, id string) (logistics.Entity, bool) {
	for _, e := range entities {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return logistics.Entity{}, false
}
