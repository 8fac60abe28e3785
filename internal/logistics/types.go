// Tracked entities and geofences
package logistics

import (
	"fmt"
	"strings"

	"julferiin-ops/internal/geo"
)

// State is the movement state of a tracked entity.
type State string

const (
	StateMoving  State = "Moving"
	StateStopped State = "Stopped"
	StateOffline State = "Offline"
)

// ParseState converts s into a State, ignoring case.
func ParseState(s string) (State, error) {
	for _, st := range []State{StateMoving, StateStopped, StateOffline} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown entity state %q", s)
}

// Category groups entities for display.
type Category string

const (
	CategoryLogistics Category = "logistics"
	CategoryPersonnel Category = "personnel"
)

// Entity is a tracked vehicle or person.
type Entity struct {
	ID           string       `json:"id"`
	Number       string       `json:"number"`
	Name         string       `json:"name"`
	Base         string       `json:"base,omitempty"`
	Position     geo.LatLng   `json:"position"`
	SpeedKmh     float64      `json:"speed_kmh"`
	State        State        `json:"state"`
	History      []geo.LatLng `json:"history"`
	PlannedRoute []geo.LatLng `json:"planned_route,omitempty"`
	Destination  string       `json:"destination,omitempty"`
}

// Category derives the entity category from its id: vehicle ids start with "v".
func (e Entity) Category() Category {
	if strings.HasPrefix(e.ID, "v") {
		return CategoryLogistics
	}
	return CategoryPersonnel
}

// Clone returns a deep copy of e.
func (e Entity) Clone() Entity {
	e.History = append([]geo.LatLng{}, e.History...)
	if e.PlannedRoute != nil {
		e.PlannedRoute = append([]geo.LatLng(nil), e.PlannedRoute...)
	}
	return e
}

// Geofence is a static circular zone. RadiusM is informational; proximity
// checks use the simulator's degree threshold.
type Geofence struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Center  geo.LatLng `json:"center"`
	RadiusM float64    `json:"radius_m"`
	Color   string     `json:"color,omitempty"`
}

func cloneEntities(list []Entity) []Entity {
	out := make([]Entity, len(list))
	for i, e := range list {
		out[i] = e.Clone()
	}
	return out
}
