package view

import (
	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/logistics"
)

// GeofenceMarker is a geofence placed on the map in percent.
type GeofenceMarker struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Color   string     `json:"color,omitempty"`
	RadiusM float64    `json:"radius_m"`
	At      geo.Screen `json:"at"`
}

// TrailDot is one history point drawn relative to its entity marker.
// Older points are smaller and fainter.
type TrailDot struct {
	Offset  geo.Screen `json:"offset"`
	Opacity float64    `json:"opacity"`
	Size    float64    `json:"size"`
}

// EntityMarker is an entity placed on the map in percent.
type EntityMarker struct {
	ID       string             `json:"id"`
	Number   string             `json:"number"`
	Name     string             `json:"name"`
	Category logistics.Category `json:"category"`
	State    logistics.State    `json:"state"`
	SpeedKmh float64            `json:"speed_kmh"`
	At       geo.Screen         `json:"at"`
	Selected bool               `json:"selected"`
	Trail    []TrailDot         `json:"trail,omitempty"`
}

// RouteOverlay is the planned route of the selected entity. Points are
// absolute percent placements; Destination is a pixel offset from the marker.
type RouteOverlay struct {
	EntityID        string       `json:"entity_id"`
	Points          []geo.Screen `json:"points"`
	Destination     geo.Screen   `json:"destination"`
	DestinationName string       `json:"destination_name,omitempty"`
}

// Scene is everything a renderer needs to draw one frame.
type Scene struct {
	Geofences []GeofenceMarker `json:"geofences"`
	Entities  []EntityMarker   `json:"entities"`
	Route     *RouteOverlay    `json:"route,omitempty"`
	Layers    Layers           `json:"layers"`
}

// BuildScene projects entities and geofences according to the selection and
// its layer toggles. sel may be nil.
func BuildScene(entities []logistics.Entity, geofences []logistics.Geofence, sel *Selection, proj geo.Projection) Scene {
	layers := AllLayers
	selectedID := ""
	if sel != nil {
		layers = sel.Layers()
		selectedID = sel.SelectedID()
	}

	scene := Scene{Layers: layers, Geofences: []GeofenceMarker{}, Entities: make([]EntityMarker, 0, len(entities))}
	if layers.Geofences {
		for _, g := range geofences {
			scene.Geofences = append(scene.Geofences, GeofenceMarker{
				ID:      g.ID,
				Name:    g.Name,
				Color:   g.Color,
				RadiusM: g.RadiusM,
				At:      proj.Project(g.Center),
			})
		}
	}

	for _, e := range entities {
		m := EntityMarker{
			ID:       e.ID,
			Number:   e.Number,
			Name:     e.Name,
			Category: e.Category(),
			State:    e.State,
			SpeedKmh: e.SpeedKmh,
			At:       proj.Project(e.Position),
			Selected: e.ID == selectedID,
		}
		if layers.History {
			m.Trail = trail(e, proj)
		}
		scene.Entities = append(scene.Entities, m)

		if m.Selected && layers.PlannedRoute && len(e.PlannedRoute) > 0 {
			scene.Route = route(e, proj)
		}
	}
	return scene
}

func trail(e logistics.Entity, proj geo.Projection) []TrailDot {
	n := len(e.History)
	dots := make([]TrailDot, n)
	for i, h := range e.History {
		dots[i] = TrailDot{
			Offset:  proj.Offset(h, e.Position),
			Opacity: float64(i+1) / float64(n),
			Size:    2 + float64(i)*0.4,
		}
	}
	return dots
}

func route(e logistics.Entity, proj geo.Projection) *RouteOverlay {
	pts := make([]geo.Screen, len(e.PlannedRoute))
	for i, p := range e.PlannedRoute {
		pts[i] = proj.Project(p)
	}
	return &RouteOverlay{
		EntityID:        e.ID,
		Points:          pts,
		Destination:     proj.Offset(e.PlannedRoute[len(e.PlannedRoute)-1], e.Position),
		DestinationName: e.Destination,
	}
}
