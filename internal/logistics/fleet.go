package logistics

import (
	"julferiin-ops/internal/config"
	"julferiin-ops/internal/geo"
)

// BuiltInEntities returns the seed fleet for the Nampula corridor.
func BuiltInEntities() []Entity {
	return []Entity{
		{
			ID:       "v1",
			Number:   "TR-102",
			Name:     "Camião de Logística A",
			Base:     "Nampula - Corredor",
			Position: geo.LatLng{Lat: -15.1171, Lng: 39.2662},
			SpeedKmh: 45,
			State:    StateMoving,
			History: []geo.LatLng{
				{Lat: -15.1200, Lng: 39.2600},
				{Lat: -15.1195, Lng: 39.2610},
				{Lat: -15.1190, Lng: 39.2620},
				{Lat: -15.1185, Lng: 39.2635},
				{Lat: -15.1180, Lng: 39.2640},
			},
			PlannedRoute: []geo.LatLng{
				{Lat: -15.1171, Lng: 39.2662},
				{Lat: -15.1100, Lng: 39.2800},
				{Lat: -15.1050, Lng: 39.3000},
				{Lat: -15.0900, Lng: 39.3500},
			},
			Destination: "Porto de Nacala",
		},
		{
			ID:       "p1",
			Number:   "OP-05",
			Name:     "Supervisor de Campo",
			Base:     "Namiteka",
			Position: geo.LatLng{Lat: -15.1250, Lng: 39.2700},
			SpeedKmh: 5,
			State:    StateMoving,
			History: []geo.LatLng{
				{Lat: -15.1260, Lng: 39.2710},
				{Lat: -15.1255, Lng: 39.2705},
			},
			PlannedRoute: []geo.LatLng{
				{Lat: -15.1250, Lng: 39.2700},
				{Lat: -15.1300, Lng: 39.2750},
				{Lat: -15.1350, Lng: 39.2800},
			},
			Destination: "Namiteka HQ",
		},
	}
}

// BuiltInGeofences returns the default geofences.
func BuiltInGeofences() []Geofence {
	return []Geofence{
		{ID: "g1", Name: "Armazém Central", Center: geo.LatLng{Lat: -15.1150, Lng: 39.2650}, RadiusM: 500, Color: "rgba(77, 166, 255, 0.2)"},
		{ID: "g2", Name: "Zona de Risco - Norte", Center: geo.LatLng{Lat: -15.1100, Lng: 39.2550}, RadiusM: 800, Color: "rgba(128, 0, 0, 0.2)"},
	}
}

// FromConfig converts configuration into simulator inputs. Empty entity or
// geofence lists fall back to the built-in seeds.
func FromConfig(cfg *config.Config) (Params, []Entity, []Geofence, error) {
	s := cfg.Simulation
	params := Params{
		TickInterval: s.TickInterval,
		TrailCap:     s.TrailCap,
		JitterDeg:    s.JitterDeg,
		ProximityDeg: s.ProximityDeg,
		AlertChance:  s.AlertChance,
		SpeedMinKmh:  s.SpeedMinKmh,
		SpeedMaxKmh:  s.SpeedMaxKmh,
	}

	entities := BuiltInEntities()
	if len(cfg.Entities) > 0 {
		entities = make([]Entity, 0, len(cfg.Entities))
		for _, ce := range cfg.Entities {
			state := StateMoving
			if ce.State != "" {
				st, err := ParseState(ce.State)
				if err != nil {
					return Params{}, nil, nil, err
				}
				state = st
			}
			entities = append(entities, Entity{
				ID:           ce.ID,
				Number:       ce.Number,
				Name:         ce.Name,
				Base:         ce.Base,
				Position:     geo.LatLng{Lat: ce.Lat, Lng: ce.Lng},
				SpeedKmh:     ce.SpeedKmh,
				State:        state,
				History:      points(ce.History),
				PlannedRoute: points(ce.PlannedRoute),
				Destination:  ce.Destination,
			})
		}
	}

	geofences := BuiltInGeofences()
	if len(cfg.Geofences) > 0 {
		geofences = make([]Geofence, 0, len(cfg.Geofences))
		for _, g := range cfg.Geofences {
			geofences = append(geofences, Geofence{
				ID:      g.ID,
				Name:    g.Name,
				Center:  geo.LatLng{Lat: g.Lat, Lng: g.Lng},
				RadiusM: g.RadiusM,
				Color:   g.Color,
			})
		}
	}
	return params, entities, geofences, nil
}

func points(in []config.Point) []geo.LatLng {
	out := make([]geo.LatLng, len(in))
	for i, p := range in {
		out[i] = geo.LatLng{Lat: p.Lat, Lng: p.Lng}
	}
	return out
}
