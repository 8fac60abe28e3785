package logistics

import (
	"testing"

	"julferiin-ops/internal/config"
)

func TestFromConfigDefaultsToBuiltIn(t *testing.T) {
	params, entities, geofences, err := FromConfig(config.Default())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if params != DefaultParams() {
		t.Fatalf("params = %+v, want %+v", params, DefaultParams())
	}
	if len(entities) != 2 || entities[0].Number != "TR-102" || entities[1].Number != "OP-05" {
		t.Fatalf("unexpected entities: %+v", entities)
	}
	if len(geofences) != 2 || geofences[1].Name != "Zona de Risco - Norte" {
		t.Fatalf("unexpected geofences: %+v", geofences)
	}
}

func TestFromConfigEntities(t *testing.T) {
	cfg := config.Default()
	cfg.Entities = []config.Entity{{
		ID: "v5", Number: "TR-5", Name: "Truck", Lat: -15, Lng: 39, State: "stopped",
		PlannedRoute: []config.Point{{Lat: -15, Lng: 39}, {Lat: -14.9, Lng: 39.1}},
	}}
	cfg.Geofences = []config.Geofence{{ID: "g7", Name: "Yard", Lat: -15, Lng: 39, RadiusM: 100}}

	_, entities, geofences, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if len(entities) != 1 || entities[0].State != StateStopped || len(entities[0].PlannedRoute) != 2 {
		t.Fatalf("unexpected entities: %+v", entities)
	}
	if entities[0].History == nil {
		t.Fatalf("history should be an empty slice, not nil")
	}
	if len(geofences) != 1 || geofences[0].Center.Lat != -15 {
		t.Fatalf("unexpected geofences: %+v", geofences)
	}

	cfg.Entities[0].State = "flying"
	if _, _, _, err := FromConfig(cfg); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}
