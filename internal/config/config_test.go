package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const schemaPath = "../../schemas/logistics.cue"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logistics.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
simulation:
  tick_interval: 2s
  trail_cap: 10
geofences:
  - id: g9
    name: Depot
    lat: -15.1
    lng: 39.2
    radius_m: 300
entities:
  - id: v7
    number: TR-7
    name: Truck Seven
    lat: -15.1
    lng: 39.2
    state: Stopped
    planned_route:
      - {lat: -15.1, lng: 39.2}
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Simulation.TickInterval != 2*time.Second || cfg.Simulation.TrailCap != 10 {
		t.Errorf("unexpected simulation: %+v", cfg.Simulation)
	}
	// unspecified fields keep their defaults
	if cfg.Simulation.ProximityDeg != 0.004 || cfg.Notifications.Key != "jb_notifications" {
		t.Errorf("defaults lost: %+v %+v", cfg.Simulation, cfg.Notifications)
	}
	if len(cfg.Entities) != 1 || cfg.Entities[0].State != "Stopped" || len(cfg.Entities[0].PlannedRoute) != 1 {
		t.Errorf("unexpected entities: %+v", cfg.Entities)
	}
	if len(cfg.Geofences) != 1 || cfg.Geofences[0].RadiusM != 300 {
		t.Errorf("unexpected geofences: %+v", cfg.Geofences)
	}
}

func TestLoadConfig_Bundled(t *testing.T) {
	cfg, err := Load("../../config/logistics.yaml", schemaPath)
	if err != nil {
		t.Fatalf("bundled config invalid: %v", err)
	}
	if len(cfg.Entities) != 2 || len(cfg.Geofences) != 2 {
		t.Fatalf("expected 2 entities and 2 geofences, got %d/%d", len(cfg.Entities), len(cfg.Geofences))
	}
}

func TestLoadConfig_SchemaRejects(t *testing.T) {
	cases := map[string]string{
		"bad state": `
entities:
  - {id: v1, number: A, name: B, lat: 0, lng: 0, state: Flying}
`,
		"lat out of range": `
geofences:
  - {id: g1, name: G, lat: 120, lng: 0, radius_m: 10}
`,
		"unknown storage": `
notifications:
  storage: floppy
`,
		"alert chance": `
simulation:
  alert_chance: 2
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body), schemaPath); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidate_CrossField(t *testing.T) {
	cfg := Default()
	cfg.Simulation.SpeedMaxKmh = 10
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "speed_max_kmh") {
		t.Fatalf("expected speed range error, got %v", err)
	}

	cfg = Default()
	cfg.Entities = []Entity{{ID: "v1"}, {ID: "v1"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "500ms")
	t.Setenv("NOTIFY_STORAGE", "memory")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Simulation.TickInterval != 500*time.Millisecond {
		t.Errorf("tick interval = %v", cfg.Simulation.TickInterval)
	}
	if cfg.Notifications.Storage != "memory" || cfg.Notifications.RedisAddr != "localhost:6379" {
		t.Errorf("notifications = %+v", cfg.Notifications)
	}

	t.Setenv("TICK_INTERVAL", "soon")
	if err := Default().ApplyEnv(); err == nil {
		t.Fatalf("expected error for invalid TICK_INTERVAL")
	}
}
