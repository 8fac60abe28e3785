// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Point is a coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Simulation holds the logistics simulator parameters.
type Simulation struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	TrailCap     int           `yaml:"trail_cap"`
	JitterDeg    float64       `yaml:"jitter_deg"`
	ProximityDeg float64       `yaml:"proximity_deg"`
	AlertChance  float64       `yaml:"alert_chance"`
	SpeedMinKmh  float64       `yaml:"speed_min_kmh"`
	SpeedMaxKmh  float64       `yaml:"speed_max_kmh"`
	Seed         int64         `yaml:"seed"`
}

// Projection holds the map projection origin and scale.
type Projection struct {
	OriginLat float64 `yaml:"origin_lat"`
	OriginLng float64 `yaml:"origin_lng"`
	Scale     float64 `yaml:"scale"`
}

// Notifications configures the notification store and its durable storage.
type Notifications struct {
	Storage     string        `yaml:"storage"`
	Dir         string        `yaml:"dir"`
	Key         string        `yaml:"key"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisPrefix string        `yaml:"redis_prefix"`
	DatabaseURL string        `yaml:"database_url"`
	ToastWindow time.Duration `yaml:"toast_window"`
	ToastLimit  int           `yaml:"toast_limit"`
	TitlePrefix string        `yaml:"title_prefix"`
	Desktop     bool          `yaml:"desktop"`
}

// Geofence defines a static circular zone.
type Geofence struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
	RadiusM float64 `yaml:"radius_m"`
	Color   string  `yaml:"color"`
}

// Entity seeds one tracked vehicle or person.
type Entity struct {
	ID           string  `yaml:"id"`
	Number       string  `yaml:"number"`
	Name         string  `yaml:"name"`
	Base         string  `yaml:"base"`
	Lat          float64 `yaml:"lat"`
	Lng          float64 `yaml:"lng"`
	SpeedKmh     float64 `yaml:"speed_kmh"`
	State        string  `yaml:"state"`
	History      []Point `yaml:"history"`
	PlannedRoute []Point `yaml:"planned_route"`
	Destination  string  `yaml:"destination"`
}

// Branch describes one business branch and its operating areas.
type Branch struct {
	ID    int      `yaml:"id"`
	Name  string   `yaml:"name"`
	Areas []string `yaml:"areas"`
}

// Config is the root configuration.
type Config struct {
	Simulation    Simulation    `yaml:"simulation"`
	Projection    Projection    `yaml:"projection"`
	Notifications Notifications `yaml:"notifications"`
	Geofences     []Geofence    `yaml:"geofences"`
	Entities      []Entity      `yaml:"entities"`
	Branches      []Branch      `yaml:"branches"`
}

// Default returns the built-in configuration. Empty Geofences, Entities and
// Branches select the built-in seeds of the consuming packages.
func Default() *Config {
	return &Config{
		Simulation: Simulation{
			TickInterval: 4 * time.Second,
			TrailCap:     15,
			JitterDeg:    0.0004,
			ProximityDeg: 0.004,
			AlertChance:  0.02,
			SpeedMinKmh:  20,
			SpeedMaxKmh:  60,
		},
		Projection: Projection{OriginLat: -15.1171, OriginLng: 39.2662, Scale: 6000},
		Notifications: Notifications{
			Storage:     "file",
			Dir:         ".julferiin",
			Key:         "jb_notifications",
			RedisPrefix: "julferiin:",
			ToastWindow: 8 * time.Second,
			ToastLimit:  3,
			TitlePrefix: "JULFERIIN",
		},
	}
}

// Load reads a YAML config over the defaults and validates it against a CUE schema.
// An empty schema path skips schema validation.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Debug("loaded configuration", "path", configPath, "entities", len(cfg.Entities), "geofences", len(cfg.Geofences))
	return cfg, nil
}

// Validate checks the cross-field rules the schema cannot express.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.TickInterval <= 0 {
		return fmt.Errorf("simulation.tick_interval must be positive")
	}
	if s.SpeedMaxKmh < s.SpeedMinKmh {
		return fmt.Errorf("simulation.speed_max_kmh (%g) below speed_min_kmh (%g)", s.SpeedMaxKmh, s.SpeedMinKmh)
	}
	if s.AlertChance < 0 || s.AlertChance > 1 {
		return fmt.Errorf("simulation.alert_chance must be within [0,1]")
	}
	seen := make(map[string]bool)
	for _, e := range c.Entities {
		if seen[e.ID] {
			return fmt.Errorf("duplicate entity id %q", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// ApplyEnv overrides selected settings from environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		c.Simulation.TickInterval = d
	}
	if v := os.Getenv("SIM_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SIM_SEED: %w", err)
		}
		c.Simulation.Seed = n
	}
	if v := os.Getenv("NOTIFY_STORAGE"); v != "" {
		c.Notifications.Storage = v
	}
	if v := os.Getenv("NOTIFY_DIR"); v != "" {
		c.Notifications.Dir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Notifications.RedisAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Notifications.DatabaseURL = v
	}
	return c.Validate()
}
