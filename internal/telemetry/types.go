// Exported row types with greptime tags
package telemetry

import (
	"os"
	"time"
)

// PositionRow is one entity position sample emitted per simulator tick.
type PositionRow struct {
	EntityID  string    `json:"entity_id"` // TAG
	Number    string    `json:"number"`    // TAG
	Lat       float64   `json:"lat"`       // FIELD
	Lng       float64   `json:"lng"`       // FIELD
	SpeedKmh  float64   `json:"speed_kmh"` // FIELD
	State     string    `json:"state"`     // FIELD
	TrailLen  int       `json:"trail_len"` // FIELD
	Timestamp time.Time `json:"ts"`        // TIME INDEX
}

// ProximityRow records an entity found within the proximity threshold of a geofence.
type ProximityRow struct {
	EntityID    string    `json:"entity_id"`    // TAG
	GeofenceID  string    `json:"geofence_id"`  // TAG
	DistanceDeg float64   `json:"distance_deg"` // FIELD
	Alerted     bool      `json:"alerted"`      // FIELD
	Timestamp   time.Time `json:"ts"`           // TIME INDEX
}

// PositionTableName holds the table used for position rows. It defaults to
// "entity_positions" and can be overridden with GREPTIMEDB_TABLE.
var PositionTableName = envOr("GREPTIMEDB_TABLE", "entity_positions")

// ProximityTableName holds the table used for proximity rows. It defaults to
// "geofence_proximity" and can be overridden with PROXIMITY_TABLE.
var ProximityTableName = envOr("PROXIMITY_TABLE", "geofence_proximity")

func (PositionRow) TableName() string {
	return PositionTableName
}

func (ProximityRow) TableName() string {
	return ProximityTableName
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
