package logistics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"julferiin-ops/internal/telemetry"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
)

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes position and proximity rows to GreptimeDB via the
// ingester client. Tables are created on first write.
type GreptimeDBWriter struct {
	client         greptimeClient
	positionTable  string
	proximityTable string
	timeout        time.Duration
}

// NewGreptimeDBWriter connects to a GreptimeDB gRPC endpoint.
func NewGreptimeDBWriter(host string, port int, database string) (*GreptimeDBWriter, error) {
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{
		client:         client,
		positionTable:  telemetry.PositionTableName,
		proximityTable: telemetry.ProximityTableName,
		timeout:        5 * time.Second,
	}, nil
}

// Write inserts a single position row.
func (w *GreptimeDBWriter) Write(row telemetry.PositionRow) error {
	return w.WriteBatch([]telemetry.PositionRow{row})
}

// WriteBatch inserts multiple position rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.PositionRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.positionTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("entity_id", types.STRING)
	tbl.AddTagColumn("number", types.STRING)
	tbl.AddFieldColumn("lat", types.FLOAT64)
	tbl.AddFieldColumn("lng", types.FLOAT64)
	tbl.AddFieldColumn("speed_kmh", types.FLOAT64)
	tbl.AddFieldColumn("state", types.STRING)
	tbl.AddFieldColumn("trail_len", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.EntityID, r.Number, r.Lat, r.Lng, r.SpeedKmh, r.State, int64(r.TrailLen), r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, w.positionTable, len(rows))
}

// WriteProximity inserts a single proximity row.
func (w *GreptimeDBWriter) WriteProximity(row telemetry.ProximityRow) error {
	return w.WriteProximities([]telemetry.ProximityRow{row})
}

// WriteProximities inserts multiple proximity rows.
func (w *GreptimeDBWriter) WriteProximities(rows []telemetry.ProximityRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.proximityTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("entity_id", types.STRING)
	tbl.AddTagColumn("geofence_id", types.STRING)
	tbl.AddFieldColumn("distance_deg", types.FLOAT64)
	tbl.AddFieldColumn("alerted", types.BOOLEAN)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.EntityID, r.GeofenceID, r.DistanceDeg, r.Alerted, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, w.proximityTable, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, name string, n int) error {
	timeout := w.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		return fmt.Errorf("greptime write %s: %w", name, err)
	}
	slog.Debug("greptime rows written", "table", name, "rows", n)
	return nil
}
