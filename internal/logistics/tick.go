package logistics

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/logging"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/telemetry"
)

// Run starts the simulation loop and stops when the context is done.
// Ticks never overlap: a slow tick delays the next one.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "tick_interval", s.params.TickInterval, "entities", len(s.Entities()))
	ticker := time.NewTicker(s.params.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// Start launches Run in the background and returns a stop function that
// cancels the loop and waits for it to exit. Calling stop more than once is
// safe. Starting again stops the previous loop first.
func (s *Simulator) Start(ctx context.Context) (stop func()) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.stop != nil {
		s.stop()
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(runCtx)
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
	s.stop = stop
	return stop
}

type alert struct {
	title   string
	message string
}

// tick advances every moving entity once and fans out the results.
func (s *Simulator) tick(ctx context.Context) {
	log := logging.FromContext(ctx)
	now := s.now().UTC()

	var (
		alerts    []alert
		proximity []telemetry.ProximityRow
	)

	s.mu.Lock()
	next := make([]Entity, len(s.entities))
	for i, e := range s.entities {
		if e.State != StateMoving {
			next[i] = e
			continue
		}
		moved, rows, fired := s.step(e, now)
		next[i] = moved
		proximity = append(proximity, rows...)
		alerts = append(alerts, fired...)
	}
	seq, snap := s.commitLocked(next)
	s.mu.Unlock()

	if s.publisher != nil {
		for _, a := range alerts {
			s.publisher.Add(a.title, a.message, notify.KindInfo)
		}
	}
	s.writePositions(ctx, positionRows(snap, now))
	if len(proximity) > 0 {
		s.writeProximity(ctx, proximity)
	}
	s.broadcast(seq, snap)
	log.Debug("tick complete", "entities", len(snap), "proximity", len(proximity), "alerts", len(alerts))
}

// step moves one entity. It consumes random values in a fixed order: lat
// jitter, lng jitter, one alert draw per nearby geofence, then speed.
func (s *Simulator) step(e Entity, now time.Time) (Entity, []telemetry.ProximityRow, []alert) {
	trail := make([]geo.LatLng, 0, len(e.History)+1)
	trail = append(trail, e.History...)
	trail = append(trail, e.Position)
	if n := len(trail) - s.params.TrailCap; n > 0 {
		trail = append([]geo.LatLng(nil), trail[n:]...)
	}

	pos := geo.LatLng{
		Lat: e.Position.Lat + s.jitter(),
		Lng: e.Position.Lng + s.jitter(),
	}

	var rows []telemetry.ProximityRow
	var alerts []alert
	for _, gf := range s.geofences {
		dist := geo.DegreeDistance(pos, gf.Center)
		if dist >= s.params.ProximityDeg {
			continue
		}
		fired := s.rand.Float64() > 1-s.params.AlertChance
		rows = append(rows, telemetry.ProximityRow{
			EntityID:    e.ID,
			GeofenceID:  gf.ID,
			DistanceDeg: dist,
			Alerted:     fired,
			Timestamp:   now,
		})
		if fired {
			alerts = append(alerts, alert{
				title:   fmt.Sprintf("GEOFENCE: %s", e.Number),
				message: fmt.Sprintf("%s operating near %s.", e.Name, gf.Name),
			})
		}
	}

	span := s.params.SpeedMaxKmh - s.params.SpeedMinKmh
	e.SpeedKmh = s.params.SpeedMinKmh + math.Floor(s.rand.Float64()*span)
	e.Position = pos
	e.History = trail
	return e, rows, alerts
}

func (s *Simulator) jitter() float64 {
	return (s.rand.Float64() - 0.5) * 2 * s.params.JitterDeg
}

func positionRows(entities []Entity, ts time.Time) []telemetry.PositionRow {
	rows := make([]telemetry.PositionRow, len(entities))
	for i, e := range entities {
		rows[i] = telemetry.PositionRow{
			EntityID:  e.ID,
			Number:    e.Number,
			Lat:       e.Position.Lat,
			Lng:       e.Position.Lng,
			SpeedKmh:  e.SpeedKmh,
			State:     string(e.State),
			TrailLen:  len(e.History),
			Timestamp: ts,
		}
	}
	return rows
}

func (s *Simulator) writePositions(ctx context.Context, batch []telemetry.PositionRow) {
	if s.writer == nil {
		return
	}
	log := logging.FromContext(ctx)
	// Batch support if writer implements WriteBatch
	if bw, ok := s.writer.(batchWriter); ok {
		if err := bw.WriteBatch(batch); err != nil {
			log.Error("batch write failed", "err", err)
		}
		return
	}
	for _, row := range batch {
		if err := s.writer.Write(row); err != nil {
			log.Error("write failed", "entity_id", row.EntityID, "err", err)
		}
	}
}

func (s *Simulator) writeProximity(ctx context.Context, rows []telemetry.ProximityRow) {
	if s.proximityWriter == nil {
		return
	}
	log := logging.FromContext(ctx)
	if bw, ok := s.proximityWriter.(batchProximityWriter); ok {
		if err := bw.WriteProximities(rows); err != nil {
			log.Error("proximity batch write failed", "err", err)
		}
		return
	}
	for _, r := range rows {
		if err := s.proximityWriter.WriteProximity(r); err != nil {
			log.Error("proximity write failed", "entity_id", r.EntityID, "err", err)
		}
	}
}
