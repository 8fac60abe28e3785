package logistics

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/telemetry"
)

// scriptedRand returns the scripted values in order, then 0.5 forever.
type scriptedRand struct {
	vals []float64
	i    int
}

func (r *scriptedRand) Float64() float64 {
	if r.i >= len(r.vals) {
		return 0.5
	}
	v := r.vals[r.i]
	r.i++
	return v
}

type recordingPublisher struct {
	mu   sync.Mutex
	recs []notify.Record
}

func (p *recordingPublisher) Add(title, message string, kind notify.Kind) notify.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := notify.Record{Title: title, Message: message, Kind: kind}
	p.recs = append(p.recs, rec)
	return rec
}

func (p *recordingPublisher) all() []notify.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]notify.Record(nil), p.recs...)
}

// MockWriter collects position and proximity rows for validation
type MockWriter struct {
	mu        sync.Mutex
	Rows      []telemetry.PositionRow
	Proximity []telemetry.ProximityRow
}

func (w *MockWriter) Write(row telemetry.PositionRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Rows = append(w.Rows, row)
	return nil
}

func (w *MockWriter) WriteProximity(row telemetry.ProximityRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Proximity = append(w.Proximity, row)
	return nil
}

func (w *MockWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.Rows)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func truckOnly() []Entity { return BuiltInEntities()[:1] }

func TestTickMovesTruck(t *testing.T) {
	pub := &recordingPublisher{}
	w := &MockWriter{}
	rnd := &scriptedRand{vals: []float64{0.75, 0.625, 0.5, 0.5}}
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	sim := NewSimulator(DefaultParams(), truckOnly(), BuiltInGeofences(), Options{
		Publisher: pub, Rand: rnd, Writer: w, ProximityWriter: w,
		Now: func() time.Time { return start },
	})

	sim.tick(context.Background())

	got, ok := sim.Entity("v1")
	if !ok {
		t.Fatalf("v1 missing")
	}
	if !near(got.Position.Lat, -15.1169) || !near(got.Position.Lng, 39.2663) {
		t.Fatalf("position = %+v, want (-15.1169, 39.2663)", got.Position)
	}
	if len(got.History) != 6 {
		t.Fatalf("history len = %d, want 6", len(got.History))
	}
	if last := got.History[5]; last != (geo.LatLng{Lat: -15.1171, Lng: 39.2662}) {
		t.Fatalf("last trail point = %+v", last)
	}
	if got.SpeedKmh != 40 {
		t.Fatalf("speed = %v, want 40", got.SpeedKmh)
	}
	if len(pub.all()) != 0 {
		t.Fatalf("unexpected notifications: %+v", pub.all())
	}
	if len(w.Rows) != 1 || w.Rows[0].EntityID != "v1" || w.Rows[0].TrailLen != 6 || !w.Rows[0].Timestamp.Equal(start) {
		t.Fatalf("unexpected position rows: %+v", w.Rows)
	}
	// only Armazém Central is within range of the new position
	if len(w.Proximity) != 1 || w.Proximity[0].GeofenceID != "g1" || w.Proximity[0].Alerted {
		t.Fatalf("unexpected proximity rows: %+v", w.Proximity)
	}
	if rnd.i != 4 {
		t.Fatalf("consumed %d random values, want 4", rnd.i)
	}
}

func TestTickGeofenceAlert(t *testing.T) {
	pub := &recordingPublisher{}
	w := &MockWriter{}
	rnd := &scriptedRand{vals: []float64{0.5, 0.5, 0.99, 0}}
	sim := NewSimulator(DefaultParams(), truckOnly(), BuiltInGeofences(), Options{
		Publisher: pub, Rand: rnd, ProximityWriter: w,
	})

	sim.tick(context.Background())

	recs := pub.all()
	if len(recs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(recs))
	}
	if recs[0].Title != "GEOFENCE: TR-102" || recs[0].Kind != notify.KindInfo {
		t.Fatalf("unexpected alert: %+v", recs[0])
	}
	if recs[0].Message != "Camião de Logística A operating near Armazém Central." {
		t.Fatalf("message = %q", recs[0].Message)
	}
	if len(w.Proximity) != 1 || !w.Proximity[0].Alerted {
		t.Fatalf("proximity row not marked alerted: %+v", w.Proximity)
	}
	if e, _ := sim.Entity("v1"); e.SpeedKmh != 20 {
		t.Fatalf("speed = %v, want 20", e.SpeedKmh)
	}
}

func TestTickNoAlertAtThreshold(t *testing.T) {
	pub := &recordingPublisher{}
	rnd := &scriptedRand{vals: []float64{0.5, 0.5, 0.98}}
	sim := NewSimulator(DefaultParams(), truckOnly(), BuiltInGeofences(), Options{Publisher: pub, Rand: rnd})
	sim.tick(context.Background())
	if n := len(pub.all()); n != 0 {
		t.Fatalf("r=0.98 must not alert, got %d notifications", n)
	}
}

func TestTrailKeepsLastFifteen(t *testing.T) {
	e := Entity{ID: "v9", Number: "TR-9", State: StateMoving, Position: geo.LatLng{Lat: 1, Lng: 1}}
	for i := 0; i < 15; i++ {
		e.History = append(e.History, geo.LatLng{Lat: float64(i), Lng: 0})
	}
	sim := NewSimulator(DefaultParams(), []Entity{e}, nil, Options{Rand: &scriptedRand{}})

	sim.tick(context.Background())
	got, _ := sim.Entity("v9")
	if len(got.History) != 15 {
		t.Fatalf("history len = %d, want 15", len(got.History))
	}
	if got.History[0].Lat != 1 {
		t.Fatalf("oldest point not dropped: %+v", got.History[0])
	}
	if got.History[14] != (geo.LatLng{Lat: 1, Lng: 1}) {
		t.Fatalf("newest point = %+v", got.History[14])
	}

	for i := 0; i < 20; i++ {
		sim.tick(context.Background())
	}
	got, _ = sim.Entity("v9")
	if len(got.History) != 15 {
		t.Fatalf("history len after 21 ticks = %d", len(got.History))
	}
}

func TestTickLeavesStoppedEntities(t *testing.T) {
	entities := BuiltInEntities()
	sim := NewSimulator(DefaultParams(), entities, BuiltInGeofences(), Options{Rand: &scriptedRand{vals: []float64{0.9, 0.9, 0.9, 0.9, 0.9}}})
	if !sim.SetState("p1", StateStopped) {
		t.Fatalf("SetState(p1) = false")
	}
	if sim.SetState("nobody", StateOffline) {
		t.Fatalf("SetState on unknown id should report false")
	}

	sim.tick(context.Background())

	p1, _ := sim.Entity("p1")
	if p1.Position != entities[1].Position || len(p1.History) != len(entities[1].History) || p1.SpeedKmh != 5 {
		t.Fatalf("stopped entity changed: %+v", p1)
	}
	v1, _ := sim.Entity("v1")
	if v1.Position == entities[0].Position {
		t.Fatalf("moving entity did not move")
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	sim := NewSimulator(DefaultParams(), BuiltInEntities(), nil, Options{Rand: &scriptedRand{}})
	before := sim.Entities()
	before[0].History[0] = geo.LatLng{}
	before[0].Name = "changed"

	again := sim.Entities()
	if again[0].Name == "changed" || again[0].History[0] == (geo.LatLng{}) {
		t.Fatalf("caller mutation leaked into simulator state")
	}
}

func TestClearHistory(t *testing.T) {
	pub := &recordingPublisher{}
	sim := NewSimulator(DefaultParams(), BuiltInEntities(), BuiltInGeofences(), Options{Publisher: pub, Rand: &scriptedRand{}})
	var got []Entity
	cancel := sim.Subscribe(func(es []Entity) { got = es })
	defer cancel()

	sim.ClearHistory()

	if len(got) != 2 {
		t.Fatalf("subscriber did not receive snapshot")
	}
	for _, e := range sim.Entities() {
		if len(e.History) != 0 {
			t.Fatalf("%s history not cleared: %d", e.ID, len(e.History))
		}
		if len(e.PlannedRoute) == 0 {
			t.Fatalf("%s planned route lost", e.ID)
		}
	}
	recs := pub.all()
	if len(recs) != 1 || recs[0].Title != "LOGISTICS" || recs[0].Message != "Visualisation history cleared." || recs[0].Kind != notify.KindSuccess {
		t.Fatalf("unexpected notifications: %+v", recs)
	}

	// the next tick starts a fresh trail
	sim.tick(context.Background())
	v1, _ := sim.Entity("v1")
	if len(v1.History) != 1 {
		t.Fatalf("history after tick = %d, want 1", len(v1.History))
	}
}

func TestSubscribeCancel(t *testing.T) {
	sim := NewSimulator(DefaultParams(), truckOnly(), nil, Options{Rand: &scriptedRand{}})
	calls := 0
	cancel := sim.Subscribe(func([]Entity) { calls++ })
	sim.tick(context.Background())
	cancel()
	cancel()
	sim.tick(context.Background())
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestStartStop(t *testing.T) {
	params := DefaultParams()
	params.TickInterval = 5 * time.Millisecond
	w := &MockWriter{}
	sim := NewSimulator(params, BuiltInEntities(), nil, Options{Writer: w})

	stop := sim.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for w.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("simulator never ticked")
		}
		time.Sleep(time.Millisecond)
	}
	stop()
	stop()

	n := w.count()
	time.Sleep(30 * time.Millisecond)
	if w.count() != n {
		t.Fatalf("ticks continued after stop: %d -> %d", n, w.count())
	}
}

func TestStartReplacesRunningLoop(t *testing.T) {
	params := DefaultParams()
	params.TickInterval = 5 * time.Millisecond
	w := &MockWriter{}
	sim := NewSimulator(params, truckOnly(), nil, Options{Writer: w})

	first := sim.Start(context.Background())
	second := sim.Start(context.Background())
	second()
	first()

	n := w.count()
	time.Sleep(30 * time.Millisecond)
	if w.count() != n {
		t.Fatalf("a loop survived both stops")
	}
}

func TestCategory(t *testing.T) {
	if (Entity{ID: "v1"}).Category() != CategoryLogistics {
		t.Fatalf("v-prefixed ids are logistics")
	}
	if (Entity{ID: "p1"}).Category() != CategoryPersonnel {
		t.Fatalf("other ids are personnel")
	}
}

func TestParseState(t *testing.T) {
	if s, err := ParseState("offline"); err != nil || s != StateOffline {
		t.Fatalf("ParseState(offline) = %v, %v", s, err)
	}
	if _, err := ParseState("parked"); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}

func TestConcurrentTickAndClearHistoryDeliverLatest(t *testing.T) {
	for round := 0; round < 100; round++ {
		sim := NewSimulator(DefaultParams(), BuiltInEntities(), nil, Options{})

		var (
			mu    sync.Mutex
			last  []Entity
			calls int
		)
		cancel := sim.Subscribe(func(es []Entity) {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				time.Sleep(50 * time.Microsecond)
			}
			mu.Lock()
			last = es
			mu.Unlock()
		})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); sim.tick(context.Background()) }()
		go func() { defer wg.Done(); sim.ClearHistory() }()
		wg.Wait()
		cancel()

		want := sim.Entities()
		mu.Lock()
		got := last
		mu.Unlock()
		for i := range want {
			if len(got[i].History) != len(want[i].History) || got[i].Position != want[i].Position {
				t.Fatalf("round %d: last delivered %s has trail %d, current %d", round, want[i].ID, len(got[i].History), len(want[i].History))
			}
		}
	}
}

func TestZeroParamsDefaultAlertChance(t *testing.T) {
	sim := NewSimulator(Params{}, nil, nil, Options{})
	if got := sim.Params().AlertChance; got != DefaultParams().AlertChance {
		t.Fatalf("AlertChance = %v, want default", got)
	}

	params := DefaultParams()
	params.AlertChance = -1
	pub := &recordingPublisher{}
	e := truckOnly()
	quiet := NewSimulator(params, e, BuiltInGeofences(), Options{Publisher: pub, Rand: &scriptedRand{vals: []float64{0.5, 0.5, 0.999, 0.999}}})
	quiet.tick(context.Background())
	if recs := pub.all(); len(recs) != 0 {
		t.Fatalf("negative alert chance still alerted: %+v", recs)
	}
}
