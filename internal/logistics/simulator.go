// Simulator moving tracked entities and raising geofence alerts
package logistics

import (
	"math/rand"
	"sync"
	"time"

	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/telemetry"
)

// PositionWriter is an interface to support different position sinks.
type PositionWriter interface {
	Write(telemetry.PositionRow) error
}

// ProximityWriter handles geofence proximity events.
type ProximityWriter interface {
	WriteProximity(telemetry.ProximityRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.PositionRow) error
}

// Optional: Proximity writers may support batch mode
type batchProximityWriter interface {
	WriteProximities([]telemetry.ProximityRow) error
}

// Rand is the source of randomness consumed by a tick. Tests script it.
type Rand interface {
	Float64() float64
}

// Params tunes the random walk and the alert model.
type Params struct {
	TickInterval time.Duration
	TrailCap     int
	JitterDeg    float64 // maximum step per axis per tick
	ProximityDeg float64
	AlertChance  float64 // zero selects the default, negative disables alerts
	SpeedMinKmh  float64
	SpeedMaxKmh  float64
}

// DefaultParams returns the parameters of the field deployment.
func DefaultParams() Params {
	return Params{
		TickInterval: 4 * time.Second,
		TrailCap:     15,
		JitterDeg:    0.0004,
		ProximityDeg: 0.004,
		AlertChance:  0.02,
		SpeedMinKmh:  20,
		SpeedMaxKmh:  60,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.TickInterval <= 0 {
		p.TickInterval = d.TickInterval
	}
	if p.TrailCap <= 0 {
		p.TrailCap = d.TrailCap
	}
	if p.JitterDeg <= 0 {
		p.JitterDeg = d.JitterDeg
	}
	if p.ProximityDeg <= 0 {
		p.ProximityDeg = d.ProximityDeg
	}
	if p.AlertChance == 0 {
		p.AlertChance = d.AlertChance
	}
	if p.SpeedMaxKmh <= 0 {
		p.SpeedMinKmh, p.SpeedMaxKmh = d.SpeedMinKmh, d.SpeedMaxKmh
	}
	return p
}

// Options wires the simulator to its collaborators. All fields are optional.
type Options struct {
	Publisher       notify.Publisher
	Rand            Rand
	Writer          PositionWriter
	ProximityWriter ProximityWriter
	Now             func() time.Time
}

// Simulator advances the tracked entities on a fixed interval.
// The entity slice is never modified in place; each change installs a new one.
type Simulator struct {
	params    Params
	geofences []Geofence

	mu       sync.Mutex
	entities []Entity
	seq      uint64
	rand     Rand

	publisher       notify.Publisher
	writer          PositionWriter
	proximityWriter ProximityWriter
	now             func() time.Time

	subMu       sync.Mutex
	subscribers map[int]func([]Entity)
	nextSub     int

	deliverMu    sync.Mutex
	deliveredSeq uint64

	runMu sync.Mutex
	stop  func()
}

// NewSimulator creates a simulator over copies of entities and geofences.
func NewSimulator(params Params, entities []Entity, geofences []Geofence, opts Options) *Simulator {
	s := &Simulator{
		params:          params.withDefaults(),
		geofences:       append([]Geofence(nil), geofences...),
		entities:        cloneEntities(entities),
		rand:            opts.Rand,
		publisher:       opts.Publisher,
		writer:          opts.Writer,
		proximityWriter: opts.ProximityWriter,
		now:             opts.Now,
		subscribers:     make(map[int]func([]Entity)),
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Params returns the effective parameters.
func (s *Simulator) Params() Params {
	return s.params
}

// Entities returns a copy of the current snapshot.
func (s *Simulator) Entities() []Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneEntities(s.entities)
}

// Entity looks up one entity in the current snapshot.
func (s *Simulator) Entity(id string) (Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entities {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return Entity{}, false
}

// Geofences returns the static geofence list.
func (s *Simulator) Geofences() []Geofence {
	return append([]Geofence(nil), s.geofences...)
}

// SetState changes the movement state of one entity. It reports false for
// unknown ids.
func (s *Simulator) SetState(id string, state State) bool {
	s.mu.Lock()
	idx := -1
	for i, e := range s.entities {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	next := append([]Entity(nil), s.entities...)
	next[idx].State = state
	seq, snap := s.commitLocked(next)
	s.mu.Unlock()

	s.broadcast(seq, snap)
	return true
}

// ClearHistory empties every trail while leaving positions and planned
// routes untouched, then announces it.
func (s *Simulator) ClearHistory() {
	s.mu.Lock()
	next := make([]Entity, len(s.entities))
	for i, e := range s.entities {
		e.History = []geo.LatLng{}
		next[i] = e
	}
	seq, snap := s.commitLocked(next)
	s.mu.Unlock()

	s.broadcast(seq, snap)
	if s.publisher != nil {
		s.publisher.Add("LOGISTICS", "Visualisation history cleared.", notify.KindSuccess)
	}
}

// Subscribe registers fn to receive every new snapshot. The slice handed to
// fn is shared between subscribers and must not be modified. Deliveries are
// serialized in commit order, so fn must not call back into SetState,
// ClearHistory or tick synchronously.
func (s *Simulator) Subscribe(fn func([]Entity)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
		})
	}
}

// commitLocked installs next and numbers the change. s.mu must be held.
func (s *Simulator) commitLocked(next []Entity) (uint64, []Entity) {
	s.entities = next
	s.seq++
	return s.seq, cloneEntities(next)
}

// broadcast delivers snapshots in commit order. A snapshot older than the
// last delivered one is dropped.
func (s *Simulator) broadcast(seq uint64, snap []Entity) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if seq <= s.deliveredSeq {
		return
	}
	s.deliveredSeq = seq

	s.subMu.Lock()
	fns := make([]func([]Entity), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
