package view

import (
	"testing"

	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/logistics"
)

func TestSelectUnknownID(t *testing.T) {
	s := NewSelection()
	if s.Select("ghost", logistics.BuiltInEntities()) {
		t.Fatalf("Select on unknown id should fail")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("selection should remain empty")
	}
}

func TestSelectionFollowsSimulator(t *testing.T) {
	sim := logistics.NewSimulator(logistics.DefaultParams(), logistics.BuiltInEntities(), nil, logistics.Options{})
	s := NewSelection()
	if !s.Select("v1", sim.Entities()) {
		t.Fatalf("Select(v1) failed")
	}
	cancel := sim.Subscribe(s.Refresh)
	defer cancel()

	sim.ClearHistory()
	cur, ok := s.Current()
	if !ok || len(cur.History) != 0 {
		t.Fatalf("selected entity kept stale history: %+v", cur)
	}

	sim.SetState("v1", logistics.StateOffline)
	cur, _ = s.Current()
	if cur.State != logistics.StateOffline {
		t.Fatalf("selected entity state = %s, want Offline", cur.State)
	}
	live, _ := sim.Entity("v1")
	if cur.Position != live.Position {
		t.Fatalf("selected position %+v differs from snapshot %+v", cur.Position, live.Position)
	}
}

func TestRefreshClearsVanishedEntity(t *testing.T) {
	s := NewSelection()
	entities := logistics.BuiltInEntities()
	s.Select("p1", entities)
	s.Refresh(entities[:1])
	if s.SelectedID() != "" {
		t.Fatalf("selection should clear when entity disappears")
	}
}

func TestRefreshUpdatesPosition(t *testing.T) {
	s := NewSelection()
	entities := logistics.BuiltInEntities()
	s.Select("v1", entities)
	entities[0].Position = geo.LatLng{Lat: 1, Lng: 2}
	s.Refresh(entities)
	cur, _ := s.Current()
	if cur.Position != (geo.LatLng{Lat: 1, Lng: 2}) {
		t.Fatalf("position not refreshed: %+v", cur.Position)
	}
}

func TestToggleLayers(t *testing.T) {
	s := NewSelection()
	if s.Layers() != AllLayers {
		t.Fatalf("all layers should start visible")
	}
	on, err := s.Toggle(LayerHistory)
	if err != nil || on {
		t.Fatalf("Toggle(history) = %v, %v", on, err)
	}
	on, _ = s.Toggle(LayerHistory)
	if !on {
		t.Fatalf("second toggle should restore visibility")
	}
	if _, err := s.Toggle("labels"); err == nil {
		t.Fatalf("expected error for unknown layer")
	}
	if l, err := ParseLayer("h"); err != nil || l != LayerHistory {
		t.Fatalf("ParseLayer(h) = %v, %v", l, err)
	}
}

func TestClear(t *testing.T) {
	s := NewSelection()
	s.Select("v1", logistics.BuiltInEntities())
	s.Clear()
	if _, ok := s.Current(); ok {
		t.Fatalf("Clear did not deselect")
	}
}
