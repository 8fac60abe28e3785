package notify

import (
	"fmt"
	"testing"
	"time"
)

func TestActiveToastsWindowAndLimit(t *testing.T) {
	now := time.Unix(1000, 0)
	var list []Record
	for i := 0; i < 6; i++ {
		list = Prepend(list, Record{ID: fmt.Sprintf("n%d", i), CreatedAt: now.Add(-time.Duration(5-i) * time.Second)})
	}
	toasts := ActiveToasts(list, now, DefaultToastWindow, DefaultToastLimit)
	if len(toasts) != 3 {
		t.Fatalf("expected 3 toasts, got %d", len(toasts))
	}
	for i, want := range []string{"n5", "n4", "n3"} {
		if toasts[i].ID != want {
			t.Fatalf("toast %d = %s, want %s", i, toasts[i].ID, want)
		}
	}
}

func TestActiveToastsSkipsReadAndExpired(t *testing.T) {
	now := time.Unix(1000, 0)
	list := []Record{
		{ID: "read", CreatedAt: now, Read: true},
		{ID: "fresh", CreatedAt: now.Add(-7 * time.Second)},
		{ID: "edge", CreatedAt: now.Add(-8 * time.Second)},
		{ID: "old", CreatedAt: now.Add(-time.Minute)},
	}
	toasts := ActiveToasts(list, now, DefaultToastWindow, DefaultToastLimit)
	if len(toasts) != 1 || toasts[0].ID != "fresh" {
		t.Fatalf("unexpected toasts: %+v", toasts)
	}
	for _, r := range toasts {
		if r.Read {
			t.Fatalf("read record returned as toast")
		}
	}
}

func TestActiveToastsNonPositiveLimit(t *testing.T) {
	now := time.Unix(1000, 0)
	list := []Record{{ID: "a", CreatedAt: now}}
	if got := ActiveToasts(list, now, DefaultToastWindow, 0); len(got) != 0 {
		t.Fatalf("expected no toasts, got %d", len(got))
	}
}
