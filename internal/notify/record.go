// Notification records and the pure state transitions applied to them
package notify

import (
	"fmt"
	"time"
)

// Kind classifies a notification for display.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// ParseKind validates a user supplied kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindInfo, KindSuccess, KindWarning, KindError:
		return k, nil
	}
	return "", fmt.Errorf("unknown notification kind %q", s)
}

// Record is one notification. Collections are ordered newest first.
type Record struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// Prepend returns a new collection with rec in front of list.
func Prepend(list []Record, rec Record) []Record {
	out := make([]Record, 0, len(list)+1)
	out = append(out, rec)
	return append(out, list...)
}

// MarkRead returns a copy of list with the record matching id marked read.
// changed is false when id is unknown or the record was already read; the
// original slice is returned untouched in that case.
func MarkRead(list []Record, id string) (out []Record, changed bool) {
	idx := -1
	for i, r := range list {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || list[idx].Read {
		return list, false
	}
	out = make([]Record, len(list))
	copy(out, list)
	out[idx].Read = true
	return out, true
}

// Clear returns the empty collection.
func Clear() []Record {
	return []Record{}
}

// UnreadCount counts records not yet read.
func UnreadCount(list []Record) int {
	n := 0
	for _, r := range list {
		if !r.Read {
			n++
		}
	}
	return n
}
