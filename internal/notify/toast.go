package notify

import "time"

// Toast projection defaults.
const (
	DefaultToastWindow = 8 * time.Second
	DefaultToastLimit  = 3
)

// ActiveToasts selects the unread records created less than window before now,
// newest first, truncated to limit. list must already be newest first.
func ActiveToasts(list []Record, now time.Time, window time.Duration, limit int) []Record {
	if limit <= 0 {
		return []Record{}
	}
	out := make([]Record, 0, limit)
	for _, r := range list {
		if len(out) >= limit {
			break
		}
		if r.Read || now.Sub(r.CreatedAt) >= window {
			continue
		}
		out = append(out, r)
	}
	return out
}
