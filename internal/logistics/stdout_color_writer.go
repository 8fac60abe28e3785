// ColorStdoutWriter prints human-friendly, colorized positions to STDOUT.
package logistics

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"julferiin-ops/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var entityPalette = []string{colorCyan, colorMagenta, colorBlue, colorGreen, colorYellow}

// ColorStdoutWriter prints position and proximity rows using ANSI colors.
// The fleet and geofence overview is printed before the first row.
type ColorStdoutWriter struct {
	entities  []Entity
	geofences []Geofence
	out       io.Writer
	once      sync.Once

	mu           sync.Mutex
	entityColors map[string]string
	colorIdx     int
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(entities []Entity, geofences []Geofence) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		entities:     entities,
		geofences:    geofences,
		out:          os.Stdout,
		entityColors: make(map[string]string),
	}
}

func (w *ColorStdoutWriter) entityColor(id string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.entityColors[id]; ok {
		return c
	}
	c := entityPalette[w.colorIdx%len(entityPalette)]
	w.entityColors[id] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if len(w.entities) == 0 && len(w.geofences) == 0 {
		return
	}

	fmt.Fprintln(w.out, "Fleet:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tNumber\tName\tBase\tState\n")
	for _, e := range w.entities {
		col := w.entityColor(e.ID)
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\t%s\t%s\n", col, e.ID, colorReset, e.Number, e.Name, e.Base, e.State)
	}
	tw.Flush()

	fmt.Fprintln(w.out, "\nGeofences:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tCenter\tRadius (m)\n")
	for _, g := range w.geofences {
		fmt.Fprintf(tw, "%s\t%s\t(%.4f, %.4f)\t%.0f\n", g.ID, g.Name, g.Center.Lat, g.Center.Lng, g.RadiusM)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

func stateColor(state string) string {
	switch State(state) {
	case StateStopped:
		return colorYellow
	case StateOffline:
		return colorRed
	}
	return colorGreen
}

// Write outputs a single position row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.PositionRow) error {
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%sentity=%s%s ", w.entityColor(row.EntityID), row.EntityID, colorReset)
	fmt.Fprintf(w.out, "number=%s ", row.Number)
	fmt.Fprintf(w.out, "%slat=%.5f%s ", colorGreen, row.Lat, colorReset)
	fmt.Fprintf(w.out, "%slng=%.5f%s ", colorYellow, row.Lng, colorReset)
	fmt.Fprintf(w.out, "%sspd=%.0f%s ", colorCyan, row.SpeedKmh, colorReset)
	fmt.Fprintf(w.out, "%strail=%d%s ", colorGray, row.TrailLen, colorReset)
	fmt.Fprintf(w.out, "%sstate=%s%s\n", stateColor(row.State), row.State, colorReset)
	return nil
}

// WriteBatch outputs multiple position rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.PositionRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteProximity prints a geofence proximity event. Alerted events are highlighted.
func (w *ColorStdoutWriter) WriteProximity(p telemetry.ProximityRow) error {
	w.once.Do(w.printOverview)
	label, col := "NEAR", colorBlue
	if p.Alerted {
		label, col = "ALERT", colorRed
	}
	fmt.Fprintf(w.out, "%s[%s]%s %s%s%s entity=%s geofence=%s dist=%.5f\n",
		colorGray, p.Timestamp.Format(time.RFC3339), colorReset,
		col, label, colorReset, p.EntityID, p.GeofenceID, p.DistanceDeg)
	return nil
}
