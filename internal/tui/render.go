package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/logistics"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/view"
)

// Map glyphs, drawn in this order so later ones win a shared cell.
const (
	glyphEmpty       = "."
	glyphGeofence    = "◯"
	glyphTrail       = "·"
	glyphRoute       = "+"
	glyphDestination = "⚑"
	glyphVehicle     = "T"
	glyphPerson      = "P"
	glyphSelected    = "@"
)

var kindColors = map[notify.Kind]lipgloss.Color{
	notify.KindInfo:    lipgloss.Color("12"),
	notify.KindSuccess: lipgloss.Color("10"),
	notify.KindWarning: lipgloss.Color("11"),
	notify.KindError:   lipgloss.Color("9"),
}

// renderMap rasterises a scene onto a width x height character grid. The
// scene's percent placements span the grid; offsets share the percent unit.
func renderMap(scene view.Scene, width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	grid := make([][]string, height)
	for i := range grid {
		row := make([]string, width)
		for j := range row {
			row[j] = glyphEmpty
		}
		grid[i] = row
	}
	plot := func(p geo.Screen, glyph string) {
		col := int(math.Round(p.X / 100 * float64(width-1)))
		row := int(math.Round(p.Y / 100 * float64(height-1)))
		if col < 0 || col >= width || row < 0 || row >= height {
			return
		}
		grid[row][col] = glyph
	}

	for _, g := range scene.Geofences {
		plot(g.At, glyphGeofence)
	}
	for _, e := range scene.Entities {
		for _, d := range e.Trail {
			plot(geo.Screen{X: e.At.X + d.Offset.X, Y: e.At.Y + d.Offset.Y}, glyphTrail)
		}
	}
	if r := scene.Route; r != nil {
		var anchor geo.Screen
		for _, e := range scene.Entities {
			if e.ID == r.EntityID {
				anchor = e.At
			}
		}
		for _, p := range r.Points {
			plot(p, glyphRoute)
		}
		plot(geo.Screen{X: anchor.X + r.Destination.X, Y: anchor.Y + r.Destination.Y}, glyphDestination)
	}
	for _, e := range scene.Entities {
		glyph := glyphPerson
		if e.Category == logistics.CategoryLogistics {
			glyph = glyphVehicle
		}
		if e.Selected {
			glyph = glyphSelected
		}
		plot(e.At, glyph)
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

// renderToasts stacks the active toasts in a fixed-width column.
func renderToasts(toasts []notify.Record) string {
	if len(toasts) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style := lipgloss.NewStyle().
			Width(toastWidth-2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(kindColors[t.Kind])
		title := lipgloss.NewStyle().Bold(true).Foreground(kindColors[t.Kind]).Render(t.Title)
		boxes = append(boxes, style.Render(title+"\n"+t.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func formatNotification(n notify.Record) string {
	mark := " "
	if !n.Read {
		mark = lipgloss.NewStyle().Foreground(kindColors[n.Kind]).Render("●")
	}
	return fmt.Sprintf("%s %s [%s] %s: %s", mark, n.CreatedAt.Format("15:04:05"), strings.ToUpper(string(n.Kind)), n.Title, n.Message)
}
