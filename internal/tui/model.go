package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/logistics"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/view"
)

const (
	toastWidth     = 34
	minMapHeight   = 8
	notesHeightPct = 0.3
)

type model struct {
	ctrl      Controller
	sel       *view.Selection
	proj      geo.Projection
	geofences []logistics.Geofence
	entities  []logistics.Entity
	inbox     notify.Snapshot

	table  table.Model
	vp     viewport.Model
	width  int
	height int
	help   bool
	status string
}

func newModel(cfg Config) model {
	cols := []table.Column{
		{Title: "Number", Width: 8},
		{Title: "Name", Width: 24},
		{Title: "Type", Width: 10},
		{Title: "State", Width: 8},
		{Title: "km/h", Width: 5},
		{Title: "Lat", Width: 9},
		{Title: "Lng", Width: 9},
		{Title: "Trail", Width: 5},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(true), table.WithHeight(4))
	sel := cfg.Selection
	if sel == nil {
		sel = view.NewSelection()
	}
	proj := cfg.Projection
	if proj.Scale == 0 {
		proj = geo.DefaultProjection()
	}
	m := model{
		ctrl:      cfg.Controller,
		sel:       sel,
		proj:      proj,
		geofences: cfg.Geofences,
		table:     t,
		vp:        viewport.New(0, 0),
	}
	m.setEntities(cfg.Entities)
	m.setInbox(cfg.Inbox)
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width - toastWidth - 1
		if m.vp.Width < 10 {
			m.vp.Width = msg.Width
		}
		m.vp.Height = int(float64(msg.Height) * notesHeightPct)
		if m.vp.Height < 3 {
			m.vp.Height = 3
		}
		m.refreshViewport()
	case snapshotMsg:
		m.setEntities(msg.entities)
	case notificationsMsg:
		m.setInbox(msg.snap)
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "esc", "q":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.help = true
			return m, nil
		case "enter":
			if e, ok := m.cursorEntity(); ok && m.sel.Select(e.ID, m.entities) {
				m.status = "selected " + e.Number
			}
			return m, nil
		case "esc":
			m.sel.Clear()
			m.status = "selection cleared"
			return m, nil
		case "g", "h", "r":
			layer, _ := view.ParseLayer(msg.String())
			on, err := m.sel.Toggle(layer)
			if err == nil {
				m.status = fmt.Sprintf("%s layer %s", layer, onOff(on))
			}
			return m, nil
		case "c":
			m.status = "clearing history"
			return m, m.intent(func(c Controller) { c.ClearHistory() })
		case "x":
			m.status = "clearing notifications"
			return m, m.intent(func(c Controller) { c.ClearAll() })
		case "m":
			if len(m.inbox.Toasts) == 0 {
				return m, nil
			}
			id := m.inbox.Toasts[0].ID
			return m, m.intent(func(c Controller) { c.MarkRead(id) })
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// intent runs fn off the event loop; controllers publish back into the program.
func (m model) intent(fn func(Controller)) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	ctrl := m.ctrl
	return func() tea.Msg {
		fn(ctrl)
		return nil
	}
}

func (m *model) setEntities(entities []logistics.Entity) {
	m.entities = entities
	m.sel.Refresh(entities)
	rows := make([]table.Row, len(entities))
	for i, e := range entities {
		rows[i] = table.Row{
			e.Number,
			e.Name,
			string(e.Category()),
			string(e.State),
			fmt.Sprintf("%.0f", e.SpeedKmh),
			fmt.Sprintf("%.5f", e.Position.Lat),
			fmt.Sprintf("%.5f", e.Position.Lng),
			fmt.Sprintf("%d", len(e.History)),
		}
	}
	m.table.SetRows(rows)
	m.table.SetHeight(len(rows) + 1)
	if m.table.Cursor() >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *model) setInbox(snap notify.Snapshot) {
	m.inbox = snap
	m.refreshViewport()
}

func (m model) cursorEntity() (logistics.Entity, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entities) {
		return logistics.Entity{}, false
	}
	return m.entities[i], true
}

func (m *model) refreshViewport() {
	if len(m.inbox.Notifications) == 0 {
		m.vp.SetContent("No notifications")
		return
	}
	lines := make([]string, 0, len(m.inbox.Notifications))
	for _, n := range m.inbox.Notifications {
		line := formatNotification(n)
		if m.vp.Width > 0 {
			line = wordwrap.String(line, m.vp.Width)
		}
		lines = append(lines, line)
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	m.vp.GotoTop()
}

func (m model) View() string {
	if m.help {
		return renderHelp()
	}
	divider := strings.Repeat("─", max(m.width, 1))
	scene := view.BuildScene(m.entities, m.geofences, m.sel, m.proj)

	mapHeight := m.height - lipgloss.Height(m.table.View()) - m.vp.Height - 5
	if mapHeight < minMapHeight {
		mapHeight = minMapHeight
	}
	notes := lipgloss.JoinHorizontal(lipgloss.Top, m.vp.View(), " ", renderToasts(m.inbox.Toasts))

	sections := []string{
		m.table.View(),
		divider,
		renderMap(scene, max(m.width, 20), mapHeight),
		divider,
		m.renderDetail(),
		divider,
		notes,
		divider,
		m.renderBottom(scene.Layers),
	}
	return strings.Join(sections, "\n")
}

func (m model) renderDetail() string {
	e, ok := m.sel.Current()
	if !ok {
		return "No entity selected (enter to select)"
	}
	dest := e.Destination
	if dest == "" {
		dest = "-"
	}
	return fmt.Sprintf("%s %s | %s | base %s | %s %.0f km/h | to %s | trail %d",
		e.Number, e.Name, e.Category(), e.Base, e.State, e.SpeedKmh, dest, len(e.History))
}

func (m model) renderBottom(layers view.Layers) string {
	line := fmt.Sprintf("Unread %d | Geofences %s | History %s | Route %s",
		m.inbox.Unread, indicator(layers.Geofences), indicator(layers.History), indicator(layers.PlannedRoute))
	if m.status != "" {
		line += " | " + m.status
	}
	return line + " | ? help"
}

func renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" ↑/↓  move cursor",
		" enter select entity",
		" esc  clear selection",
		" g    toggle geofences",
		" h    toggle history trail",
		" r    toggle planned route",
		" c    clear history",
		" x    clear notifications",
		" m    mark newest toast read",
		" pgup/pgdown scroll notifications",
		" q    quit",
		" ?    toggle this help view",
	}
	return strings.Join(lines, "\n")
}

func indicator(on bool) string {
	c := lipgloss.Color("9")
	if on {
		c = lipgloss.Color("10")
	}
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
