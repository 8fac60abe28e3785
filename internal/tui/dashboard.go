// Terminal dashboard for the logistics fleet and the notification centre
package tui

import (
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/logistics"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/view"
)

// Controller receives the operator intents raised from the dashboard.
type Controller interface {
	ClearHistory()
	MarkRead(id string) bool
	ClearAll()
}

type controller struct {
	sim   *logistics.Simulator
	store *notify.Store
}

func (c controller) ClearHistory()           { c.sim.ClearHistory() }
func (c controller) MarkRead(id string) bool { return c.store.MarkRead(id) }
func (c controller) ClearAll()               { c.store.ClearAll() }

// NewController routes dashboard intents to the simulator and the store.
func NewController(sim *logistics.Simulator, store *notify.Store) Controller {
	return controller{sim: sim, store: store}
}

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// snapshotMsg carries a new entity snapshot.
type snapshotMsg struct{ entities []logistics.Entity }

// notificationsMsg carries a new notification store snapshot.
type notificationsMsg struct{ snap notify.Snapshot }

// Dashboard renders the fleet and notifications using a bubbletea TUI.
type Dashboard struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// Config holds the static inputs of the dashboard.
type Config struct {
	Controller Controller
	Selection  *view.Selection
	Geofences  []logistics.Geofence
	Projection geo.Projection
	Entities   []logistics.Entity
	Inbox      notify.Snapshot
}

// Start launches the bubbletea program on the alternate screen. When the
// operator quits, the process receives an interrupt so the caller's signal
// context unwinds the rest of the stack.
func Start(cfg Config) *Dashboard {
	d := &Dashboard{done: make(chan struct{})}
	d.sendSignal.Store(true)
	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	d.program = p
	go func() {
		_, _ = p.Run()
		close(d.done)
		if d.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return d
}

// UpdateEntities forwards a simulator snapshot. It matches the simulator's
// subscriber signature.
func (d *Dashboard) UpdateEntities(entities []logistics.Entity) {
	d.program.Send(snapshotMsg{entities: entities})
}

// UpdateNotifications forwards a store snapshot. It matches the store's
// subscriber signature.
func (d *Dashboard) UpdateNotifications(snap notify.Snapshot) {
	d.program.Send(notificationsMsg{snap: snap})
}

// Done is closed once the program has exited.
func (d *Dashboard) Done() <-chan struct{} {
	return d.done
}

// Close stops the program and waits for it to exit.
func (d *Dashboard) Close() error {
	d.sendSignal.Store(false)
	if d.program != nil {
		d.program.Send(tea.Quit())
	}
	if d.done != nil {
		<-d.done
	}
	return nil
}
