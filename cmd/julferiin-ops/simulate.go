package main

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"julferiin-ops/internal/admin"
	"julferiin-ops/internal/branch"
	"julferiin-ops/internal/config"
	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/logging"
	"julferiin-ops/internal/logistics"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/tui"
	"julferiin-ops/internal/view"
)

var (
	simPrintOnly bool
	simTick      time.Duration
	simLogFile   string
	simAdminAddr string
	simUI        bool
	simLogOutput string
	simNoColor   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time logistics simulator",
	Long:  "simulate moves the tracked fleet, raises geofence notifications and exports positions. The admin API and the terminal dashboard are optional.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if simTick > 0 {
			cfg.Simulation.TickInterval = simTick
		}

		log, closeLog, err := simulationLogger(os.Stderr)
		if err != nil {
			return err
		}
		defer closeLog()
		slog.SetDefault(log)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		ctx = logging.NewContext(ctx, log)

		store, closeStore, err := newStore(ctx, cfg.Notifications, newHost(cfg.Notifications), log)
		if err != nil {
			return err
		}
		defer closeStore()
		if cfg.Notifications.Desktop && !store.RequestPermission(ctx) {
			log.Info("desktop notifications unavailable")
		}

		params, entities, geofences, err := logistics.FromConfig(cfg)
		if err != nil {
			return err
		}
		writer, proxWriter, cleanup, err := simulationWriters(entities, geofences)
		if err != nil {
			return err
		}
		defer cleanup()
		opts := logistics.Options{Publisher: store, Writer: writer, ProximityWriter: proxWriter}
		if seed := cfg.Simulation.Seed; seed != 0 {
			opts.Rand = rand.New(rand.NewSource(seed))
		}
		simulator := logistics.NewSimulator(params, entities, geofences, opts)

		branches, err := branch.FromConfig(cfg)
		if err != nil {
			return err
		}
		projection := projectionFromConfig(cfg.Projection)
		selection := view.NewSelection()

		if simAdminAddr != "" {
			srv := newAdminServer(simulator, store, branches, log)
			srv.Selection = selection
			srv.Projection = projection
			go func() {
				if err := srv.Start(ctx, simAdminAddr); err != nil {
					log.Error("admin server failed", "err", err)
				}
			}()
		}

		if simUI {
			dash := tui.Start(tui.Config{
				Controller: tui.NewController(simulator, store),
				Selection:  selection,
				Geofences:  simulator.Geofences(),
				Projection: projection,
				Entities:   simulator.Entities(),
				Inbox:      store.Snapshot(),
			})
			defer dash.Close()
			defer simulator.Subscribe(dash.UpdateEntities)()
			defer store.Subscribe(dash.UpdateNotifications)()
		}

		stop := simulator.Start(ctx)
		<-ctx.Done()
		stop()
		log.Info("logistics simulation stopped")
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print positions to STDOUT instead of writing to GreptimeDB")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 0, "Override the tick interval (e.g. 500ms, 2s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export position/proximity logs (JSONL)")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin API listen address, empty to disable")
	simulateCmd.Flags().BoolVar(&simUI, "ui", false, "Show the terminal dashboard")
	simulateCmd.Flags().BoolVar(&simNoColor, "no-color", false, "Print JSON lines even when STDOUT is a terminal")
	simulateCmd.Flags().StringVar(&simLogOutput, "log-output", "julferiin.log", "Log file used while the dashboard owns the terminal")
}

// simulationWriters keeps position rows off STDOUT while the dashboard is shown.
func simulationWriters(entities []logistics.Entity, geofences []logistics.Geofence) (logistics.PositionWriter, logistics.ProximityWriter, func(), error) {
	if !simUI || os.Getenv("GREPTIMEDB_ENDPOINT") != "" {
		var color *logistics.ColorStdoutWriter
		if !simNoColor && !simUI && term.IsTerminal(int(os.Stdout.Fd())) {
			color = logistics.NewColorStdoutWriter(entities, geofences)
		}
		return newWriters(simPrintOnly && !simUI, simLogFile, color)
	}
	if simLogFile == "" {
		return nil, nil, func() {}, nil
	}
	fw, err := logistics.NewFileWriter(simLogFile, simLogFile+".proximity")
	if err != nil {
		return nil, nil, nil, err
	}
	return fw, fw, func() { fw.Close() }, nil
}

// simulationLogger logs to console, keeping STDOUT free for the position
// stream. While the dashboard owns the terminal it logs to simLogOutput.
func simulationLogger(console io.Writer) (*slog.Logger, func(), error) {
	if !simUI {
		return logging.NewWithWriter(console, os.Getenv("LOG_LEVEL")), func() {}, nil
	}
	f, err := os.OpenFile(simLogOutput, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}
	return logging.NewWithWriter(f, os.Getenv("LOG_LEVEL")), func() { f.Close() }, nil
}

func projectionFromConfig(p config.Projection) geo.Projection {
	proj := geo.DefaultProjection()
	if p.Scale > 0 {
		proj = geo.Projection{Origin: geo.LatLng{Lat: p.OriginLat, Lng: p.OriginLng}, Scale: p.Scale}
	}
	return proj
}

// newAdminServer sends HTTP access lines through the structured logger.
func newAdminServer(sim *logistics.Simulator, store *notify.Store, branches *branch.Directory, log *slog.Logger) *admin.Server {
	srv := admin.NewServer(sim, store, branches)
	srv.AccessLog = logWriter{log}
	return srv
}

// logWriter adapts access log lines to the structured logger.
type logWriter struct{ log *slog.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Info("http access", "line", string(trimNewline(p)))
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	for len(p) > 0 && (p[len(p)-1] == '\n' || p[len(p)-1] == '\r') {
		p = p[:len(p)-1]
	}
	return p
}
