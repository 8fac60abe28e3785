// JSON admin API exposing the dashboard intents over HTTP
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"julferiin-ops/internal/branch"
	"julferiin-ops/internal/geo"
	"julferiin-ops/internal/logging"
	"julferiin-ops/internal/logistics"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/view"
)

// Server wires HTTP requests to the simulator, the notification store and the
// shared view selection.
type Server struct {
	Sim        *logistics.Simulator
	Store      *notify.Store
	Selection  *view.Selection
	Projection geo.Projection
	Branches   *branch.Directory
	Director   *branch.Director

	// AccessLog receives combined access log lines. Defaults to os.Stderr.
	AccessLog io.Writer
}

// NewServer returns a Server with a fresh selection and the default projection.
func NewServer(sim *logistics.Simulator, store *notify.Store, branches *branch.Directory) *Server {
	return &Server{
		Sim:        sim,
		Store:      store,
		Selection:  view.NewSelection(),
		Projection: geo.DefaultProjection(),
		Branches:   branches,
		Director:   branch.NewDirector(store),
	}
}

// Router builds the gorilla/mux route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/entities", s.handleEntities).Methods(http.MethodGet)
	r.HandleFunc("/entities/{id}", s.handleEntity).Methods(http.MethodGet)
	r.HandleFunc("/entities/{id}/state", s.handleSetState).Methods(http.MethodPost)
	r.HandleFunc("/history/clear", s.handleClearHistory).Methods(http.MethodPost)
	r.HandleFunc("/geofences", s.handleGeofences).Methods(http.MethodGet)

	r.HandleFunc("/scene", s.handleScene).Methods(http.MethodGet)
	r.HandleFunc("/selection", s.handleGetSelection).Methods(http.MethodGet)
	r.HandleFunc("/selection/{id}", s.handleSelect).Methods(http.MethodPost)
	r.HandleFunc("/selection", s.handleDeselect).Methods(http.MethodDelete)
	r.HandleFunc("/layers/{layer}/toggle", s.handleToggleLayer).Methods(http.MethodPost)

	r.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	r.HandleFunc("/notifications", s.handleAddNotification).Methods(http.MethodPost)
	r.HandleFunc("/notifications", s.handleClearNotifications).Methods(http.MethodDelete)
	r.HandleFunc("/notifications/{id}/read", s.handleMarkRead).Methods(http.MethodPost)
	r.HandleFunc("/toasts", s.handleToasts).Methods(http.MethodGet)

	r.HandleFunc("/branches", s.handleBranches).Methods(http.MethodGet)
	r.HandleFunc("/branches/{id:[0-9]+}/alert", s.handleBranchAlert).Methods(http.MethodPost)
	r.HandleFunc("/branches/{id:[0-9]+}/verify", s.handleBranchVerify).Methods(http.MethodPost)
	r.HandleFunc("/branches/{id:[0-9]+}/report", s.handleBranchReport).Methods(http.MethodPost)

	return r
}

// Handler wraps the router with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	out := s.AccessLog
	if out == nil {
		out = os.Stderr
	}
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(handlers.LoggingHandler(out, s.Router()))
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	log := logging.FromContext(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("admin API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("admin API shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) branchFromPath(w http.ResponseWriter, r *http.Request) (branch.Branch, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid branch id")
		return branch.Branch{}, false
	}
	b, ok := s.Branches.Find(id)
	if !ok {
		writeError(w, http.StatusNotFound, "branch not found")
		return branch.Branch{}, false
	}
	return b, true
}
