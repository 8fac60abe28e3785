package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"julferiin-ops/internal/branch"
	"julferiin-ops/internal/logging"
	"julferiin-ops/internal/logistics"
	"julferiin-ops/internal/notify"
)

func TestAdminAccessLogGoesToLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "info")
	store := notify.NewStore(context.Background(), notify.Options{Logger: log})
	sim := logistics.NewSimulator(logistics.DefaultParams(), logistics.BuiltInEntities(), nil, logistics.Options{})
	dir, err := branch.NewDirectory(branch.BuiltIn())
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}

	srv := newAdminServer(sim, store, dir, log)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status OK, got %v", w.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "http access") || !strings.Contains(out, "GET /health") {
		t.Fatalf("access line not routed to logger: %q", out)
	}
	if strings.HasSuffix(out, "\\n\"\n") {
		t.Fatalf("trailing newline kept in access line: %q", out)
	}
}

func TestSimulationLoggerUsesConsole(t *testing.T) {
	old := simUI
	simUI = false
	t.Cleanup(func() { simUI = old })

	var buf bytes.Buffer
	log, closeLog, err := simulationLogger(&buf)
	if err != nil {
		t.Fatalf("simulationLogger: %v", err)
	}
	defer closeLog()
	log.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("logger did not write to console writer: %q", buf.String())
	}
}
