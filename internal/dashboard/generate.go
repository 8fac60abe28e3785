package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/telemetry"
)

//go:embed templates/*.json.tmpl
var templateFS embed.FS

var templateFiles = []string{
	"templates/grafana-fleet.json.tmpl",
	"templates/grafana-notifications.json.tmpl",
}

// Tables names the data sources the dashboards query.
type Tables struct {
	Positions     string
	Proximity     string
	StorageKey    string
	StorageTable  string
	RefreshPeriod string
}

// DefaultTables returns the table names the simulator and the Postgres
// notification storage write to.
func DefaultTables() Tables {
	return Tables{
		Positions:     telemetry.PositionTableName,
		Proximity:     telemetry.ProximityTableName,
		StorageKey:    notify.DefaultStorageKey,
		StorageTable:  "local_storage",
		RefreshPeriod: "5s",
	}
}

// Render parses dashboard templates and writes rendered dashboards to outDir.
// Datasource UIDs come from GREPTIMEDB_DATASOURCE_UID and POSTGRES_DATASOURCE_UID.
func Render(outDir string) error {
	return RenderTables(outDir, DefaultTables())
}

// RenderTables is Render with explicit table names.
func RenderTables(outDir string, tables Tables) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, tplName := range templateFiles {
		t, err := template.New(filepath.Base(tplName)).Funcs(funcMap).ParseFS(templateFS, tplName)
		if err != nil {
			return err
		}
		var buf strings.Builder
		if err := t.Execute(&buf, tables); err != nil {
			return fmt.Errorf("render %s: %w", filepath.Base(tplName), err)
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(tplName), ".tmpl"))
		if err := os.WriteFile(outPath, []byte(buf.String()), 0o644); err != nil {
			return err
		}
	}
	return nil
}
