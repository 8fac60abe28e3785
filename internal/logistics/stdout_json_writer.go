package logistics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"julferiin-ops/internal/telemetry"
)

// JSONStdoutWriter prints position and proximity rows as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a position row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.PositionRow) error {
	return w.print(row)
}

// WriteBatch outputs multiple position rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.PositionRow) error {
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteProximity outputs a proximity event in JSON format.
func (w *JSONStdoutWriter) WriteProximity(row telemetry.ProximityRow) error {
	return w.print(row)
}

func (w *JSONStdoutWriter) print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
