package logistics

import (
	"errors"

	"julferiin-ops/internal/telemetry"
)

// MultiWriter fans out position and proximity rows to multiple writers.
// Every writer is attempted; errors are joined.
type MultiWriter struct {
	posWriters  []PositionWriter
	proxWriters []ProximityWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(pws []PositionWriter, xws []ProximityWriter) *MultiWriter {
	return &MultiWriter{posWriters: pws, proxWriters: xws}
}

// Write sends a position row to all writers.
func (mw *MultiWriter) Write(row telemetry.PositionRow) error {
	var errs []error
	for _, w := range mw.posWriters {
		errs = append(errs, w.Write(row))
	}
	return errors.Join(errs...)
}

// WriteBatch sends multiple position rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.PositionRow) error {
	var errs []error
	for _, w := range mw.posWriters {
		if bw, ok := w.(batchWriter); ok {
			errs = append(errs, bw.WriteBatch(rows))
			continue
		}
		for _, r := range rows {
			if err := w.Write(r); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}

// WriteProximity sends a proximity row to all proximity writers.
func (mw *MultiWriter) WriteProximity(row telemetry.ProximityRow) error {
	var errs []error
	for _, w := range mw.proxWriters {
		errs = append(errs, w.WriteProximity(row))
	}
	return errors.Join(errs...)
}

// WriteProximities sends multiple proximity rows to all proximity writers, using batch if supported.
func (mw *MultiWriter) WriteProximities(rows []telemetry.ProximityRow) error {
	var errs []error
	for _, w := range mw.proxWriters {
		if bw, ok := w.(batchProximityWriter); ok {
			errs = append(errs, bw.WriteProximities(rows))
			continue
		}
		for _, r := range rows {
			if err := w.WriteProximity(r); err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	return errors.Join(errs...)
}
