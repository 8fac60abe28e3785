package logistics

import (
	"encoding/json"
	"os"

	"julferiin-ops/internal/telemetry"
)

// FileWriter writes position and proximity rows to JSONL files.
type FileWriter struct {
	posFile  *os.File
	proxFile *os.File
	posEnc   *json.Encoder
	proxEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. proximityPath may be empty to skip that log.
func NewFileWriter(positionPath, proximityPath string) (*FileWriter, error) {
	pf, err := os.Create(positionPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{posFile: pf, posEnc: json.NewEncoder(pf)}
	if proximityPath != "" {
		xf, err := os.Create(proximityPath)
		if err != nil {
			pf.Close()
			return nil, err
		}
		fw.proxFile = xf
		fw.proxEnc = json.NewEncoder(xf)
	}
	return fw, nil
}

// Write logs a single position row.
func (f *FileWriter) Write(row telemetry.PositionRow) error {
	return f.posEnc.Encode(row)
}

// WriteBatch logs multiple position rows.
func (f *FileWriter) WriteBatch(rows []telemetry.PositionRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteProximity logs a single proximity row, if enabled.
func (f *FileWriter) WriteProximity(row telemetry.ProximityRow) error {
	if f.proxEnc == nil {
		return nil
	}
	return f.proxEnc.Encode(row)
}

// WriteProximities logs multiple proximity rows.
func (f *FileWriter) WriteProximities(rows []telemetry.ProximityRow) error {
	for _, r := range rows {
		if err := f.WriteProximity(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.posFile != nil {
		err = f.posFile.Close()
	}
	if f.proxFile != nil {
		if e := f.proxFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
