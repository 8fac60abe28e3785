package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"julferiin-ops/internal/logistics"
)

const defaultGreptimePort = 4001

// newWriters sets up position and proximity writers based on flags and env vars.
// A non-nil color writer replaces the JSON STDOUT sink.
// It returns the writers and a cleanup function to close any resources.
func newWriters(printOnly bool, logFile string, color *logistics.ColorStdoutWriter) (logistics.PositionWriter, logistics.ProximityWriter, func(), error) {
	cleanup := func() {}

	writer, proxWriter, err := baseWriters(printOnly, color)
	if err != nil {
		return nil, nil, nil, err
	}
	if logFile == "" {
		return writer, proxWriter, cleanup, nil
	}

	fw, err := logistics.NewFileWriter(logFile, logFile+".proximity")
	if err != nil {
		return nil, nil, nil, err
	}
	mw := logistics.NewMultiWriter(
		[]logistics.PositionWriter{writer, fw},
		[]logistics.ProximityWriter{proxWriter, fw},
	)
	cleanup = func() { fw.Close() }
	return mw, mw, cleanup, nil
}

// baseWriters chooses the underlying sink based on the printOnly flag and env vars.
func baseWriters(printOnly bool, color *logistics.ColorStdoutWriter) (logistics.PositionWriter, logistics.ProximityWriter, error) {
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if printOnly || endpoint == "" {
		if color != nil {
			return color, color, nil
		}
		w := logistics.NewJSONStdoutWriter()
		return w, w, nil
	}

	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, nil, err
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	w, err := logistics.NewGreptimeDBWriter(host, port, database)
	if err != nil {
		return nil, nil, err
	}
	return w, w, nil
}

// splitEndpoint accepts host or host:port.
func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid GREPTIMEDB_ENDPOINT port %q: %w", portStr, err)
	}
	return host, port, nil
}

// newPositionWriter creates a position writer without proximity handling.
func newPositionWriter(printOnly bool) (logistics.PositionWriter, error) {
	w, _, _, err := newWriters(printOnly, "", nil)
	return w, err
}
