package logistics

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"julferiin-ops/internal/telemetry"
)

// ReplayLog replays position rows from r to writer. A speed >0 scales the
// recorded gaps between rows; speed <= 0 replays without delay.
func ReplayLog(ctx context.Context, r io.Reader, writer PositionWriter, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	n := 0
	for {
		var row telemetry.PositionRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}
		if !prev.IsZero() && speed > 0 {
			diff := time.Duration(float64(row.Timestamp.Sub(prev)) / speed)
			if diff > 0 {
				timer := time.NewTimer(diff)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return n, ctx.Err()
				}
			}
		}
		if err := writer.Write(row); err != nil {
			return n, err
		}
		n++
		prev = row.Timestamp
	}
}

// ReplayLogFile opens a file and replays its position rows.
func ReplayLogFile(ctx context.Context, path string, writer PositionWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(ctx, f, writer, speed)
}
