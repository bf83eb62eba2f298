// info.go implements the read-only status report.

package maint

import (
	"context"
	"errors"
	"os"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/format"
	"github.com/lmurray-au/dbmaint/internal/store"
)

// histogramDays is the window of the per-day measurement histogram.
const histogramDays = 30

// InfoResult reports the current state of the database.
type InfoResult struct {
	Path         string           `json:"path"`
	Exists       bool             `json:"exists"`
	SizeBytes    int64            `json:"size_bytes"`
	SizeMB       float64          `json:"size_mb"`
	Measurements int64            `json:"measurements"`
	Sessions     int64            `json:"sessions"`
	Earliest     string           `json:"earliest,omitempty"`
	Latest       string           `json:"latest,omitempty"`
	Histogram    []store.DayCount `json:"daily_counts,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// Info reports size, row counts, timestamp bounds, and a 30-day daily
// histogram. A missing database yields Exists=false, not an error; any
// query failure is captured in the result's error field.
func (s *Service) Info(ctx context.Context) InfoResult {
	result := InfoResult{Path: s.dbPath}

	if _, err := os.Stat(s.dbPath); err != nil {
		return result
	}
	result.Exists = true

	err := s.info(ctx, &result)
	audit.Event("maint:info", "info").Rows(result.Measurements).Write(err)
	if err != nil {
		s.log.Error("info failed", err)
		result.Error = errString(err)
	}
	return result
}

func (s *Service) info(ctx context.Context, result *InfoResult) error {
	st, err := store.Open(s.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	size, err := st.FileSize()
	if err != nil {
		return err
	}
	result.SizeBytes = size
	result.SizeMB = format.MB(size)

	counts, err := st.Counts(ctx)
	if err != nil {
		return err
	}
	result.Measurements = counts["measurements"]
	result.Sessions = counts["sessions"]

	earliest, latest, err := st.Bounds(ctx)
	if err != nil && !errors.Is(err, store.ErrEmptyTable) {
		return err
	}
	result.Earliest = format.Timestamp(earliest)
	result.Latest = format.Timestamp(latest)

	hist, err := st.DailyHistogram(ctx, histogramDays)
	if err != nil {
		return err
	}
	result.Histogram = hist
	return nil
}
