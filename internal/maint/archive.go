// archive.go implements export of aged rows to flat files.
//
// Archiving and cleanup are deliberately independent: archiving copies rows
// out but leaves them in the store, so an operator (or auto-maintain) must
// run cleanup afterwards to actually free the space.

package maint

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/exporter"
	"github.com/lmurray-au/dbmaint/internal/format"
	"github.com/lmurray-au/dbmaint/internal/logger"
)

// ArchiveOptions configures an archive run.
type ArchiveOptions struct {
	Days      int            // Archive age override in days; 0 uses the configured value
	OlderThan *time.Duration // Exact age override; takes precedence over Days
	Compress  *bool          // Override the configured compress flag
}

// ArchiveResult reports an archive run.
type ArchiveResult struct {
	ArchiveDays  int    `json:"archive_days"`
	Cutoff       string `json:"cutoff"`
	ArchivedRows int64  `json:"archived_rows"`
	Path         string `json:"path,omitempty"`
	Compressed   bool   `json:"compressed"`
	Error        string `json:"error,omitempty"`
}

// Archive writes all measurements older than the archive cutoff to a
// timestamp-named CSV under the archives directory, gzipped unless disabled.
// The archived rows stay in the store.
func (s *Service) Archive(ctx context.Context, opts ArchiveOptions) ArchiveResult {
	age, days := s.archiveAge(opts)
	cutoffTS := s.cutoff(age)

	compress := s.cfg.Compress
	if opts.Compress != nil {
		compress = *opts.Compress
	}

	result := ArchiveResult{
		ArchiveDays: days,
		Cutoff:      format.Timestamp(cutoffTS),
		Compressed:  compress,
	}

	err := s.archive(ctx, cutoffTS, compress, &result)
	audit.Event("maint:archive", "archive").
		Rows(result.ArchivedRows).
		Detail("path", result.Path).
		Detail("compressed", compress).
		Write(err)
	if err != nil {
		s.log.Error("archive failed", err)
		result.Error = errString(err)
		return result
	}
	s.log.Info("archive complete",
		logger.Field{Key: "rows", Value: result.ArchivedRows},
		logger.Field{Key: "path", Value: result.Path})
	return result
}

func (s *Service) archiveAge(opts ArchiveOptions) (time.Duration, int) {
	if opts.OlderThan != nil {
		d := *opts.OlderThan
		return d, int(d.Hours() / 24)
	}
	days := opts.Days
	if days <= 0 {
		days = s.cfg.ArchiveDays
	}
	return time.Duration(days) * 24 * time.Hour, days
}

func (s *Service) archive(ctx context.Context, cutoffTS int64, compress bool, result *ArchiveResult) error {
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	dir, err := s.archiveDir()
	if err != nil {
		return err
	}

	outPath := filepath.Join(dir, fmt.Sprintf("archive_%s.csv", format.FileStamp(s.now())))
	exp, err := exporter.Run(ctx, st, cutoffTS, outPath, exporter.Options{Compress: compress})
	if err != nil {
		return err
	}
	result.ArchivedRows = exp.Rows
	result.Path = exp.Path
	return nil
}
