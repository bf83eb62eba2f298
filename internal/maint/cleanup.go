// cleanup.go implements retention-based deletion and the standalone trim and
// reset procedures.
//
// Design: the dry run estimates freed space as (file size / total rows) ×
// affected rows. That is average-row-size extrapolation, not a measurement,
// and the result field is named estimated_freed_bytes to say so. The live
// run reports the measured before/after delta instead.

package maint

import (
	"context"
	"time"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/format"
	"github.com/lmurray-au/dbmaint/internal/logger"
)

// CleanupOptions configures a cleanup run.
type CleanupOptions struct {
	Days      int            // Retention override in days; 0 uses the configured value
	OlderThan *time.Duration // Exact age override; takes precedence over Days
	DryRun    bool           // Count and estimate without deleting
}

// CleanupResult reports what cleanup did (or, for a dry run, would do).
type CleanupResult struct {
	DryRun        bool   `json:"dry_run,omitempty"`
	RetentionDays int    `json:"retention_days"`
	Cutoff        string `json:"cutoff"`
	MatchedRows   int64  `json:"matched_rows,omitempty"`
	DeletedRows   int64  `json:"deleted_rows"`
	OrphanSessions int64 `json:"orphan_sessions_deleted,omitempty"`
	// EstimatedFreedBytes is an average-row-size extrapolation, only set on
	// dry runs. FreedBytes is the measured delta of a live run.
	EstimatedFreedBytes int64 `json:"estimated_freed_bytes,omitempty"`
	FreedBytes          int64 `json:"freed_bytes,omitempty"`
	SizeBeforeBytes     int64 `json:"size_before_bytes,omitempty"`
	SizeAfterBytes      int64 `json:"size_after_bytes,omitempty"`
	Error               string `json:"error,omitempty"`
}

// TrimResult reports an emergency "keep newest n" trim.
type TrimResult struct {
	Keep        int    `json:"keep"`
	DeletedRows int64  `json:"deleted_rows"`
	Error       string `json:"error,omitempty"`
}

// ResetResult reports a full reset.
type ResetResult struct {
	Confirmed   bool   `json:"confirmed"`
	DeletedRows int64  `json:"deleted_rows"`
	Error       string `json:"error,omitempty"`
}

// Cleanup deletes measurements older than the retention cutoff, removes
// orphaned sessions, reclaims space, and reports the freed amount. With
// DryRun it only counts affected rows and estimates the space they occupy.
// Rows at or after the cutoff are never removed.
func (s *Service) Cleanup(ctx context.Context, opts CleanupOptions) CleanupResult {
	age, days := s.retentionAge(opts)
	cutoffTS := s.cutoff(age)
	result := CleanupResult{
		DryRun:        opts.DryRun,
		RetentionDays: days,
		Cutoff:        format.Timestamp(cutoffTS),
	}

	err := s.cleanup(ctx, cutoffTS, &result)
	audit.Event("maint:cleanup", "delete").
		Rows(result.DeletedRows).
		Detail("dry_run", opts.DryRun).
		Detail("cutoff", result.Cutoff).
		Write(err)
	if err != nil {
		s.log.Error("cleanup failed", err)
		result.Error = errString(err)
		return result
	}

	if opts.DryRun {
		s.log.Info("cleanup dry run",
			logger.Field{Key: "matched_rows", Value: result.MatchedRows},
			logger.Field{Key: "estimated_freed", Value: format.HumanSize(result.EstimatedFreedBytes)})
	} else {
		s.log.Info("cleanup complete",
			logger.Field{Key: "deleted_rows", Value: result.DeletedRows},
			logger.Field{Key: "freed", Value: format.HumanSize(result.FreedBytes)})
	}
	return result
}

// retentionAge resolves the effective retention age and its day count for
// reporting. OlderThan wins over Days wins over config.
func (s *Service) retentionAge(opts CleanupOptions) (time.Duration, int) {
	if opts.OlderThan != nil {
		d := *opts.OlderThan
		return d, int(d.Hours() / 24)
	}
	days := opts.Days
	if days <= 0 {
		days = s.cfg.RetentionDays
	}
	return time.Duration(days) * 24 * time.Hour, days
}

func (s *Service) cleanup(ctx context.Context, cutoffTS int64, result *CleanupResult) error {
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if result.DryRun {
		matched, err := st.CountOlderThan(ctx, cutoffTS)
		if err != nil {
			return err
		}
		result.MatchedRows = matched

		counts, err := st.Counts(ctx)
		if err != nil {
			return err
		}
		size, err := st.FileSize()
		if err != nil {
			return err
		}
		if total := counts["measurements"]; total > 0 {
			result.EstimatedFreedBytes = size / total * matched
		}
		return nil
	}

	sizeBefore, err := st.FileSize()
	if err != nil {
		return err
	}
	result.SizeBeforeBytes = sizeBefore

	deleted, err := st.DeleteOlderThan(ctx, cutoffTS, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	result.DeletedRows = deleted

	orphans, err := st.DeleteOrphanSessions(ctx)
	if err != nil {
		return err
	}
	result.OrphanSessions = orphans

	if err := st.Vacuum(ctx); err != nil {
		return err
	}
	if err := st.Checkpoint(ctx); err != nil {
		return err
	}

	sizeAfter, err := st.FileSize()
	if err != nil {
		return err
	}
	result.SizeAfterBytes = sizeAfter
	result.FreedBytes = sizeBefore - sizeAfter
	return nil
}

// TrimToNewest is the emergency cleanup: it keeps only the newest keep rows
// (by id) and deletes everything older. Used by the scheduler's size check
// and by the dbmaintd cleanup command.
func (s *Service) TrimToNewest(ctx context.Context, keep int) TrimResult {
	if keep <= 0 {
		keep = EmergencyKeepRows
	}
	result := TrimResult{Keep: keep}

	err := func() error {
		st, err := s.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		deleted, err := st.KeepNewest(ctx, keep)
		if err != nil {
			return err
		}
		result.DeletedRows = deleted
		return st.Vacuum(ctx)
	}()

	audit.Event("maint:trim", "delete").Rows(result.DeletedRows).Detail("keep", keep).Write(err)
	if err != nil {
		s.log.Error("trim failed", err)
		result.Error = errString(err)
		return result
	}
	s.log.Info("trim complete", logger.Field{Key: "deleted_rows", Value: result.DeletedRows})
	return result
}

// FullReset unconditionally deletes all measurements and sessions and resets
// the autoincrement counter, but only when confirm is exactly "yes". Any
// other value leaves the store untouched with Confirmed=false.
func (s *Service) FullReset(ctx context.Context, confirm string) ResetResult {
	var result ResetResult
	if confirm != "yes" {
		return result
	}
	result.Confirmed = true

	err := func() error {
		st, err := s.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		deleted, err := st.ResetAll(ctx)
		if err != nil {
			return err
		}
		result.DeletedRows = deleted
		return st.Vacuum(ctx)
	}()

	audit.Event("maint:reset", "delete").Rows(result.DeletedRows).Write(err)
	if err != nil {
		s.log.Error("reset failed", err)
		result.Error = errString(err)
		return result
	}
	s.log.Warn("store reset", logger.Field{Key: "deleted_rows", Value: result.DeletedRows})
	return result
}
