// auto.go implements the auto-maintain orchestrator.
//
// The orchestrator is a stateless decision procedure: read the current size,
// run whichever actions the thresholds call for, read the size again. Each
// step's result, including any captured error, is appended to the task list;
// a failed step never stops the steps after it. Operators detect partial
// failure by inspecting the per-task report, not by the run aborting.

package maint

import (
	"context"

	"github.com/google/uuid"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/format"
	"github.com/lmurray-au/dbmaint/internal/logger"
)

// Task is one orchestrated step and its result.
type Task struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Result any    `json:"result"`
}

// AutoResult reports an auto-maintain run.
type AutoResult struct {
	SizeBeforeBytes int64   `json:"size_before_bytes"`
	SizeBeforeMB    float64 `json:"size_before_mb"`
	SizeAfterBytes  int64   `json:"size_after_bytes"`
	FreedBytes      int64   `json:"freed_bytes"`
	Tasks           []Task  `json:"tasks"`
	Error           string  `json:"error,omitempty"`
}

// AutoMaintain reads the current database size and conditionally sequences
// archive, cleanup, optimize, and backup:
//
//   - size > max_db_size_mb: archive (when archive_days > 0), then cleanup
//   - size > vacuum_threshold_mb: optimize
//   - auto_backup set: backup
//
// It then reads the final size and reports the delta.
func (s *Service) AutoMaintain(ctx context.Context) AutoResult {
	var result AutoResult

	sizeBefore, err := s.fileSize()
	if err != nil {
		// Without a size there is no gating decision to make.
		s.log.Error("auto-maintain aborted", err)
		result.Error = errString(err)
		audit.Event("maint:auto", "maintain").Write(err)
		return result
	}
	result.SizeBeforeBytes = sizeBefore
	result.SizeBeforeMB = format.MB(sizeBefore)

	addTask := func(name string, res any) {
		result.Tasks = append(result.Tasks, Task{
			ID:     uuid.NewString(),
			Name:   name,
			Result: res,
		})
	}

	if result.SizeBeforeMB > float64(s.cfg.MaxDBSizeMB) {
		s.log.Info("size threshold exceeded",
			logger.Field{Key: "size_mb", Value: result.SizeBeforeMB},
			logger.Field{Key: "max_db_size_mb", Value: s.cfg.MaxDBSizeMB})

		if s.cfg.ArchiveDays > 0 {
			addTask("archive", s.Archive(ctx, ArchiveOptions{}))
		}
		addTask("cleanup", s.Cleanup(ctx, CleanupOptions{}))
	}

	if result.SizeBeforeMB > float64(s.cfg.VacuumThresholdMB) {
		addTask("optimize", s.Optimize(ctx))
	}

	if s.cfg.AutoBackup {
		addTask("backup", s.Backup(ctx, ""))
	}

	if sizeAfter, err := s.fileSize(); err == nil {
		result.SizeAfterBytes = sizeAfter
		result.FreedBytes = sizeBefore - sizeAfter
	}

	audit.Event("maint:auto", "maintain").
		Detail("tasks", len(result.Tasks)).
		Detail("freed_bytes", result.FreedBytes).
		Write(nil)
	s.log.Info("auto-maintain complete",
		logger.Field{Key: "tasks", Value: len(result.Tasks)},
		logger.Field{Key: "freed", Value: format.HumanSize(result.FreedBytes)})
	return result
}
