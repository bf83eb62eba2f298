// optimize.go implements index rebuild, statistics refresh, and compaction.

package maint

import (
	"context"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/format"
	"github.com/lmurray-au/dbmaint/internal/logger"
	"github.com/lmurray-au/dbmaint/internal/progress"
)

// OptimizeResult reports the size change from an optimize run.
type OptimizeResult struct {
	SizeBeforeBytes int64  `json:"size_before_bytes"`
	SizeAfterBytes  int64  `json:"size_after_bytes"`
	SavedBytes      int64  `json:"saved_bytes"`
	Error           string `json:"error,omitempty"`
}

// Optimize sequentially rebuilds indexes, refreshes planner statistics, and
// compacts the database file. There is no partial-failure handling beyond
// the captured error: the first failing step ends the run.
func (s *Service) Optimize(ctx context.Context) OptimizeResult {
	var result OptimizeResult

	err := s.optimize(ctx, &result)
	audit.Event("maint:optimize", "optimize").
		Detail("saved_bytes", result.SavedBytes).
		Write(err)
	if err != nil {
		s.log.Error("optimize failed", err)
		result.Error = errString(err)
		return result
	}
	s.log.Info("optimize complete",
		logger.Field{Key: "saved", Value: format.HumanSize(result.SavedBytes)})
	return result
}

func (s *Service) optimize(ctx context.Context, result *OptimizeResult) error {
	st, err := s.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// Flush the WAL first so the before figure reflects the true footprint.
	if err := st.Checkpoint(ctx); err != nil {
		return err
	}
	sizeBefore, err := st.FileSize()
	if err != nil {
		return err
	}
	result.SizeBeforeBytes = sizeBefore

	spin := progress.NewSpinner("Optimizing")
	spin.Start()
	defer spin.Stop()

	if err := st.Reindex(ctx); err != nil {
		return err
	}
	if err := st.Analyze(ctx); err != nil {
		return err
	}
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
	result.SavedBytes = sizeBefore - sizeAfter
	return nil
}
