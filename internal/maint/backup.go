// backup.go implements byte-for-byte file copies into the archives directory.

package maint

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lmurray-au/dbmaint/internal/audit"
	"github.com/lmurray-au/dbmaint/internal/format"
	"github.com/lmurray-au/dbmaint/internal/logger"
)

// BackupResult reports a backup run.
type BackupResult struct {
	Path      string `json:"path,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
	Error     string `json:"error,omitempty"`
}

// Backup copies the database file into the archives directory. An empty name
// defaults to backup_<timestamp>.db. The WAL is checkpointed first so the
// copy contains every committed row.
func (s *Service) Backup(ctx context.Context, name string) BackupResult {
	var result BackupResult

	err := s.backup(ctx, name, &result)
	audit.Event("maint:backup", "backup").
		Detail("path", result.Path).
		Detail("size_bytes", result.SizeBytes).
		Write(err)
	if err != nil {
		s.log.Error("backup failed", err)
		result.Error = errString(err)
		return result
	}
	s.log.Info("backup complete",
		logger.Field{Key: "path", Value: result.Path},
		logger.Field{Key: "size", Value: format.HumanSize(result.SizeBytes)})
	return result
}

func (s *Service) backup(ctx context.Context, name string, result *BackupResult) error {
	// Checkpoint through a short-lived connection; the copy itself reads the
	// file directly.
	st, err := s.openStore()
	if err != nil {
		return err
	}
	if err := st.Checkpoint(ctx); err != nil {
		st.Close()
		return err
	}
	if err := st.Close(); err != nil {
		return err
	}

	dir, err := s.archiveDir()
	if err != nil {
		return err
	}
	if name == "" {
		name = fmt.Sprintf("backup_%s.db", format.FileStamp(s.now()))
	}
	dst := filepath.Join(dir, name)

	size, err := copyFile(s.dbPath, dst)
	if err != nil {
		return err
	}
	result.Path = dst
	result.SizeBytes = size
	return nil
}

// copyFile copies src to dst byte for byte, returning the bytes written.
func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return 0, fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return 0, err
	}
	return n, nil
}
