// Package exporter writes aged measurement rows to delimited flat files.
//
// Archive files live under an archives/ subdirectory next to the database and
// are named archive_<timestamp>.csv, optionally gzip-compressed to .csv.gz
// with the plain file removed afterwards. Exporting never deletes rows from
// the store; cleanup is a separate action.
package exporter

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lmurray-au/dbmaint/internal/progress"
	"github.com/lmurray-au/dbmaint/internal/store"
)

// Options configures an export operation.
type Options struct {
	Compress bool // gzip the file and remove the uncompressed original
}

// Result contains the outcome of an export operation.
type Result struct {
	Rows int64  // Number of measurement rows written
	Path string // Final file path (.csv or .csv.gz)
}

// header is the first record of every archive file.
var header = []string{"id", "session_id", "recorded_at", "channel", "value"}

// Run exports all measurements strictly older than cutoff to outPath,
// ordered by timestamp. With Compress set, the finished CSV is gzipped and
// the uncompressed file removed; Result.Path always names the surviving file.
func Run(ctx context.Context, st *store.SQLiteStore, cutoff int64, outPath string, opts Options) (Result, error) {
	var result Result

	total, err := st.CountOlderThan(ctx, cutoff)
	if err != nil {
		return result, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return result, fmt.Errorf("create archive file: %w", err)
	}

	prog := progress.New("Archiving", int(total))
	w := csv.NewWriter(f)

	writeErr := func() error {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		return st.OlderThan(ctx, cutoff, func(m store.Measurement) error {
			rec := []string{
				strconv.FormatInt(m.ID, 10),
				m.SessionID,
				m.RecordedAtTime().Format("2006-01-02T15:04:05Z"),
				m.Channel,
				strconv.FormatFloat(m.Value, 'f', -1, 64),
			}
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write row %d: %w", m.ID, err)
			}
			result.Rows++
			prog.Increment()
			prog.Print()
			return nil
		})
	}()
	prog.Done()

	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		// Don't leave a half-written archive behind.
		os.Remove(outPath)
		return Result{}, writeErr
	}

	result.Path = outPath
	if opts.Compress {
		gzPath, err := compressFile(outPath)
		if err != nil {
			return result, fmt.Errorf("compress archive: %w", err)
		}
		result.Path = gzPath
	}
	return result, nil
}

// compressFile gzips path to path+".gz" and removes the original.
func compressFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	gzPath := path + ".gz"
	dst, err := os.Create(gzPath)
	if err != nil {
		return "", err
	}

	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		dst.Close()
		os.Remove(gzPath)
		return "", err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		os.Remove(gzPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(gzPath)
		return "", err
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove uncompressed file: %w", err)
	}
	return gzPath, nil
}

// ReadRows reads an archive file back, transparently handling gzip, and
// returns all records including the header. Used by operators to spot-check
// archives and by tests to verify round-trips.
func ReadRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return csv.NewReader(r).ReadAll()
}
