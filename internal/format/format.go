// Package format provides output formatting utilities for CLI display.
//
// Centralises presentation concerns (byte sizes, timestamps) so that command
// implementations focus on maintenance logic.
package format

import (
	"fmt"
	"math"
	"time"
)

// HumanSize formats a byte count as human-readable (e.g., "1.2K", "3.4M").
func HumanSize(bytes int64) string {
	const (
		_        = iota
		KB int64 = 1 << (10 * iota)
		MB
		GB
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1fG", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1fM", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1fK", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}

// MB converts a byte count to megabytes, rounded to two decimal places.
// Threshold comparisons and JSON results both use this so the figure an
// operator sees is the figure the gating decision used.
func MB(bytes int64) float64 {
	return math.Round(float64(bytes)/(1024*1024)*100) / 100
}

// Timestamp formats a unix timestamp as RFC3339 UTC, or "" for zero.
func Timestamp(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

// FileStamp returns a timestamp suitable for embedding in file names,
// e.g. "20260829_153000". Always UTC so archive names sort correctly
// regardless of the host timezone.
func FileStamp(t time.Time) string {
	return t.UTC().Format("20060102_150405")
}
