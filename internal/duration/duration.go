// Package duration provides parsing for human-readable duration strings.
//
// Operators specify ages as "12h" (hours), "7d" (days), "4w" (weeks), or
// "3m" (months) rather than Go's time.Duration format. This matches common
// CLI conventions and is more intuitive for retention and archive cutoffs.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Parse parses duration strings in the format: Nh (hours), Nd (days),
// Nw (weeks), Nm (months). Examples: "12h", "7d", "4w", "3m" (30-day months).
func Parse(s string) (time.Duration, error) {
	re := regexp.MustCompile(`^(\d+)([hdwm])$`)
	matches := re.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid duration format: %s (use 12h, 7d, 4w, or 3m)", s)
	}

	num, err := strconv.Atoi(matches[1])
	if err != nil {
		// Regex ensures digits only, but handle error for correctness
		return 0, fmt.Errorf("invalid number: %w", err)
	}

	switch matches[2] {
	case "h":
		return time.Duration(num) * time.Hour, nil
	case "d":
		return time.Duration(num) * 24 * time.Hour, nil
	case "w":
		return time.Duration(num) * 7 * 24 * time.Hour, nil
	case "m":
		return time.Duration(num) * 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid duration unit: %s", matches[2])
	}
}
