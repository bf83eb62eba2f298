// Package audit provides centralised audit logging for dbmaint operations.
// Entries are stored in ~/.dbmaint/log/dbmaint-log.db and track every
// maintenance action run against any database on the host.
//
// # Fluent API
//
// Use the fluent builder API to construct and write log entries:
//
//	audit.Event("maint:cleanup", "delete").
//		Rows(result.DeletedRows).
//		Detail("retention_days", days).
//		Write(err)
//
//	audit.Event("sched:auto", "maintain").
//		Detail("tasks", len(tasks)).
//		Write(err)
//
// The source parameter follows the format "{component}:{action}" for CLI
// commands or "sched:{job}" for scheduler jobs. Examples: "maint:archive",
// "sched:hourly".
package audit

import (
	"sync"
	"time"
)

var (
	global *Logger
	mu     sync.Mutex
)

// Entry represents a single audit log entry.
type Entry struct {
	Source string // e.g., "maint:cleanup", "sched:daily"
	Action string // verb: info, delete, archive, optimize, backup, maintain
	Rows   int64  // rows affected, where meaningful

	// Timing
	Start int64 // unix timestamp when Event() called
	End   int64 // unix timestamp when Write() called

	Success bool           // whether the action succeeded
	Error   string         // error message if failed
	Detail  map[string]any // additional action-specific data
}

// Builder constructs an audit entry using a fluent API.
// Create with [Event], chain methods to set fields, then call [Builder.Write].
type Builder struct {
	entry Entry
}

// Event creates a new audit entry builder for a maintenance action.
//
// The source identifies where the action originated:
//   - CLI commands: "maint:{command}" (e.g., "maint:cleanup")
//   - scheduler jobs: "sched:{job}" (e.g., "sched:hourly")
//
// The action names what was done: "delete", "archive", "optimize", etc.
func Event(source, action string) *Builder {
	return &Builder{
		entry: Entry{
			Source: source,
			Action: action,
			Start:  time.Now().Unix(),
		},
	}
}

// Rows records how many rows the action affected.
func (b *Builder) Rows(n int64) *Builder {
	b.entry.Rows = n
	return b
}

// Detail adds a key-value pair to the entry's detail map.
//
// Use for action-specific data that doesn't fit standard fields: cutoff
// timestamps, output paths, freed byte counts. Can be called multiple times.
func (b *Builder) Detail(key string, value any) *Builder {
	if b.entry.Detail == nil {
		b.entry.Detail = make(map[string]any)
	}
	b.entry.Detail[key] = value
	return b
}

// Write writes the entry to the database, deriving success/failure from err.
//
// If err is nil, the entry is logged as successful; otherwise as failed with
// the error message. This is the standard way to complete an entry after an
// action:
//
//	deleted, err := st.DeleteOlderThan(ctx, cutoff, batch)
//	audit.Event("maint:cleanup", "delete").Rows(deleted).Write(err)
func (b *Builder) Write(err error) {
	b.entry.End = time.Now().Unix()
	b.entry.Success = err == nil
	if err != nil {
		b.entry.Error = err.Error()
	}
	Log(b.entry)
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	l, err := open()
	if err != nil {
		return err
	}
	global = l
	return nil
}

// SetDatabase records which database file subsequent entries refer to.
// The stored value is a short hash of the absolute path, enabling per-store
// aggregation without recording filesystem layouts.
func SetDatabase(path string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.target = hash(path)
	}
}

// Log writes an entry. Safe to call if logger not initialised (no-op).
func Log(e Entry) {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return
	}
	l.log(e)
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}
