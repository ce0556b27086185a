package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/runsight/runsight/internal/model"
)

// EventLogStore provides append/read operations over the bounded event log.
type EventLogStore interface {
	// Append adds an event to the log, evicting the oldest entry when the
	// log is full, and returns the event's position in the log.
	Append(ctx context.Context, ev *model.Event) (int, error)

	// Snapshot returns a point-in-time copy of the log, oldest first.
	Snapshot(ctx context.Context) ([]model.Event, error)

	// Capacity returns the maximum number of events the log retains.
	Capacity() int
}

// FileEventLog implements EventLogStore backed by a single JSON file.
// The file holds the full log and is rewritten atomically (temp file +
// rename) on every append, so a concurrent reader process always sees a
// complete document.
type FileEventLog struct {
	mu       sync.RWMutex
	events   []model.Event
	path     string
	capacity int
	log      *slog.Logger
}

// NewFileEventLog opens the event log at path, creating parent directories
// as needed. An unreadable or unparseable file is treated as empty so a
// corrupt history never blocks ingestion; a log longer than capacity is
// trimmed to its newest entries.
func NewFileEventLog(path string, capacity int, log *slog.Logger) (*FileEventLog, error) {
	if path == "" {
		return nil, fmt.Errorf("events file path is required")
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("event log capacity must be positive, got %d", capacity)
	}
	if log == nil {
		log = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating events directory: %w", err)
		}
	}

	return &FileEventLog{
		events:   loadEvents(path, capacity, log),
		path:     path,
		capacity: capacity,
		log:      log,
	}, nil
}

// Append adds ev to the log and persists the result before it becomes
// visible. If persistence fails the in-memory log is left untouched, so
// memory and disk never diverge.
func (s *FileEventLog) Append(ctx context.Context, ev *model.Event) (int, error) {
	if ev == nil {
		return 0, fmt.Errorf("event is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Event, 0, len(s.events)+1)
	next = append(next, s.events...)
	next = append(next, *ev)
	if len(next) > s.capacity {
		next = next[len(next)-s.capacity:]
	}

	if err := s.persist(next); err != nil {
		return 0, fmt.Errorf("persisting event log: %w", err)
	}

	s.events = next
	return len(s.events) - 1, nil
}

// Snapshot returns a copy of the log, oldest first. Payloads are shared
// with the store; callers must treat them as read-only.
func (s *FileEventLog) Snapshot(ctx context.Context) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Capacity returns the maximum number of events the log retains.
func (s *FileEventLog) Capacity() int {
	return s.capacity
}

// persist writes events to the log file atomically: marshal, write to a
// temp file, then rename over the target.
func (s *FileEventLog) persist(events []model.Event) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp events file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		// Clean up temp file on rename failure
		os.Remove(tmpPath)
		return fmt.Errorf("renaming events file: %w", err)
	}

	return nil
}

// loadEvents reads the log file at path. Missing files yield an empty log;
// unreadable or corrupt files are logged and likewise yield an empty log.
func loadEvents(path string, capacity int, log *slog.Logger) []model.Event {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("events file unreadable, starting empty",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var events []model.Event
	if err := json.Unmarshal(data, &events); err != nil {
		log.Warn("events file corrupt, starting empty",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if len(events) > capacity {
		log.Warn("events file exceeds capacity, keeping newest",
			slog.String("path", path),
			slog.Int("loaded", len(events)),
			slog.Int("capacity", capacity),
		)
		events = events[len(events)-capacity:]
	}

	return events
}
