// Package logstore implements the append-only operational log backing the
// "grabtext logs" command.
//
// Entries are stored one per line in a flat file:
//
//	2006-01-02 15:04:05 | LEVEL | message
//
// Append order is chronological order. The store is safe for concurrent use;
// a single mutex serializes appends, queries, export, and clear, so a clear
// can never interleave with an in-flight append.
package logstore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Log levels as they appear in the second field of each line.
const (
	LevelDebug   = "DEBUG"
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// timeLayout is the wire format of the first field of each line.
const timeLayout = "2006-01-02 15:04:05"

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
}

// String renders the entry in wire format.
func (e Entry) String() string {
	return fmt.Sprintf("%s | %s | %s", e.Time.Format(timeLayout), e.Level, e.Message)
}

// Query selects a subset of the store. Filters combine in the order
// since, until, errors-only, substring, tail.
type Query struct {
	Since      time.Time // zero = no lower bound
	Until      time.Time // zero = no upper bound
	ErrorsOnly bool
	Contains   string
	Tail       int // 0 = all matching entries
}

// Store is a file-backed append-only log.
type Store struct {
	mu   sync.Mutex
	path string
	f    *os.File
	now  func() time.Time
}

// Open creates or opens the log file at path, creating parent directories
// as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Store{path: path, f: f, now: time.Now}, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// Close releases the backing file. The store must not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}

// Append writes one entry at the current time. Newlines in the message are
// flattened so every entry stays a single line.
func (s *Store) Append(level, message string) error {
	message = strings.ReplaceAll(message, "\n", " ")
	line := fmt.Sprintf("%s | %s | %s\n", s.now().Format(timeLayout), level, message)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}
	return nil
}

// Entries returns the entries matching q in chronological order.
// Lines that do not parse as entries are skipped.
func (s *Store) Entries(q Query) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		e, ok := parseLine(sc.Text())
		if !ok {
			continue
		}
		if !q.Since.IsZero() && e.Time.Before(q.Since) {
			continue
		}
		if !q.Until.IsZero() && e.Time.After(q.Until) {
			continue
		}
		if q.ErrorsOnly && e.Level != LevelError {
			continue
		}
		if q.Contains != "" && !strings.Contains(e.String(), q.Contains) {
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan log file: %w", err)
	}

	if q.Tail > 0 && len(entries) > q.Tail {
		entries = entries[len(entries)-q.Tail:]
	}
	return entries, nil
}

// Tail returns the last n entries in chronological order.
func (s *Store) Tail(n int) ([]Entry, error) {
	return s.Entries(Query{Tail: n})
}

// Since returns entries at or after t.
func (s *Store) Since(t time.Time) ([]Entry, error) {
	return s.Entries(Query{Since: t})
}

// Until returns entries at or before t.
func (s *Store) Until(t time.Time) ([]Entry, error) {
	return s.Entries(Query{Until: t})
}

// ErrorsOnly returns entries at ERROR level.
func (s *Store) ErrorsOnly() ([]Entry, error) {
	return s.Entries(Query{ErrorsOnly: true})
}

// Filter returns entries whose rendered line contains substr.
func (s *Store) Filter(substr string) ([]Entry, error) {
	return s.Entries(Query{Contains: substr})
}

// Export copies the current log content verbatim to path. The copy is
// written to a temporary file and renamed into place so a failed export
// never leaves a truncated destination.
func (s *Store) Export(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read log file: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".grabtext-logs-*")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write export file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to place export file: %w", err)
	}
	return nil
}

// Clear truncates the store to empty. Exclusive with appends.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.f.Truncate(0); err != nil {
		return fmt.Errorf("failed to clear log file: %w", err)
	}
	// O_APPEND writes always land at the end, but keep the offset honest.
	if _, err := s.f.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to clear log file: %w", err)
	}
	return nil
}

// parseLine parses one wire-format line. Lines with a malformed timestamp
// or too few fields are rejected.
func parseLine(line string) (Entry, bool) {
	parts := strings.SplitN(line, " | ", 3)
	if len(parts) != 3 {
		return Entry{}, false
	}
	ts, err := time.ParseInLocation(timeLayout, parts[0], time.Local)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Time: ts, Level: parts[1], Message: parts[2]}, true
}
