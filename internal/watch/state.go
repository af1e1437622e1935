package watch

import (
	"io/fs"
	"time"
)

// identity is the file version a watcher has already handled. A file
// whose modification time or size differs from its recorded identity
// counts as new again.
type identity struct {
	modTime time.Time
	size    int64
}

// State records which file identities a watcher run has seen. It is
// owned by a single watcher and is not safe for concurrent use.
type State struct {
	seen map[string]identity
}

// NewState returns an empty state.
func NewState() *State {
	return &State{seen: make(map[string]identity)}
}

// Changed reports whether path is unseen or carries a different
// identity than last marked.
func (s *State) Changed(path string, info fs.FileInfo) bool {
	id, ok := s.seen[path]
	if !ok {
		return true
	}
	return !id.modTime.Equal(info.ModTime()) || id.size != info.Size()
}

// Mark records path's current identity as seen.
func (s *State) Mark(path string, info fs.FileInfo) {
	s.seen[path] = identity{modTime: info.ModTime(), size: info.Size()}
}

// Len returns the number of tracked files.
func (s *State) Len() int {
	return len(s.seen)
}
