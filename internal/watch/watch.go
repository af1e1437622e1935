// Package watch monitors a directory for newly arriving image files and
// feeds each one through a handler exactly once per file identity.
//
// Two backends are available: a polling loop that diffs the directory
// listing every interval, and a filesystem-event loop built on fsnotify.
// The auto backend prefers events and falls back to polling when the
// platform watcher cannot be set up.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/rouri404/grabtext/internal/discovery"
)

// Handler processes one detected image file. Errors are logged and the
// file is not retried until its identity changes.
type Handler func(ctx context.Context, path string) error

// Backend selects how directory changes are observed.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendPoll   Backend = "poll"
	BackendNotify Backend = "notify"
)

// ParseBackend normalizes a user-supplied backend token.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendAuto, BackendPoll, BackendNotify:
		return b, nil
	case "":
		return BackendAuto, nil
	default:
		return "", fmt.Errorf("unknown watch backend %q (supported: auto, poll, notify)", s)
	}
}

// Options configures a watcher run.
type Options struct {
	Dir             string
	Recursive       bool
	Interval        time.Duration // poll cadence, also the event settle delay
	ProcessExisting bool          // handle files present at startup instead of marking them seen
	Backend         Backend
}

// Watcher observes one directory for the lifetime of a single Run call.
type Watcher struct {
	opts    Options
	handler Handler
	logger  *slog.Logger
	state   *State
	session string
}

// New returns a watcher over opts.Dir. The directory itself is
// validated when Run takes its startup snapshot.
func New(opts Options, handler Handler, logger *slog.Logger) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Backend == "" {
		opts.Backend = BackendAuto
	}
	return &Watcher{
		opts:    opts,
		handler: handler,
		logger:  logger,
		state:   NewState(),
		session: uuid.New().String(),
	}
}

// Run watches until ctx is cancelled. Cancellation is the normal stop
// path and returns nil; errors are returned only for startup failures
// such as a missing directory or an unavailable notify backend.
func (w *Watcher) Run(ctx context.Context) error {
	existing, err := discovery.Discover(w.opts.Dir, w.opts.Recursive)
	if err != nil {
		return err
	}

	backend := w.opts.Backend
	var fw *fsnotify.Watcher
	if backend == BackendNotify || backend == BackendAuto {
		fw, err = w.setupNotify()
		if err != nil {
			if backend == BackendNotify {
				return err
			}
			w.logger.Warn("filesystem events unavailable, falling back to polling", "error", err)
			backend = BackendPoll
		} else {
			backend = BackendNotify
			defer fw.Close()
		}
	}

	w.logger.Info("watch started",
		"session", w.session,
		"directory", w.opts.Dir,
		"backend", string(backend),
		"recursive", w.opts.Recursive,
		"existing", len(existing))

	if w.opts.ProcessExisting {
		for _, path := range existing {
			if ctx.Err() != nil {
				break
			}
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			w.handle(ctx, path, info)
		}
	} else {
		for _, path := range existing {
			if info, err := os.Stat(path); err == nil {
				w.state.Mark(path, info)
			}
		}
	}

	defer w.logger.Info("watch stopped", "session", w.session, "handled", w.state.Len())

	if backend == BackendNotify {
		return w.runNotify(ctx, fw)
	}
	return w.runPoll(ctx)
}

func (w *Watcher) runPoll(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) setupNotify() (*fsnotify.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addWatches(fw, w.opts.Dir, w.opts.Recursive); err != nil {
		fw.Close()
		return nil, err
	}
	return fw, nil
}

func (w *Watcher) runNotify(ctx context.Context, fw *fsnotify.Watcher) error {
	// Events only schedule a rescan; the scan itself decides what is
	// new, so coalesced or missed events cannot double-process a file.
	settle := time.NewTimer(w.opts.Interval)
	if !settle.Stop() {
		<-settle.C
	}
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if w.opts.Recursive && ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addWatches(fw, ev.Name, true); err != nil {
						w.logger.Warn("failed to watch new directory", "directory", ev.Name, "error", err)
					}
					settle.Reset(w.opts.Interval)
					continue
				}
			}
			if !discovery.IsImageFile(ev.Name) {
				continue
			}
			settle.Reset(w.opts.Interval)
		case <-settle.C:
			w.scan(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch backend error", "session", w.session, "error", err)
		}
	}
}

// scan diffs the current directory listing against the seen state and
// handles every changed file.
func (w *Watcher) scan(ctx context.Context) {
	paths, err := discovery.Discover(w.opts.Dir, w.opts.Recursive)
	if err != nil {
		w.logger.Warn("watch scan failed", "session", w.session, "error", err)
		return
	}
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !w.state.Changed(path, info) {
			continue
		}
		w.logger.Info("new file detected", "session", w.session, "file", path)
		w.handle(ctx, path, info)
	}
}

// handle marks the file identity seen before invoking the handler, so a
// failing file is logged once and not retried until it changes again.
func (w *Watcher) handle(ctx context.Context, path string, info os.FileInfo) {
	w.state.Mark(path, info)
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error("failed to process image", "session", w.session, "file", path, "error", err)
	}
}

func addWatches(fw *fsnotify.Watcher, dir string, recursive bool) error {
	if !recursive {
		return fw.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		return fw.Add(path)
	})
}
