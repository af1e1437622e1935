// Package batch drives the per-image pipeline across a discovered set of
// files, isolating per-file failures and assembling batch-level metadata.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/rouri404/grabtext/internal/discovery"
	"github.com/rouri404/grabtext/internal/ocr"
	"github.com/rouri404/grabtext/internal/record"
)

// BatchResult is the outcome of processing one directory. Records holds
// only the successfully processed files, in discovery order; failed files
// are counted in TotalFiles and logged, nothing else.
type BatchResult struct {
	Records               []record.OcrRecord
	TotalFiles            int
	SuccessfullyProcessed int
	Directory             string // absolute
	Recursive             bool
	ProcessedAt           time.Time
}

// Aggregator runs the record builder over a directory's images.
//
// With workers <= 1 files are processed strictly sequentially in
// discovery order. With more workers a bounded pool processes files
// concurrently; results are placed by index, so the final record order
// still matches discovery order regardless of completion order.
type Aggregator struct {
	builder *record.Builder
	logger  *slog.Logger
	workers int
	now     func() time.Time
}

// NewAggregator returns an aggregator over builder with the given
// worker count.
func NewAggregator(builder *record.Builder, logger *slog.Logger, workers int) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		builder: builder,
		logger:  logger,
		workers: workers,
		now:     time.Now,
	}
}

// Run discovers and processes every image under dir.
//
// Discovery errors are fatal. Per-file errors are logged at error level
// and the file is skipped; the batch always runs to the end of the
// sequence unless ctx is cancelled.
func (a *Aggregator) Run(ctx context.Context, dir string, recursive bool, lang ocr.Language) (*BatchResult, error) {
	paths, err := discovery.Discover(dir, recursive)
	if err != nil {
		return nil, err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory %s: %w", dir, err)
	}

	a.logger.Info("batch started",
		"directory", absDir,
		"files", len(paths),
		"recursive", recursive,
		"workers", a.workers)

	var out []*record.OcrRecord
	if a.workers > 1 && len(paths) > 1 {
		out = a.runPool(ctx, paths, lang)
	} else {
		out = a.runSequential(ctx, paths, lang)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BatchResult{
		Records:     make([]record.OcrRecord, 0, len(paths)),
		TotalFiles:  len(paths),
		Directory:   absDir,
		Recursive:   recursive,
		ProcessedAt: a.now(),
	}
	for _, rec := range out {
		if rec != nil {
			result.Records = append(result.Records, *rec)
		}
	}
	result.SuccessfullyProcessed = len(result.Records)

	a.logger.Info("batch complete",
		"directory", absDir,
		"processed", result.SuccessfullyProcessed,
		"total", result.TotalFiles)

	return result, nil
}

func (a *Aggregator) runSequential(ctx context.Context, paths []string, lang ocr.Language) []*record.OcrRecord {
	out := make([]*record.OcrRecord, len(paths))
	for i, path := range paths {
		if ctx.Err() != nil {
			return out
		}
		out[i] = a.process(ctx, path, lang)
	}
	return out
}

func (a *Aggregator) runPool(ctx context.Context, paths []string, lang ocr.Language) []*record.OcrRecord {
	type job struct {
		index int
		path  string
	}

	out := make([]*record.OcrRecord, len(paths))
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if ctx.Err() != nil {
					continue // drain remaining jobs after cancellation
				}
				out[j.index] = a.process(ctx, j.path, lang)
			}
		}()
	}

	for i, path := range paths {
		select {
		case jobs <- job{index: i, path: path}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	return out
}

// process builds one record, converting failure into a log entry.
func (a *Aggregator) process(ctx context.Context, path string, lang ocr.Language) *record.OcrRecord {
	rec, err := a.builder.Build(ctx, path, lang)
	if err != nil {
		a.logger.Error("failed to process image", "file", path, "error", err)
		return nil
	}
	return rec
}
