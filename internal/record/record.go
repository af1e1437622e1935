// Package record builds the canonical per-image result shared by every
// export format.
package record

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rouri404/grabtext/internal/imagemeta"
	"github.com/rouri404/grabtext/internal/ocr"
)

// OcrRecord is the result of processing one image. Records are built once
// per OCR invocation and never mutated afterwards, only serialized.
type OcrRecord struct {
	// Identity.
	Filename      string
	Filepath      string // absolute
	FileSizeBytes int64
	FileModified  time.Time

	// Image attributes.
	Width     int
	Height    int
	Format    string
	ColorMode string

	// OCR attributes. WordCount is the number of whitespace-separated
	// fields in Text, CharCount the number of runes, and HasText is
	// WordCount > 0. AvgConfidence is 0-100.
	Text                string
	WordCount           int
	CharCount           int
	AvgConfidence       float64
	LanguageUsed        ocr.Language
	HasText             bool
	ProcessingTimestamp time.Time
}

// Builder turns one image path into an OcrRecord: metadata first, then
// OCR under the configured timeout. A record exists only when both steps
// succeed; metadata failures mean OCR is never attempted.
type Builder struct {
	engine  ocr.Engine
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewBuilder returns a builder running OCR on engine with the given
// per-file timeout (0 means no deadline).
func NewBuilder(engine ocr.Engine, timeout time.Duration, logger *slog.Logger) *Builder {
	return &Builder{
		engine:  engine,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Build processes the image at path in the given language.
//
// Failures pass through typed: *imagemeta.ReadError for unreadable
// images, *ocr.TimeoutError / *ocr.EngineUnavailableError from the
// engine. Callers decide whether a failure is fatal (single-file mode)
// or skips the file (batch and watch modes).
func (b *Builder) Build(ctx context.Context, path string, lang ocr.Language) (*OcrRecord, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	meta, err := imagemeta.Extract(abs)
	if err != nil {
		return nil, err
	}

	ocrCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	result, err := b.engine.Recognize(ocrCtx, abs, lang)
	if err != nil {
		// The record is dropped, but the file's shape still reaches the log.
		b.logger.Debug("image metadata for failed ocr",
			"file", abs,
			"dimensions", fmt.Sprintf("%dx%d", meta.Width, meta.Height),
			"format", meta.Format,
			"size_bytes", meta.FileSizeBytes)
		return nil, err
	}

	text := strings.TrimSpace(result.Text)
	wordCount := len(strings.Fields(text))
	avg := result.AvgConfidence()

	rec := &OcrRecord{
		Filename:            filepath.Base(abs),
		Filepath:            abs,
		FileSizeBytes:       meta.FileSizeBytes,
		FileModified:        meta.FileModified,
		Width:               meta.Width,
		Height:              meta.Height,
		Format:              meta.Format,
		ColorMode:           meta.ColorMode,
		Text:                text,
		WordCount:           wordCount,
		CharCount:           utf8.RuneCountInString(text),
		AvgConfidence:       avg,
		LanguageUsed:        lang,
		HasText:             wordCount > 0,
		ProcessingTimestamp: b.now(),
	}

	b.logger.Info("ocr success",
		"file", rec.Filename,
		"lang", lang,
		"words", rec.WordCount,
		"chars", rec.CharCount,
		"confidence", rec.AvgConfidence,
		"quality", ocr.ConfidenceLevel(avg))

	return rec, nil
}
