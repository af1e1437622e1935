package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Tesseract invokes the tesseract binary as a subprocess. This is the
// default engine: it needs no cgo, and the binary plus traineddata are
// what distributions package.
//
// Each Recognize runs tesseract twice against the same image: once for
// the plain text and once in tsv mode for per-token confidences. Both
// runs share the caller's deadline.
type Tesseract struct {
	binary string
}

// NewTesseract returns the subprocess engine using the tesseract binary
// found on PATH.
func NewTesseract() *Tesseract {
	return &Tesseract{binary: "tesseract"}
}

func (t *Tesseract) Name() string {
	return "tesseract"
}

// Available checks that the tesseract binary can be located.
func (t *Tesseract) Available() error {
	if _, err := exec.LookPath(t.binary); err != nil {
		return fmt.Errorf("tesseract binary not found: %w", err)
	}
	return nil
}

// Recognize runs OCR on the image at imagePath.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string, lang Language) (*Result, error) {
	bin, err := exec.LookPath(t.binary)
	if err != nil {
		return nil, &EngineUnavailableError{Engine: t.Name(), Err: err}
	}

	// Remaining budget, for the timeout error message.
	var timeout time.Duration
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl).Round(time.Second)
	}

	text, err := t.run(ctx, bin, timeout, imagePath, lang.Tesseract())
	if err != nil {
		return nil, err
	}

	result := &Result{Text: strings.TrimSpace(text)}

	tsv, err := t.run(ctx, bin, timeout, imagePath, lang.Tesseract(), "tsv")
	if err != nil {
		// A timeout still counts against the file; anything else degrades
		// to text without confidences, like a bounding-box failure would.
		var timeoutErr *TimeoutError
		if errors.As(err, &timeoutErr) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return result, nil
	}
	result.Tokens = parseTSV(tsv)
	return result, nil
}

func (t *Tesseract) run(ctx context.Context, bin string, timeout time.Duration, imagePath, langCode string, extra ...string) (string, error) {
	args := append([]string{imagePath, "stdout", "-l", langCode}, extra...)
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{Engine: t.Name(), Timeout: timeout}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := firstLine(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract: %s: %w", msg, err)
		}
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return stdout.String(), nil
}

// parseTSV extracts tokens from tesseract's tsv output. Columns are
// level, page_num, block_num, par_num, line_num, word_num, left, top,
// width, height, conf, text; structural rows carry conf -1 and empty
// text and are dropped here.
func parseTSV(data string) []Token {
	lines := strings.Split(data, "\n")
	var tokens []Token
	for i, line := range lines {
		if i == 0 {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		tokens = append(tokens, Token{Text: text, Confidence: conf})
	}
	return tokens
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
