package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// Gosseract runs OCR in-process through the gosseract bindings. It avoids
// subprocess startup cost but requires the tesseract library at build and
// run time, so it sits behind the subprocess engine in the default
// preference order.
type Gosseract struct{}

// NewGosseract returns the in-process engine.
func NewGosseract() *Gosseract {
	return &Gosseract{}
}

func (g *Gosseract) Name() string {
	return "gosseract"
}

// Available checks that the tesseract library answers with a version.
func (g *Gosseract) Available() error {
	client := gosseract.NewClient()
	defer client.Close()
	if client.Version() == "" {
		return errors.New("tesseract library not available")
	}
	return nil
}

// Recognize runs OCR on the image at imagePath. The blocking library call
// runs under a goroutine so the caller's deadline is still honored; on
// timeout the call is abandoned and finishes in the background.
func (g *Gosseract) Recognize(ctx context.Context, imagePath string, lang Language) (*Result, error) {
	var timeout time.Duration
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl).Round(time.Second)
	}

	type outcome struct {
		res *Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := g.recognize(imagePath, lang)
		ch <- outcome{res, err}
	}()

	select {
	case out := <-ch:
		return out.res, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Engine: g.Name(), Timeout: timeout}
		}
		return nil, ctx.Err()
	}
}

func (g *Gosseract) recognize(imagePath string, lang Language) (*Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(lang.Tesseract()); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &Result{Text: strings.TrimSpace(text)}

	// Word-level boxes carry per-token confidence. If box extraction
	// fails the text alone is still a valid result.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		result.Tokens = append(result.Tokens, Token{
			Text:       word,
			Confidence: box.Confidence,
		})
	}
	return result, nil
}
