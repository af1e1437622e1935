package ocr

import (
	"fmt"
	"time"
)

// EngineUnavailableError reports that an OCR engine cannot run, typically
// because the tesseract binary or library is not installed.
type EngineUnavailableError struct {
	Engine string
	Err    error
}

func (e *EngineUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ocr engine %q unavailable: %v", e.Engine, e.Err)
	}
	return fmt.Sprintf("ocr engine %q unavailable", e.Engine)
}

func (e *EngineUnavailableError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that an OCR invocation exceeded its deadline.
// The file it was working on is skipped; the batch continues.
type TimeoutError struct {
	Engine  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ocr engine %q timed out after %s", e.Engine, e.Timeout)
}

// UnsupportedLanguageError reports a language code outside the supported set.
type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q (supported: en, pt)", e.Code)
}

// UnknownEngineError reports an engine name no manager knows about.
type UnknownEngineError struct {
	Name string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown ocr engine %q (supported: tesseract, gosseract, auto)", e.Name)
}
