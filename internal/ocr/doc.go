// Package ocr provides text recognition for image files via Tesseract.
//
// Two engines implement the Engine interface:
//
//   - Tesseract: invokes the tesseract binary as a subprocess (default).
//   - Gosseract: in-process recognition through the gosseract/v2 bindings.
//
// The Manager picks an engine at run time, falling back along the
// preference order when the preferred engine is unavailable. Both engines
// return the recognized text plus per-token confidence values; the
// averaged confidence (0-100) is computed over tokens with a positive
// score only.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//
// Language data is required per language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-por tesseract-ocr-eng
//
// # Supported Languages
//
// The tool accepts "en" and "pt" and maps them to the tesseract codes
// "eng" and "por". Unknown codes fail with UnsupportedLanguageError
// before any engine is invoked.
//
// # Timeouts
//
// Recognize honors the deadline on its context; an invocation that
// exceeds it fails with TimeoutError. Timeouts and unavailable engines
// are per-file errors: batch and watch callers log them and continue.
package ocr
