package export

import (
	"fmt"
	"strings"
)

// Format selects the serialization applied to records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat normalizes a user-supplied format token.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", &UnsupportedFormatError{Token: s}
	}
}

// Ext returns the file extension conventionally used for the format,
// without the leading dot.
func (f Format) Ext() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// UnsupportedFormatError reports a format token outside text, json, csv.
type UnsupportedFormatError struct {
	Token string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q (supported: text, json, csv)", e.Token)
}

// WriteError reports a failure to place an export file on disk.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write export file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
