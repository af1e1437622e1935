// Package imagemeta reads an image file's filesystem and pixel properties
// without invoking OCR and without decoding pixel data.
package imagemeta

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"strings"
	"time"
)

// ReadError reports a file that could not be read or decoded as an image.
// The wrapped error carries the underlying stat, open, or decode failure.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read image %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Meta contains the per-file properties that accompany OCR output.
type Meta struct {
	// Width and Height are the image dimensions in pixels.
	Width  int
	Height int

	// Format is the decoder name in upper case: "PNG", "JPEG", or "GIF".
	Format string

	// ColorMode describes the pixel layout: "RGB", "RGBA", "L" (grayscale),
	// "P" (palette), or "CMYK".
	ColorMode string

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64

	// FileModified is the file's modification time.
	FileModified time.Time
}

// Extract returns metadata for the image at path.
//
// Only the image header is decoded (image.DecodeConfig), so extraction is
// cheap even for large files. Registered formats are PNG, JPEG, and GIF.
//
// Any failure - missing file, unreadable file, or undecodable content -
// is reported as *ReadError. Callers treat that as "skip this file":
// OCR is never attempted on a file whose metadata cannot be read.
func Extract(path string) (*Meta, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	return &Meta{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        strings.ToUpper(format),
		ColorMode:     colorMode(cfg.ColorModel),
		FileSizeBytes: stat.Size(),
		FileModified:  stat.ModTime(),
	}, nil
}

// colorMode maps a decoded color model onto the conventional mode names.
func colorMode(m color.Model) string {
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model:
		return "RGBA"
	case color.YCbCrModel, color.NYCbCrAModel:
		return "RGB"
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.CMYKModel:
		return "CMYK"
	}
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	return "RGB"
}
