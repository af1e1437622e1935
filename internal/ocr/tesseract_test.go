package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// requireTesseract skips tests that need the tesseract binary.
func requireTesseract(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not available")
	}
}

// drawText draws text on an image using basicfont.
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// renderTextImage writes a PNG with rendered text, upscaled for OCR
// legibility, and returns its path.
func renderTextImage(t *testing.T, text string, scale int) string {
	t.Helper()

	// basicfont.Face7x13 is 7x13 pixels per character.
	width := len(text)*7 + 40
	height := 40
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(img, 20, 25, text, color.Black)

	scaled := transform.Resize(img, width*scale, height*scale, transform.NearestNeighbor)

	tmpFile, err := os.CreateTemp(t.TempDir(), "ocr-text-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, scaled); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return tmpFile.Name()
}

func TestParseTSV(t *testing.T) {
	tsv := strings.Join([]string{
		"level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext",
		"1\t1\t0\t0\t0\t0\t0\t0\t640\t480\t-1\t",
		"5\t1\t1\t1\t1\t1\t20\t25\t70\t13\t96.58\tHello",
		"5\t1\t1\t1\t1\t2\t100\t25\t70\t13\t91.2\tWorld",
		"5\t1\t1\t1\t1\t3\t180\t25\t10\t13\t-1\t ",
		"short\trow",
		"",
	}, "\n")

	tokens := parseTSV(tsv)
	if len(tokens) != 2 {
		t.Fatalf("got %d tokens, want 2: %+v", len(tokens), tokens)
	}
	if tokens[0].Text != "Hello" || tokens[0].Confidence != 96.58 {
		t.Errorf("token 0: got %+v, want Hello/96.58", tokens[0])
	}
	if tokens[1].Text != "World" || tokens[1].Confidence != 91.2 {
		t.Errorf("token 1: got %+v, want World/91.2", tokens[1])
	}
}

func TestParseTSVKeepsNonPositiveConfidenceWords(t *testing.T) {
	// Words tesseract is unsure about still count as tokens; averaging
	// filters them out later.
	tsv := "header\n5\t1\t1\t1\t1\t1\t0\t0\t10\t10\t-1\tsmudge"
	tokens := parseTSV(tsv)
	if len(tokens) != 1 || tokens[0].Confidence != -1 {
		t.Fatalf("got %+v, want one token with confidence -1", tokens)
	}
	if AverageConfidence(tokens) != 0 {
		t.Errorf("average over non-positive tokens: got %v, want 0", AverageConfidence(tokens))
	}
}

func TestParseTSVEmpty(t *testing.T) {
	if tokens := parseTSV(""); len(tokens) != 0 {
		t.Errorf("empty input: got %d tokens, want 0", len(tokens))
	}
}

func TestFirstLine(t *testing.T) {
	cases := []struct{ in, want string }{
		{"error: no such file\nmore detail", "error: no such file"},
		{"  single  \n", "single"},
		{"", ""},
	}
	for _, c := range cases {
		if got := firstLine(c.in); got != c.want {
			t.Errorf("firstLine(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTesseractAvailableMissingBinary(t *testing.T) {
	eng := &Tesseract{binary: "grabtext-no-such-binary"}
	if err := eng.Available(); err == nil {
		t.Error("Available should fail for a missing binary")
	}
}

func TestTesseractRecognizeMissingBinary(t *testing.T) {
	eng := &Tesseract{binary: "grabtext-no-such-binary"}
	_, err := eng.Recognize(context.Background(), "irrelevant.png", English)
	if err == nil {
		t.Fatal("Recognize should fail for a missing binary")
	}
	var unavailable *EngineUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("got %T (%v), want *EngineUnavailableError", err, err)
	}
}

func TestTesseractRecognize(t *testing.T) {
	requireTesseract(t)

	imgPath := renderTextImage(t, "HELLO WORLD", 4)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := NewTesseract().Recognize(ctx, imgPath, English)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	t.Logf("text: %q, tokens: %d, avg: %.2f", result.Text, len(result.Tokens), result.AvgConfidence())

	avg := result.AvgConfidence()
	if avg < 0 || avg > 100 {
		t.Errorf("average confidence out of range: %v", avg)
	}
}

func TestTesseractRecognizePortuguese(t *testing.T) {
	requireTesseract(t)

	imgPath := renderTextImage(t, "TEXTO", 4)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := NewTesseract().Recognize(ctx, imgPath, Portuguese)
	if err != nil {
		// The por traineddata may not be installed even when tesseract is.
		if strings.Contains(err.Error(), "por") || strings.Contains(err.Error(), "data") {
			t.Skip("portuguese traineddata not available")
		}
		t.Fatalf("Recognize failed: %v", err)
	}
	t.Logf("text: %q", result.Text)
}

func TestTesseractRecognizeTimeout(t *testing.T) {
	requireTesseract(t)

	imgPath := renderTextImage(t, "SLOW", 4)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()

	_, err := NewTesseract().Recognize(ctx, imgPath, English)
	if err == nil {
		t.Fatal("Recognize should fail with an expired deadline")
	}
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Errorf("got %T (%v), want *TimeoutError", err, err)
	}
}

func TestTesseractRecognizeBadImage(t *testing.T) {
	requireTesseract(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	_, err := NewTesseract().Recognize(ctx, "/nonexistent/image.png", English)
	if err == nil {
		t.Fatal("Recognize should fail for a missing image")
	}
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		t.Errorf("missing image misreported as timeout: %v", err)
	}
}

func TestGosseractRecognize(t *testing.T) {
	eng := NewGosseract()
	if err := eng.Available(); err != nil {
		t.Skipf("gosseract not available: %v", err)
	}

	imgPath := renderTextImage(t, "HELLO WORLD", 4)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := eng.Recognize(ctx, imgPath, English)
	if err != nil {
		if strings.Contains(err.Error(), "tesseract") || strings.Contains(err.Error(), "library") {
			t.Skip("tesseract library not available")
		}
		t.Fatalf("Recognize failed: %v", err)
	}

	t.Logf("text: %q, tokens: %d", result.Text, len(result.Tokens))
	for _, tok := range result.Tokens {
		if tok.Confidence < 0 || tok.Confidence > 100 {
			t.Errorf("token %q confidence out of range: %v", tok.Text, tok.Confidence)
		}
	}
}

func TestGosseractRecognizeTimeout(t *testing.T) {
	eng := NewGosseract()
	if err := eng.Available(); err != nil {
		t.Skipf("gosseract not available: %v", err)
	}

	imgPath := renderTextImage(t, "SLOW", 4)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()

	_, err := eng.Recognize(ctx, imgPath, English)
	if err == nil {
		t.Fatal("Recognize should fail with an expired deadline")
	}
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Errorf("got %T (%v), want *TimeoutError", err, err)
	}
}
