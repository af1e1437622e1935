package ocr

import (
	"errors"
	"testing"
)

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want Language
	}{
		{"en", English},
		{"pt", Portuguese},
		{"EN", English},
		{"Pt", Portuguese},
		{" pt ", Portuguese},
	}
	for _, c := range cases {
		got, err := ParseLanguage(c.in)
		if err != nil {
			t.Errorf("ParseLanguage(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseLanguage(%q): got %s, want %s", c.in, got, c.want)
		}
	}
}

func TestParseLanguageUnsupported(t *testing.T) {
	for _, code := range []string{"es", "fr", "", "english", "por"} {
		_, err := ParseLanguage(code)
		if err == nil {
			t.Errorf("ParseLanguage(%q) should fail", code)
			continue
		}
		var unsupported *UnsupportedLanguageError
		if !errors.As(err, &unsupported) {
			t.Errorf("ParseLanguage(%q): got %T, want *UnsupportedLanguageError", code, err)
		}
	}
}

func TestLanguageTesseractCodes(t *testing.T) {
	if got := English.Tesseract(); got != "eng" {
		t.Errorf("English: got %s, want eng", got)
	}
	if got := Portuguese.Tesseract(); got != "por" {
		t.Errorf("Portuguese: got %s, want por", got)
	}
}
