package ocr

import "strings"

// Language is an OCR language selector. Only the codes the tool ships
// with are accepted; anything else is rejected at parse time.
type Language string

const (
	English    Language = "en"
	Portuguese Language = "pt"
)

// DefaultLanguage is used when neither flag, environment, nor config file
// selects a language.
const DefaultLanguage = Portuguese

// ParseLanguage validates a user-supplied language code, case-insensitively.
func ParseLanguage(code string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(code))) {
	case English:
		return English, nil
	case Portuguese:
		return Portuguese, nil
	default:
		return "", &UnsupportedLanguageError{Code: code}
	}
}

// Tesseract returns the traineddata code tesseract expects for l.
func (l Language) Tesseract() string {
	switch l {
	case Portuguese:
		return "por"
	default:
		return "eng"
	}
}

func (l Language) String() string {
	return string(l)
}
