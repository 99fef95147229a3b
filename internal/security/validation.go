// Package security provides input validation for text that reaches the model or a data provider.
package security

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "stock-assistant/internal/errors"
)

// MaxQuestionLength bounds one turn of user input.
const MaxQuestionLength = 2000

// Ticker pattern: Yahoo symbols such as AAPL, BRK-B, RELIANCE.NS, ^GSPC, EURUSD=X.
var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]{0,19}$`)

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// ValidateTicker validates a normalized ticker symbol.
func ValidateTicker(ticker string) error {
	if ticker == "" {
		return apperrors.NewValidationError("ticker", ticker, "ticker cannot be empty")
	}
	if len(ticker) > 20 {
		return apperrors.NewValidationError("ticker", ticker, "ticker too long (max 20 characters)")
	}
	if !tickerPattern.MatchString(ticker) {
		return apperrors.NewValidationError("ticker", ticker, "invalid ticker format")
	}
	return nil
}

// ValidateQuestion validates one line of user input before it enters a session.
func ValidateQuestion(question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return apperrors.NewValidationError("question", "", "question cannot be empty")
	}
	if !utf8.ValidString(question) {
		return apperrors.NewValidationError("question", "", "question is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(question); n > MaxQuestionLength {
		return apperrors.NewValidationError("question", n, fmt.Sprintf("question too long (max %d characters)", MaxQuestionLength))
	}
	return nil
}

// SanitizeText removes control characters other than newline and tab.
func SanitizeText(text string) string {
	var result strings.Builder
	for _, r := range text {
		if r >= 32 && r != 127 || r == '\n' || r == '\t' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
