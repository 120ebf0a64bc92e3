package types

import (
	"strings"
	"unicode/utf8"
)

// ValidateMessageText trims and validates chat message text against the relay
// rules: non-empty after trimming and at most maxLength runes. It returns the
// trimmed text so all relay paths deliver identical content.
func ValidateMessageText(text string, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = MaxMessageLength
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}
	// Rune count, not byte count: the cap is on characters as users see them.
	if utf8.RuneCountInString(trimmed) > maxLength {
		return "", ErrMessageTooLong
	}

	return trimmed, nil
}
