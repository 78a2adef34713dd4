package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPhoneLength   = 10
	maxMessageLength = 1000
	minSlugLength    = 3
	maxSlugLength    = 32
)

// NormalizePhone strips everything except digits and '+' and checks the result
// The returned value keeps its leading '+', e.g. "+20 (100) 123-4567" -> "+201001234567"
func NormalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyPhone
	}

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	phone := b.String()

	if !strings.HasPrefix(phone, "+") {
		return "", ErrPhoneMissingPlus
	}
	if len(phone) < minPhoneLength {
		return "", ErrPhoneTooShort
	}

	return phone, nil
}

// ValidateMessage bounds the pre-filled message length (counted in runes)
func ValidateMessage(message string) error {
	if utf8.RuneCountInString(message) > maxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ValidateCustomSlug checks if a user-chosen short-link slug is valid
func ValidateCustomSlug(slug string) error {
	if len(slug) < minSlugLength || len(slug) > maxSlugLength {
		return ErrInvalidSlugLength
	}

	for _, char := range slug {
		if !isAlphanumeric(char) && char != '-' && char != '_' {
			return ErrInvalidSlugFormat
		}
	}

	return nil
}

// ValidateArticleSlug accepts letters of any script, digits and hyphens
func ValidateArticleSlug(slug string) error {
	if slug == "" {
		return ErrInvalidArticleSlug
	}
	for _, r := range slug {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return ErrInvalidArticleSlug
		}
	}
	return nil
}

func isAlphanumeric(char rune) bool {
	return (char >= 'a' && char <= 'z') ||
		(char >= 'A' && char <= 'Z') ||
		(char >= '0' && char <= '9')
}
