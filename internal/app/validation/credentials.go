// Package validation checks the shape of credentials before they reach the
// store. Every function is pure.
package validation

import (
	"regexp"
	"unicode/utf8"

	"auth_api/internal/common"
	"auth_api/internal/common/messages"
)

const MinPasswordLength = 8

// PasswordSymbols is the symbol set a password must draw at least one
// character from.
const PasswordSymbols = `@$!%*?&`

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	passwordCharsetRe = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&]+$`)
	lowerRe           = regexp.MustCompile(`[a-z]`)
	upperRe           = regexp.MustCompile(`[A-Z]`)
	digitRe           = regexp.MustCompile(`[0-9]`)
	symbolRe          = regexp.MustCompile(`[@$!%*?&]`)
)

func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return common.ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks length first, then composition.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &common.AuthError{Kind: common.KindWeakPassword, Key: messages.PasswordTooShort}
	}
	if !passwordCharsetRe.MatchString(password) ||
		!lowerRe.MatchString(password) ||
		!upperRe.MatchString(password) ||
		!digitRe.MatchString(password) ||
		!symbolRe.MatchString(password) {
		return &common.AuthError{Kind: common.KindWeakPassword, Key: messages.PasswordTooWeak}
	}
	return nil
}
