package security

import (
	"fmt"
	"unicode/utf8"
)

const (
	MinPasswordLength = 12
	MaxPasswordLength = 25
)

// ErrPasswordLength is returned when a candidate password falls outside the allowed range.
var ErrPasswordLength = fmt.Errorf("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength)

// ValidatePasswordLength enforces the length policy. Length is counted in
// characters, not bytes, so multi-byte input is not penalised.
func ValidatePasswordLength(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return ErrPasswordLength
	}
	return nil
}
