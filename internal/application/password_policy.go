package application

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrWeakPassword is the sentinel carried by every *WeakPasswordError.
var ErrWeakPassword = errors.New("password does not meet complexity requirements")

const (
	MinPasswordLength = 8
	MaxPasswordLength = 16

	passwordSpecials = "@$!%*?&"
)

// WeakPasswordError lists every password rule that was violated.
type WeakPasswordError struct {
	Violations []string
}

func (e *WeakPasswordError) Error() string {
	return fmt.Sprintf("%s: %s", ErrWeakPassword.Error(), strings.Join(e.Violations, "; "))
}

func (e *WeakPasswordError) Unwrap() error {
	return ErrWeakPassword
}

// ValidatePassword checks raw against the registration password policy and returns
// a *WeakPasswordError naming all violated rules, or nil.
func ValidatePassword(raw string) error {
	var violations []string

	if n := utf8.RuneCountInString(raw); n < MinPasswordLength || n > MaxPasswordLength {
		violations = append(violations,
			fmt.Sprintf("must be between %d and %d characters", MinPasswordLength, MaxPasswordLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial, hasOther bool
	for _, r := range raw {
		switch {
		case r > unicode.MaxASCII:
			hasOther = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			hasOther = true
		}
	}

	if !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain a digit")
	}
	if !hasSpecial {
		violations = append(violations, "must contain a special character ("+passwordSpecials+")")
	}
	if raw != "" && raw[0] >= '0' && raw[0] <= '9' {
		violations = append(violations, "must not start with a digit")
	}
	if hasOther {
		violations = append(violations, "may only contain letters, digits and "+passwordSpecials)
	}

	if len(violations) > 0 {
		return &WeakPasswordError{Violations: violations}
	}
	return nil
}
