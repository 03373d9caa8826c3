package service

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned when input is neither a phone number nor an email.
var ErrInvalidIdentifier = errors.New("otp: identifier must be a phone number or email")

// Identifier kinds.
const (
	IdentifierPhone = "phone"
	IdentifierEmail = "email"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneNoise   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// Identifier is a normalized login handle.
type Identifier struct {
	Kind  string
	Value string
}

// ParseIdentifier normalizes raw into a phone number (separators stripped) or a lowercased email.
func ParseIdentifier(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, ErrInvalidIdentifier
	}
	if strings.Contains(raw, "@") {
		email := strings.ToLower(raw)
		if emailPattern.MatchString(email) {
			return Identifier{Kind: IdentifierEmail, Value: email}, nil
		}
		return Identifier{}, ErrInvalidIdentifier
	}
	phone := phoneNoise.Replace(raw)
	if phonePattern.MatchString(phone) {
		return Identifier{Kind: IdentifierPhone, Value: phone}, nil
	}
	return Identifier{}, ErrInvalidIdentifier
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}
