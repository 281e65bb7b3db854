// Package validation provides client-side pre-validation of user input.
package validation

import (
	"regexp"
	"strings"
)

// Messages returned by ValidateRegistration, in rule order.
const (
	MsgUsernameRequired = "Username is required"
	MsgUsernameFormat   = "Username must be 5-20 letters or digits"
	MsgPasswordRequired = "Password is required"
	MsgPasswordFormat   = "Password must be 8-20 characters with upper and lower case letters, a digit and a symbol (@$!%*?&)"
	MsgPasswordMismatch = "Passwords do not match"
	MsgEmailRequired    = "Email is required"
	MsgEmailFormat      = "Email format is invalid"
)

const passwordSymbols = "@$!%*?&"

var (
	usernamePattern     = regexp.MustCompile(`^[a-zA-Z0-9]{5,20}$`)
	passwordCharPattern = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&]{8,20}$`)
	emailPattern        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Registration is the raw form input of the register view.
type Registration struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// ValidateRegistration applies the registration rules in a fixed order and
// returns the message of the first one that fails, or "" when all pass.
// Only the presence checks ignore surrounding whitespace.
func ValidateRegistration(r Registration) string {
	if strings.TrimSpace(r.Username) == "" {
		return MsgUsernameRequired
	}
	if !usernamePattern.MatchString(r.Username) {
		return MsgUsernameFormat
	}
	if r.Password == "" {
		return MsgPasswordRequired
	}
	if !ValidPassword(r.Password) {
		return MsgPasswordFormat
	}
	if r.Password != r.ConfirmPassword {
		return MsgPasswordMismatch
	}
	if strings.TrimSpace(r.Email) == "" {
		return MsgEmailRequired
	}
	if !emailPattern.MatchString(r.Email) {
		return MsgEmailFormat
	}
	return ""
}

// ValidPassword reports whether password is 8-20 characters drawn from
// letters, digits and @$!%*?& with at least one of each class.
func ValidPassword(password string) bool {
	if !passwordCharPattern.MatchString(password) {
		return false
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// ValidEmail reports whether email looks like local@domain.tld.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
