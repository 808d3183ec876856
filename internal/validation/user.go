package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 5

// ValidateEmail checks email address format.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(strings.TrimSpace(email)) {
		return fmt.Errorf("please enter a valid email address")
	}
	return nil
}

// ValidatePassword checks minimum password length after trimming.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(strings.TrimSpace(password)) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// ValidateName checks that a display name is non-empty after trimming.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	return nil
}

// ValidateStatus checks that a status message is non-empty after trimming.
func ValidateStatus(status string) error {
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("status must not be empty")
	}
	return nil
}
