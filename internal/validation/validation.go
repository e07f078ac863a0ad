// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxNameLength        = 100
	MaxEmailLength       = 255
	MaxPasswordBytes     = 72
	MaxMediaURLLength    = 2048
	MaxDescriptionLength = 5000
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateName checks an account or company display name.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("name is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLength)
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return fmt.Errorf("name must not contain control characters")
		}
	}
	return nil
}

// ValidateEmail checks if an email address is well formed
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLength)
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email format is invalid")
	}
	return nil
}

// ValidatePassword only bounds the password; bcrypt ignores input past 72 bytes.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateMediaURL requires an absolute http(s) URL.
func ValidateMediaURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("mediaUrl is required")
	}
	if len(raw) > MaxMediaURLLength {
		return fmt.Errorf("mediaUrl must not exceed %d characters", MaxMediaURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("mediaUrl must be an absolute http or https URL")
	}
	return nil
}

// ValidateDescription checks post body text.
func ValidateDescription(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("post_description is required")
	}
	if utf8.RuneCountInString(text) > MaxDescriptionLength {
		return fmt.Errorf("post_description must not exceed %d characters", MaxDescriptionLength)
	}
	return nil
}
