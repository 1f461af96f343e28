// utils/validator.go - Input validation
package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"talenthub-api/models"
)

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}

// ValidateURL accepts absolute http(s) URLs only.
func ValidateURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// ValidateSubmissionLinks checks every deliverable link. Each one needs
// a non-empty label and a syntactically valid URL.
func ValidateSubmissionLinks(links []models.SubmissionLink) error {
	if len(links) == 0 {
		return ValidationError("At least one submission link is required")
	}
	for i, link := range links {
		if strings.TrimSpace(link.Label) == "" {
			return ValidationError(fmt.Sprintf("Link %d is missing a label", i+1))
		}
		if !ValidateURL(link.URL) {
			return ValidationError(fmt.Sprintf("Link %d has an invalid URL", i+1))
		}
	}
	return nil
}

// ValidateRating enforces the 1-5 rating bounds.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ValidationError("Rating must be between 1 and 5")
	}
	return nil
}

// ValidateAmount rejects non-positive currency amounts.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return ValidationError("Amount must be positive")
	}
	return nil
}
