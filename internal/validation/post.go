// Package validation holds the field-level input rules shared between
// handlers and services.
package validation

import (
	"strings"
	"unicode/utf8"

	"livefeed/internal/models"
)

// Titles and bodies must carry at least this many characters after trimming.
const minPostFieldLength = 5

// PostFields checks a post's title and content. It returns one violation
// per failing field so clients can render them next to the inputs.
func PostFields(title, content string) []models.FieldViolation {
	var violations []models.FieldViolation

	if utf8.RuneCountInString(strings.TrimSpace(title)) < minPostFieldLength {
		violations = append(violations, models.FieldViolation{
			Field:   "title",
			Message: "Title must be at least 5 characters long.",
		})
	}

	if utf8.RuneCountInString(strings.TrimSpace(content)) < minPostFieldLength {
		violations = append(violations, models.FieldViolation{
			Field:   "content",
			Message: "Content must be at least 5 characters long.",
		})
	}

	return violations
}
