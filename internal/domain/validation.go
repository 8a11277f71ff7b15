package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every offending field of a request
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records an invalid field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasField reports whether the named field failed validation
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) checkLength(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		e.Add(field, fmt.Sprintf("must be between %d and %d characters", min, max))
	}
}

func (e *ValidationError) checkRange(field string, value, min, max int) {
	if value < min || value > max {
		e.Add(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
}

func (e *ValidationError) checkNonNegative(field string, value int64) {
	if value < 0 {
		e.Add(field, "must be greater than or equal to 0")
	}
}

func (e *ValidationError) checkPositive(field string, value int64) {
	if value <= 0 {
		e.Add(field, "must be a positive id")
	}
}

// checkEmail accepts a bare addr-spec of at most EmailMaxLength characters
// whose domain has at least one dot
func (e *ValidationError) checkEmail(field, value string) {
	if utf8.RuneCountInString(value) > EmailMaxLength {
		e.Add(field, fmt.Sprintf("must be at most %d characters", EmailMaxLength))
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		e.Add(field, "must be a valid email address")
		return
	}
	at := strings.LastIndex(value, "@")
	domain := value[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		e.Add(field, "must be a valid email address")
	}
}
