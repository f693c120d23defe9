package validate

import (
	"sort"
	"strings"
)

// FieldErrors collects messages per request field.
type FieldErrors map[string][]string

// Add records err's message under field. Nil errors are ignored.
func (fe FieldErrors) Add(field string, err error) {
	if err == nil {
		return
	}
	fe[field] = append(fe[field], Message(field, err))
}

// Addf records a literal message under field.
func (fe FieldErrors) Addf(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Has reports whether field has at least one message.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Err returns fe as an error, or nil when it is empty.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(fe[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Message renders err for field the way API clients see it.
func Message(field string, err error) string {
	switch err {
	case ErrEmpty:
		return capitalize(field) + " cannot be empty."
	case ErrTooShort:
		return capitalize(field) + " must be at least 3 characters."
	case ErrInPast:
		return "Due date cannot be in the past."
	case ErrNotOwner:
		return "You can only create tasks in your own project."
	case ErrDuplicateName:
		return "You already have a project with this name."
	case ErrInvalidChoice:
		return "Not a valid choice."
	case ErrTooLong:
		return "Ensure this field has no more than 150 characters."
	case ErrBadUsername:
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
