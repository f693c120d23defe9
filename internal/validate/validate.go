// Package validate holds the field rules applied to projects, tasks and
// accounts before they are persisted. Functions here never touch storage;
// callers pass in whatever current state a rule needs.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"tracker/internal/models"
)

// MinTitleLength is the minimum number of characters of a project name or task title.
const MinTitleLength = 3

var (
	ErrEmpty         = errors.New("cannot be empty")
	ErrTooShort      = errors.New("must be at least 3 characters")
	ErrInPast        = errors.New("due date cannot be in the past")
	ErrNotOwner      = errors.New("you can only create tasks in your own project")
	ErrDuplicateName = errors.New("you already have a project with this name")
	ErrInvalidChoice = errors.New("is not a valid choice")
	ErrTooLong       = errors.New("is too long")
	ErrBadUsername   = errors.New("may contain only letters, numbers, and @/./+/-/_ characters")
)

// Title trims raw and checks it is usable as a project name or task title.
func Title(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrEmpty
	}
	if utf8.RuneCountInString(title) < MinTitleLength {
		return "", ErrTooShort
	}
	return title, nil
}

// DueDate rejects a date strictly before today. A nil date is accepted.
func DueDate(due *models.Date, today models.Date) error {
	if due == nil {
		return nil
	}
	if due.Before(today) {
		return ErrInPast
	}
	return nil
}

// ProjectOwnership checks that actor created project.
func ProjectOwnership(project models.Project, actor models.User) error {
	if project.CreatedByID != actor.ID {
		return ErrNotOwner
	}
	return nil
}

// ProjectNameUnique compares name case-insensitively with the actor's
// existing projects, skipping the project with id excludingID.
func ProjectNameUnique(name string, existing []models.Project, excludingID int64) error {
	name = strings.TrimSpace(name)
	for _, p := range existing {
		if p.ID == excludingID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return ErrDuplicateName
		}
	}
	return nil
}

// Status checks raw against the task status enum.
func Status(raw string) error {
	if _, ok := models.ValidTaskStatuses[raw]; !ok {
		return ErrInvalidChoice
	}
	return nil
}

// Priority checks raw against the task priority enum.
func Priority(raw string) error {
	if _, ok := models.ValidTaskPriorities[raw]; !ok {
		return ErrInvalidChoice
	}
	return nil
}

const maxUsernameLength = 150

var usernamePattern = regexp.MustCompile(`^[\pL\pN@.+\-_]+$`)

// Username applies the identity store's account name rules.
func Username(raw string) error {
	switch {
	case raw == "":
		return ErrEmpty
	case utf8.RuneCountInString(raw) > maxUsernameLength:
		return ErrTooLong
	case !usernamePattern.MatchString(raw):
		return ErrBadUsername
	}
	return nil
}

// Password only requires a non-blank value.
func Password(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmpty
	}
	return nil
}
