package rewards

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSubject is returned when a grade is given for a subject
	// that has no threshold.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrUnknownItem is returned when a catalog label does not exist.
	ErrUnknownItem = errors.New("unknown catalog item")

	// ErrInvalidCatalog is returned when catalog data breaks its rules.
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// UnknownSubjectError names the subject that was not found.
type UnknownSubjectError struct {
	Subject string
}

func (e *UnknownSubjectError) Error() string {
	return fmt.Sprintf("unknown subject %q", e.Subject)
}

func (e *UnknownSubjectError) Unwrap() error {
	return ErrUnknownSubject
}

// UnknownItemError names the catalog lookup that failed.
type UnknownItemError struct {
	Category Category
	Label    string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Category, e.Label)
}

func (e *UnknownItemError) Unwrap() error {
	return ErrUnknownItem
}
