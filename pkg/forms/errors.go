package forms

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports a missing definition or translation.
var ErrNotFound = errors.New("forms: not found")

// StateError reports an operation attempted in an incompatible lifecycle
// state, e.g. editing a published definition.
type StateError struct {
	Op     string
	Status Status
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("forms: cannot %s definition in status %s: %s", e.Op, e.Status, e.Reason)
}

// PublishError reports a publish attempt whose mappings do not cover every
// required field type.
type PublishError struct {
	Missing []MissingFieldType
}

// MissingFieldType names one uncovered required field type.
type MissingFieldType struct {
	Key           string
	CanonicalName string
}

func (e *PublishError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		names = append(names, fmt.Sprintf("%s (%s)", m.Key, m.CanonicalName))
	}
	return "forms: publish blocked, unmapped required field types: " + strings.Join(names, ", ")
}

// ConflictError reports a uniqueness violation, e.g. a second translation for
// the same language.
type ConflictError struct {
	Resource string
	Detail   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("forms: %s conflict: %s", e.Resource, e.Detail)
}
