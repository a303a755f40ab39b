package intake

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports a missing patient, submission, or signature.
var ErrNotFound = errors.New("intake: not found")

// FormatError reports submitted data the canonicalizer cannot accept, such
// as a missing required attribute or an unparsable birth date.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("intake: field %q %s", e.Field, e.Reason)
}

// birthDateLayouts are the accepted birth date text shapes, tried in order.
var birthDateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
	"2.1.2006",
}

func unparsableDateError(field string) *FormatError {
	return &FormatError{
		Field:  field,
		Reason: "is not a recognized date, accepted patterns: " + strings.Join(birthDateLayouts, ", "),
	}
}
