package domain

import (
	"fmt"
	"strings"
)

// FieldError describes one invalid field of a session log.
type FieldError struct {
	Field  string // dotted path, e.g. "time.start" or "counter[2].flash"
	Reason string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s (%s)", e.Field, e.Reason)
}

// ValidationError lists every structural or type problem found in a raw
// session log. It is never returned empty.
type ValidationError struct {
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid session log: " + strings.Join(parts, ", ")
}

// Fields returns the offending field paths in the order they were found.
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		fields[i] = p.Field
	}
	return fields
}

// LocationNotFoundError is returned for a location name missing from the catalog.
type LocationNotFoundError struct {
	Name  string
	Known []string
}

func (e *LocationNotFoundError) Error() string {
	return fmt.Sprintf("no location found for %q, supported locations: %s", e.Name, strings.Join(e.Known, ", "))
}

// TimeFormatError is returned when a time of day matches none of the accepted formats.
type TimeFormatError struct {
	Value string
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("unexpected time format %q, expecting H:MM AM/PM, H AM/PM or 24-hour HH:MM", e.Value)
}

// DateFormatError is returned when a date is not in YYYY-MM-DD form.
type DateFormatError struct {
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("inappropriate date format %q, expecting YYYY-MM-DD", e.Value)
}

// TimezoneError is returned when no timezone can be resolved for a location.
type TimezoneError struct {
	Location string
	Err      error
}

func (e *TimezoneError) Error() string {
	return fmt.Sprintf("resolve timezone for %s: %v", e.Location, e.Err)
}

func (e *TimezoneError) Unwrap() error { return e.Err }
