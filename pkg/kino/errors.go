package kino

import "fmt"

// Field names reported by ParseError.
const (
	FieldListing     = "listing"
	FieldTitle       = "title"
	FieldReleaseDate = "release_date"
	FieldRating      = "rating"
	FieldDescription = "description"
	FieldLength      = "length"
)

// ParseError reports markup or text that does not have the expected shape.
type ParseError struct {
	Field  string // which part of the record failed
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Field, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(field, reason string) *ParseError {
	return &ParseError{Field: field, Reason: reason}
}
