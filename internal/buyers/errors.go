package buyers

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no buyer exists for an id.
	ErrNotFound = errors.New("buyer not found")

	// ErrForbidden is returned when the acting user does not own the record.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when the concurrency token is stale.
	ErrConflict = errors.New("record changed, please refresh")

	// ErrTooManyRows is returned when an import exceeds the row cap.
	ErrTooManyRows = errors.New("too many rows")
)

// Violation names one failed constraint on a candidate record.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the ordered violation list from Validate.
// Single-record callers surface the first violation; bulk import keeps
// the whole list for per-row reporting.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return e.Violations[0].Message
}

// First returns the primary violation message.
func (e *ValidationError) First() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return e.Violations[0].Message
}

// RowError ties a single violation to its 1-indexed spreadsheet row
// (the first data row is row 2, after the header).
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportError aggregates every row-level violation of a rejected import.
type ImportError struct {
	Rows []RowError
}

func (e *ImportError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, r := range e.Rows {
		parts = append(parts, fmt.Sprintf("row %d: %s: %s", r.Row, r.Field, r.Message))
	}
	return "import rejected: " + strings.Join(parts, "; ")
}

// ParseError marks a structurally malformed import payload.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed CSV payload: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
