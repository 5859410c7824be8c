package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLeadNotFound is returned when a lead id does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrUnauthenticated is returned when an operation runs without a verified identity.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the identity lacks the required role.
	ErrForbidden = errors.New("admin access required")

	// ErrNoValidLeads is returned by import when parsing yields no usable rows.
	ErrNoValidLeads = errors.New("no valid leads found in CSV")
)

// FormatError means the CSV text is structurally unusable. It aborts the
// whole import.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid csv: " + e.Reason
}

// RowWarning records a CSV row that was skipped. Row is the 1-based line
// number in the file, so the header is row 1.
type RowWarning struct {
	Row      int    `json:"row"`
	Message  string `json:"message"`
	Got      int    `json:"got,omitempty"`
	Expected int    `json:"expected,omitempty"`
}

func (w RowWarning) String() string {
	return fmt.Sprintf("Row %d: %s", w.Row, w.Message)
}

// RecordError is a single lead that could not be persisted during import.
type RecordError struct {
	Record LeadInput
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("Failed to import %s %s: %s", e.Record.FirstName, e.Record.LastName, e.Record.Email)
}

func (e *RecordError) Unwrap() error { return e.Err }

// ValidationError lists the problems found on a lead.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
