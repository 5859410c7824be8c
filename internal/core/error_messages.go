package core

// # Error Codes
//
// Every error that reaches a client is mapped to a UserMessage carrying a
// short message, a suggested action and a code that support staff can look
// up here. Known sentinel and typed errors are matched first with
// errors.Is / errors.As; anything else falls back to case-insensitive
// substring patterns on the error text, first match wins.
//
// # Authentication (AUTH001-AUTH099)
//
//	AUTH001 - Not signed in                   401
//	AUTH002 - Admin access required           403
//	AUTH003 - Invalid email or password       401
//	AUTH004 - Email already registered        409
//	AUTH005 - Session expired or revoked      401
//	AUTH006 - Password too short              400
//	AUTH007 - Email or password missing       400
//
// # Leads (LEAD001-LEAD099)
//
//	LEAD001 - Lead not found                  404
//
// # Validation (VAL001-VAL099)
//
//	VAL001 - Invalid date                     400
//	VAL002 - Invalid number                   400
//	VAL003 - Required field is empty          400
//	VAL004 - Invalid enum value               400
//	VAL005 - Lead failed validation           400
//	VAL006 - Malformed request body           400
//
// # Files (FILE001-FILE099)
//
//	FILE001 - File too large                  413
//	FILE002 - Invalid CSV                     400
//	FILE003 - No file provided                400
//	FILE004 - File must be a CSV              400
//
// # Import (IMP001-IMP099)
//
//	IMP001 - No valid leads found in CSV      400
//	IMP002 - Too many concurrent imports      429
//
// # Database (DB001-DB099)
//
//	DB001 - Duplicate value                   409
//	DB002 - Database unavailable              503
//	DB003 - Timeout                           504
//	DB004 - Deadlock                          503
//
// # Rate limiting (RATE001)
//
//	RATE001 - Too many requests               429
//
// # Default (ERR000)
//
//	ERR000 - Unexpected error                 500
//
// When a user quotes ERR000, the original error is in the server log under
// the same request_id.

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// UserMessage is the client-facing rendering of an error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
	Status  int    // HTTP status
}

// ErrFileTooLarge is returned when an upload exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrRateLimited is returned by the request rate limiter.
var ErrRateLimited = errors.New("rate limit exceeded")

// sentinelMessages are matched with errors.Is before any text pattern.
// Packages core cannot import add theirs with RegisterErrorMessage.
var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{ErrUnauthenticated, UserMessage{"Authentication required", "Please sign in", "AUTH001", http.StatusUnauthorized}},
	{ErrForbidden, UserMessage{"Admin access required", "Ask an administrator for access", "AUTH002", http.StatusForbidden}},
	{ErrLeadNotFound, UserMessage{"Lead not found", "The lead may have been deleted", "LEAD001", http.StatusNotFound}},
	{ErrNoValidLeads, UserMessage{"No valid leads found in CSV", "Check the header row and required columns", "IMP001", http.StatusBadRequest}},
	{ErrTooManyImports, UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "IMP002", http.StatusTooManyRequests}},
	{ErrFileTooLarge, UserMessage{"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001", http.StatusRequestEntityTooLarge}},
	{ErrRateLimited, UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001", http.StatusTooManyRequests}},
	{context.DeadlineExceeded, UserMessage{"Operation timed out", "Please try again", "DB003", http.StatusGatewayTimeout}},
}

// RegisterErrorMessage maps err (matched with errors.Is) to msg. It is meant
// to be called from package init functions.
func RegisterErrorMessage(err error, msg UserMessage) {
	sentinelMessages = append(sentinelMessages, struct {
		err error
		msg UserMessage
	}{err, msg})
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are tried in order against the lower-cased error text.
var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{"A record with this value already exists", "Use a different value", "DB001", http.StatusConflict}},
	{"violates unique", UserMessage{"A record with this value already exists", "Use a different value", "DB001", http.StatusConflict}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB002", http.StatusServiceUnavailable}},
	{"connection reset", UserMessage{"Unable to connect to database", "Please try again", "DB002", http.StatusServiceUnavailable}},
	{"timeout", UserMessage{"Operation timed out", "Please try again", "DB003", http.StatusGatewayTimeout}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB004", http.StatusServiceUnavailable}},

	{"invalid date", UserMessage{"Invalid date format", "Use YYYY-MM-DD or MM/DD/YYYY", "VAL001", http.StatusBadRequest}},
	{"invalid number", UserMessage{"Invalid number format", "Use a plain decimal number", "VAL002", http.StatusBadRequest}},
	{"required field", UserMessage{"Required field is empty", "Fill in every required field", "VAL003", http.StatusBadRequest}},
	{"invalid enum", UserMessage{"Value is not in the allowed list", "Check the allowed values for this field", "VAL004", http.StatusBadRequest}},

	{"invalid csv", UserMessage{"File is not a valid CSV", "Include a header row and at least one data row", "FILE002", http.StatusBadRequest}},
	{"no file provided", UserMessage{"No file provided", "Please select a CSV file to upload", "FILE003", http.StatusBadRequest}},
	{"must be a csv", UserMessage{"File must be a CSV", "Upload a file with a .csv extension", "FILE004", http.StatusBadRequest}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  http.StatusInternalServerError,
}

// MapError converts err to a UserMessage. A nil error maps to the zero value.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	var fe *FormatError
	if errors.As(err, &fe) {
		return UserMessage{fe.Reason, "Include a header row and at least one data row", "FILE002", http.StatusBadRequest}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return UserMessage{ve.Error(), "Correct the listed fields", "VAL005", http.StatusBadRequest}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
