package web

// errors.go turns handler errors into JSON responses.
//
// Every error is mapped through core.MapError: the technical error is
// logged server-side with the request id, and the client receives the
// user-facing message, a suggested action and a stable code.

import (
	"errors"
	"net/http"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/logging"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Fields  []core.FieldError `json:"fields,omitempty"`
}

// respondError maps err to a user message and writes it with the mapped
// status. Server errors are logged at error level, client errors at warn.
// Errors with no specific mapping are logged as unhandled.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", msg.Status,
		"code", msg.Code,
		"error", err.Error(),
	)
	switch {
	case !core.IsUserFacing(err):
		logger.Error("unhandled error")
	case msg.Status >= http.StatusInternalServerError:
		logger.Error("request error")
	default:
		logger.Warn("request rejected")
	}

	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	writeJSON(w, msg.Status, resp)
}

// respondMessage writes a plain {"error": message} body for request-shape
// problems the handlers detect themselves.
func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
