package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
	"github.com/Kurama07a/buyer-lead-app/internal/web/middleware"
)

const maxJSONBody = 1 << 20

var errBadBody = errors.New("invalid request body")

func init() {
	core.RegisterErrorMessage(errBadBody, core.UserMessage{
		Message: "Invalid request body", Action: "Send a single JSON object",
		Code: "VAL006", Status: http.StatusBadRequest,
	})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadBody)
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

// identity is the caller attached by RequireAuth. Core operations reject
// the zero identity.
func identity(r *http.Request) core.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

// parseIntParam parses a positive integer query parameter with a default.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func (s *Server) pageFromQuery(r *http.Request) core.Page {
	return s.leads.Page(
		parseIntParam(r, "page", 1),
		parseIntParam(r, "limit", s.cfg.Search.DefaultPageSize),
	)
}

func listFiltersFromQuery(r *http.Request) core.ListFilters {
	q := r.URL.Query()
	return core.ListFilters{
		Status:   core.Status(core.NormalizeEnum(q.Get("status"))),
		Priority: core.Priority(core.NormalizeEnum(q.Get("priority"))),
		Search:   strings.TrimSpace(q.Get("search")),
	}
}

// searchFiltersFromQuery reads the advanced search parameters. Malformed
// numbers and dates are reported together as one ValidationError.
func searchFiltersFromQuery(r *http.Request, loc *time.Location) (core.SearchFilters, error) {
	q := r.URL.Query()
	list := listFiltersFromQuery(r)
	f := core.SearchFilters{
		Search:            list.Search,
		Status:            list.Status,
		Priority:          list.Priority,
		PropertyType:      core.PropertyType(core.NormalizeEnum(q.Get("propertyType"))),
		PropertyCondition: core.PropertyCondition(core.NormalizeEnum(q.Get("propertyCondition"))),
		LeadSource:        strings.TrimSpace(q.Get("leadSource")),
	}

	var bad []core.FieldError
	number := func(name string) *float64 {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return nil
		}
		v, ok := core.ParseNumber(raw)
		if !ok {
			bad = append(bad, core.FieldError{Field: name, Message: fmt.Sprintf("invalid number %q", raw)})
			return nil
		}
		return &v
	}
	date := func(name string) *time.Time {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return nil
		}
		t, ok := core.ParseDate(raw, loc)
		if !ok {
			bad = append(bad, core.FieldError{Field: name, Message: fmt.Sprintf("invalid date %q", raw)})
			return nil
		}
		return &t
	}

	f.EstimatedValueMin = number("estimatedValueMin")
	f.EstimatedValueMax = number("estimatedValueMax")
	f.CreatedDateFrom = date("createdDateFrom")
	f.CreatedDateTo = date("createdDateTo")

	if len(bad) > 0 {
		return core.SearchFilters{}, &core.ValidationError{Fields: bad}
	}
	return f, nil
}
