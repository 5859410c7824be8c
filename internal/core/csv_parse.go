package core

import (
	"fmt"
	"strings"
)

// ParseResult is the outcome of parsing a lead CSV. Records holds the rows
// that passed the column-count and required-field checks, in file order,
// and Rows the 1-based file line of each.
type ParseResult struct {
	Records  []LeadInput
	Rows     []int
	Warnings []RowWarning
}

// ParseCSV converts CSV text into lead records.
//
// The first line is the header. Headers are matched to lead fields through
// a fixed synonym table; unknown headers are ignored. Rows with the wrong
// number of columns or missing required fields are skipped and reported as
// warnings. Only text with fewer than two lines is a hard *FormatError.
//
// Quoting is toggle-based: every '"' flips quoted mode and is dropped, and a
// comma splits fields only outside quotes. Doubled quotes ("") inside a
// quoted field are not unescaped; they simply toggle twice.
func ParseCSV(text string) (*ParseResult, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return nil, &FormatError{Reason: "CSV must have at least a header row and one data row"}
	}

	rawHeaders, fields := mapHeaders(lines[0])

	res := &ParseResult{}
	for i := 1; i < len(lines); i++ {
		row := i + 1
		values := SplitCSVLine(lines[i])
		if len(values) != len(rawHeaders) {
			res.Warnings = append(res.Warnings, RowWarning{
				Row:      row,
				Message:  fmt.Sprintf("has %d columns, expected %d", len(values), len(rawHeaders)),
				Got:      len(values),
				Expected: len(rawHeaders),
			})
			continue
		}

		var rec LeadInput
		for col, raw := range values {
			f := fields[col]
			value := strings.TrimSpace(raw)
			if f == nil || value == "" {
				continue
			}
			assignField(&rec, f, value)
		}

		if missing := missingRequired(&rec); len(missing) > 0 {
			res.Warnings = append(res.Warnings, RowWarning{
				Row:     row,
				Message: "missing required fields: " + strings.Join(missing, ", "),
			})
			continue
		}
		res.Records = append(res.Records, rec)
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}

// mapHeaders splits the header line on commas and resolves each header,
// with quotes removed, to a lead field. Unknown headers map to nil.
func mapHeaders(line string) ([]string, []*FieldSpec) {
	headers := strings.Split(line, ",")
	fields := make([]*FieldSpec, len(headers))
	for i, h := range headers {
		h = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
		headers[i] = h
		if f, ok := FieldForHeader(h); ok {
			fields[i] = f
		}
	}
	return headers, fields
}

// SplitCSVLine tokenizes one CSV line with toggle-only quote handling.
func SplitCSVLine(line string) []string {
	var (
		out      []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			out = append(out, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(out, current.String())
}

func assignField(rec *LeadInput, f *FieldSpec, value string) {
	if f.Type == FieldNumber {
		// Unparseable numbers are left absent rather than zeroed.
		*f.num(rec) = ParseNumberPtr(value)
		return
	}
	*f.text(rec) = value
}

func missingRequired(rec *LeadInput) []string {
	var missing []string
	for i := range leadFields {
		f := &leadFields[i]
		if f.Required && *f.text(rec) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}
