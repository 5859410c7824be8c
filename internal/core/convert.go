package core

// convert.go turns user-entered text into lead values and back.
//
// CSV files and query strings are messy: numbers arrive with currency
// symbols and thousands separators, dates arrive in US or ISO form. The
// helpers here clean those up and report absence instead of guessing.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericRegex validates a cleaned number: integers, decimals and exponents.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ShortDateLayout is the export format for dates (M/D/YYYY).
const ShortDateLayout = "1/2/2006"

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// ParseNumber parses a decimal number.
//
// Surrounding whitespace, currency symbols ($, €, £) and thousands separators
// are removed, and the accounting form "(123.45)" is read as negative.
// The second return value is false when the input is empty or not numeric,
// in which case the field should be omitted rather than set to zero.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)
	if negative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseNumberPtr is ParseNumber returning nil for absent values.
func ParseNumberPtr(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

// FormatNumber renders a number as a plain decimal, or "" when absent.
func FormatNumber(v *float64) string {
	return formatOptional(v)
}

// ParseDate parses a calendar date in loc. Only the date part is kept.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), true
		}
	}
	return time.Time{}, false
}

// FormatShortDate renders t as M/D/YYYY in loc.
func FormatShortDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(ShortDateLayout)
}

// normalizeHeader prepares a CSV header token for synonym lookup.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
