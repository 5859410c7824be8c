package core

import (
	"strings"
	"time"
)

// ExportHeaders is the fixed column order of lead exports.
var ExportHeaders = []string{
	"First Name",
	"Last Name",
	"Email",
	"Phone",
	"Address",
	"City",
	"State",
	"ZIP Code",
	"Property Type",
	"Property Address",
	"Property City",
	"Property State",
	"Property ZIP Code",
	"Estimated Value",
	"Desired Timeframe",
	"Motivation for Selling",
	"Current Mortgage Balance",
	"Property Condition",
	"Additional Notes",
	"Lead Source",
	"Status",
	"Priority",
	"Created Date",
	"Created By",
}

// ExportRow returns the export cells for one lead, unescaped, in
// ExportHeaders order. Category fields are humanized and dates are
// rendered in loc.
func ExportRow(l *Lead, loc *time.Location) []string {
	return []string{
		l.FirstName,
		l.LastName,
		l.Email,
		l.Phone,
		l.Address,
		l.City,
		l.State,
		l.ZipCode,
		HumanizeEnum(string(l.PropertyType)),
		l.PropertyAddress,
		l.PropertyCity,
		l.PropertyState,
		l.PropertyZipCode,
		FormatNumber(l.EstimatedValue),
		l.DesiredTimeframe,
		l.MotivationForSelling,
		FormatNumber(l.CurrentMortgageBalance),
		HumanizeEnum(string(l.PropertyCondition)),
		l.AdditionalNotes,
		l.LeadSource,
		HumanizeEnum(string(l.Status)),
		string(l.Priority),
		FormatShortDate(l.CreatedAt, loc),
		l.CreatedBy.DisplayName(),
	}
}

// GenerateCSV renders leads as CSV text in the given order. An empty slice
// yields "" with no header. Rows are separated by '\n' with no trailing
// newline.
func GenerateCSV(leads []Lead, loc *time.Location) string {
	if len(leads) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Join(ExportHeaders, ","))
	for i := range leads {
		b.WriteByte('\n')
		for j, cell := range ExportRow(&leads[i], loc) {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(EscapeCSVField(cell))
		}
	}
	return b.String()
}

// EscapeCSVField quotes a field if and only if it contains a comma, a double
// quote or a newline, doubling any internal quotes.
func EscapeCSVField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
