package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ExportFormat selects the export file type.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ParseExportFormat maps a query value to a format. Empty means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportXLSX:
		return ExportXLSX, nil
	default:
		return "", &ValidationError{Fields: []FieldError{{Field: "format", Message: fmt.Sprintf("invalid enum value %q", s)}}}
	}
}

// ContentType is the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ExportFile is a rendered export ready to be served.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// Export renders every lead matching f, newest first.
func (s *Service) Export(ctx context.Context, id Identity, f ListFilters, format ExportFormat) (*ExportFile, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	leads, err := s.store.FindLeads(ctx, f.predicate(s.loc), Page{})
	if err != nil {
		return nil, fmt.Errorf("find leads for export: %w", err)
	}

	var data []byte
	switch format {
	case ExportXLSX:
		data, err = GenerateXLSX(leads, s.loc)
		if err != nil {
			return nil, fmt.Errorf("generate xlsx: %w", err)
		}
	default:
		format = ExportCSV
		data = []byte(GenerateCSV(leads, s.loc))
	}

	s.observer.ExportFinished(string(format), len(leads))
	return &ExportFile{
		Filename:    ExportFilename(s.now(), format),
		ContentType: format.ContentType(),
		Data:        data,
		Rows:        len(leads),
	}, nil
}

// ExportFilename is leads-export-YYYY-MM-DD.<ext>, dated in UTC.
func ExportFilename(at time.Time, format ExportFormat) string {
	return fmt.Sprintf("leads-export-%s.%s", at.UTC().Format("2006-01-02"), format)
}
