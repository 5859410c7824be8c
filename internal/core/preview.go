package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

// PreviewSummary counts what an import of the previewed file would do.
type PreviewSummary struct {
	TotalRows       int `json:"totalRows"`
	ValidRows       int `json:"validRows"`
	SkippedRows     int `json:"skippedRows"`
	InvalidRows     int `json:"invalidRows"`
	DuplicateInFile int `json:"duplicateInFile"`
}

// ColumnMapping shows which lead field a CSV header was matched to. Field
// is empty for ignored headers.
type ColumnMapping struct {
	Header string `json:"header"`
	Field  string `json:"field,omitempty"`
}

// RowPreview is one row that would be imported, after defaults and
// category normalization.
type RowPreview struct {
	Row  int   `json:"row"`
	Lead *Lead `json:"lead"`
}

// ErrorPreview is one row that parsed but would fail validation.
type ErrorPreview struct {
	Row    int          `json:"row"`
	Email  string       `json:"email,omitempty"`
	Errors []FieldError `json:"errors"`
}

// DuplicatePreview is an email that appears on more than one row.
type DuplicatePreview struct {
	Email string `json:"email"`
	Rows  []int  `json:"rows"`
}

// ImportPreview is a read-only analysis of a CSV upload.
type ImportPreview struct {
	Summary          PreviewSummary     `json:"summary"`
	Columns          []ColumnMapping    `json:"columns"`
	Samples          []RowPreview       `json:"samples"`
	Warnings         []RowWarning       `json:"warnings"`
	ErrorSamples     []ErrorPreview     `json:"errorSamples"`
	DuplicateSamples []DuplicatePreview `json:"duplicateSamples"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

const (
	maxPreviewSamples   = 10
	maxErrorSamples     = 20
	maxDuplicateSamples = 10
)

// PreviewImport runs the parse and validation steps of ImportCSV without
// writing anything. Duplicate emails are reported but do not make a row
// invalid, since imports accept them.
func (s *Service) PreviewImport(ctx context.Context, id Identity, text string) (*ImportPreview, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	start := time.Now()

	parsed, err := ParseCSV(text)
	if err != nil {
		return nil, err
	}

	headers, fields := mapHeaders(firstLine(text))
	p := &ImportPreview{
		Columns:          make([]ColumnMapping, len(headers)),
		Samples:          []RowPreview{},
		Warnings:         parsed.Warnings,
		ErrorSamples:     []ErrorPreview{},
		DuplicateSamples: []DuplicatePreview{},
	}
	if p.Warnings == nil {
		p.Warnings = []RowWarning{}
	}
	for i, h := range headers {
		p.Columns[i].Header = h
		if fields[i] != nil {
			p.Columns[i].Field = fields[i].Name
		}
	}

	var (
		emailRows = make(map[string][]int)
		order     []string
	)
	for i, rec := range parsed.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := parsed.Rows[i]

		key := strings.ToLower(strings.TrimSpace(rec.Email))
		if _, seen := emailRows[key]; !seen {
			order = append(order, key)
		}
		emailRows[key] = append(emailRows[key], row)

		l := rec.toLead()
		if err := ValidateLead(l); err != nil {
			p.Summary.InvalidRows++
			if len(p.ErrorSamples) < maxErrorSamples {
				ep := ErrorPreview{Row: row, Email: rec.Email}
				var ve *ValidationError
				if errors.As(err, &ve) {
					ep.Errors = ve.Fields
				} else {
					ep.Errors = []FieldError{{Message: err.Error()}}
				}
				p.ErrorSamples = append(p.ErrorSamples, ep)
			}
			continue
		}

		p.Summary.ValidRows++
		if len(p.Samples) < maxPreviewSamples {
			p.Samples = append(p.Samples, RowPreview{Row: row, Lead: l})
		}
	}

	for _, email := range order {
		rows := emailRows[email]
		if len(rows) < 2 {
			continue
		}
		p.Summary.DuplicateInFile += len(rows) - 1
		if len(p.DuplicateSamples) < maxDuplicateSamples {
			p.DuplicateSamples = append(p.DuplicateSamples, DuplicatePreview{Email: email, Rows: rows})
		}
	}

	p.Summary.SkippedRows = len(parsed.Warnings)
	p.Summary.TotalRows = len(parsed.Records) + len(parsed.Warnings)
	p.ProcessingTimeMs = time.Since(start).Milliseconds()
	return p, nil
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
