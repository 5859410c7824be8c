package core

import (
	"context"
	"errors"
	"time"

	"github.com/Kurama07a/buyer-lead-app/internal/logging"
)

// ImportSummary reports the outcome of a CSV import.
type ImportSummary struct {
	Imported int          `json:"imported"`
	Failed   int          `json:"errors"`
	Errors   []string     `json:"errorDetails"`
	Warnings []RowWarning `json:"warnings"`
}

// ImportCSV parses text and creates one lead per valid row.
//
// A *FormatError or ErrNoValidLeads aborts before anything is written.
// After that, rows are stored one at a time in file order and a failing
// row is reported in Errors without affecting the others. The whole batch
// holds an import slot; ErrTooManyImports means none became free in time.
func (s *Service) ImportCSV(ctx context.Context, id Identity, text string) (*ImportSummary, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	parsed, err := ParseCSV(text)
	if err != nil {
		return nil, err
	}
	if len(parsed.Records) == 0 {
		return nil, ErrNoValidLeads
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	log := logging.WithFields(ctx, "rows", len(parsed.Records))
	start := s.now()
	summary := &ImportSummary{
		Errors:   []string{},
		Warnings: parsed.Warnings,
	}
	if summary.Warnings == nil {
		summary.Warnings = []RowWarning{}
	}

	for _, rec := range parsed.Records {
		if _, err := s.createLead(ctx, id, rec); err != nil {
			recErr := &RecordError{Record: rec, Err: err}
			summary.Failed++
			summary.Errors = append(summary.Errors, recErr.Error())
			log.Warn("import record failed", "email", rec.Email, "error", err)

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			continue
		}
		summary.Imported++
		s.observer.LeadChanged(ActionCreated)
	}

	elapsed := s.now().Sub(start)
	log.Info("csv import finished",
		"imported", summary.Imported,
		"failed", summary.Failed,
		"skipped_rows", len(summary.Warnings),
		"duration_ms", elapsed.Milliseconds(),
	)
	s.observer.ImportFinished(summary.Imported, summary.Failed, len(summary.Warnings), elapsed)
	return summary, nil
}

// importTimeout bounds a single import request when the caller sets none.
const importTimeout = 5 * time.Minute

// ImportContext derives the context an import should run under.
func ImportContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = importTimeout
	}
	return context.WithTimeout(parent, timeout)
}
