package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryDetailLimit is how many history entries GetLead returns.
const HistoryDetailLimit = 10

// Observer receives operation outcomes. The metrics package implements it.
type Observer interface {
	ImportFinished(imported, failed, warnings int, elapsed time.Duration)
	SearchFinished(kind string, total int64, elapsed time.Duration)
	ExportFinished(format string, rows int)
	LeadChanged(action HistoryAction)
}

type nopObserver struct{}

func (nopObserver) ImportFinished(int, int, int, time.Duration) {}
func (nopObserver) SearchFinished(string, int64, time.Duration) {}
func (nopObserver) ExportFinished(string, int) {}
func (nopObserver) LeadChanged(HistoryAction) {}

// Service implements lead management on top of a LeadStore. It holds no
// per-request state; every operation receives the caller's Identity.
type Service struct {
	store       LeadStore
	loc         *time.Location
	limiter     *ImportLimiter
	observer    Observer
	maxPageSize int
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the time zone used for date filters and export dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithImportLimiter shares a limiter across services, typically so
// shutdown can drain it.
func WithImportLimiter(l *ImportLimiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithMaxPageSize caps the page size callers may request.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service backed by store.
func NewService(store LeadStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		loc:         time.UTC,
		observer:    nopObserver{},
		maxPageSize: MaxPageSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewImportLimiter(DefaultMaxConcurrentImports, DefaultImportWait)
	}
	return s
}

// Location is the time zone the service interprets dates in.
func (s *Service) Location() *time.Location { return s.loc }

// ImportLimiter exposes the limiter for status reporting and shutdown.
func (s *Service) ImportLimiter() *ImportLimiter { return s.limiter }

// Page clamps raw paging input to the service's limits.
func (s *Service) Page(number, size int) Page {
	return NewPage(number, size, s.maxPageSize)
}

func requireIdentity(id Identity) error {
	if id.ID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// LeadDetail is a lead with its most recent history.
type LeadDetail struct {
	Lead
	History []LeadHistory `json:"history"`
}

// CreateLead validates in and stores it with a CREATED history entry.
func (s *Service) CreateLead(ctx context.Context, id Identity, in LeadInput) (*Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	l, err := s.createLead(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.observer.LeadChanged(ActionCreated)
	return l, nil
}

func (s *Service) createLead(ctx context.Context, id Identity, in LeadInput) (*Lead, error) {
	l := in.toLead()
	if err := ValidateLead(l); err != nil {
		return nil, err
	}

	now := s.now()
	l.ID = uuid.NewString()
	l.CreatedByID = id.ID
	l.CreatedAt = now
	l.UpdatedAt = now
	l.CreatedBy = &UserRef{ID: id.ID, Name: id.Name, Email: id.Email}

	if err := s.store.CreateLead(ctx, l, createdEntry(l, id.ID)); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	return l, nil
}

// GetLead returns a lead and its HistoryDetailLimit most recent entries.
func (s *Service) GetLead(ctx context.Context, id Identity, leadID string) (*LeadDetail, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	l, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("get lead %s: %w", leadID, err)
	}
	history, err := s.store.ListHistory(ctx, leadID, HistoryDetailLimit)
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", leadID, err)
	}
	if history == nil {
		history = []LeadHistory{}
	}
	return &LeadDetail{Lead: *l, History: history}, nil
}

// UpdateLead applies patch and records one history entry per changed field.
func (s *Service) UpdateLead(ctx context.Context, id Identity, leadID string, patch LeadPatch) (*Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	before, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("get lead %s: %w", leadID, err)
	}

	after := patch.apply(*before)
	if err := ValidateLead(&after); err != nil {
		return nil, err
	}

	now := s.now()
	after.UpdatedAt = now
	after.UpdatedByID = id.ID
	entries := historyFor(leadID, id.ID, DiffLeads(before, &after), now)

	if err := s.store.UpdateLead(ctx, &after, entries); err != nil {
		return nil, fmt.Errorf("update lead %s: %w", leadID, err)
	}
	for _, e := range entries {
		s.observer.LeadChanged(e.Action)
	}
	return &after, nil
}

// AddNote appends note to the lead's additional notes and records a
// NOTE_ADDED entry carrying the note text.
func (s *Service) AddNote(ctx context.Context, id Identity, leadID, note string) (*Lead, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "note", Message: "required field is empty"}}}
	}

	l, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("get lead %s: %w", leadID, err)
	}

	updated := *l
	if updated.AdditionalNotes == "" {
		updated.AdditionalNotes = note
	} else {
		updated.AdditionalNotes += "\n" + note
	}
	now := s.now()
	updated.UpdatedAt = now
	updated.UpdatedByID = id.ID

	entry := LeadHistory{
		ID:        uuid.NewString(),
		LeadID:    leadID,
		Action:    ActionNoteAdded,
		Field:     "additionalNotes",
		NewValue:  note,
		UserID:    id.ID,
		Timestamp: now,
	}
	if err := s.store.UpdateLead(ctx, &updated, []LeadHistory{entry}); err != nil {
		return nil, fmt.Errorf("add note to %s: %w", leadID, err)
	}
	s.observer.LeadChanged(ActionNoteAdded)
	return &updated, nil
}

// DeleteLead removes the lead. Its history is kept.
func (s *Service) DeleteLead(ctx context.Context, id Identity, leadID string) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	if err := s.store.DeleteLead(ctx, leadID); err != nil {
		return fmt.Errorf("delete lead %s: %w", leadID, err)
	}
	return nil
}
