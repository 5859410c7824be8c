package core

import "context"

// LeadStore is the persistence the service depends on. Implementations
// must return ErrLeadNotFound (possibly wrapped) for unknown ids.
type LeadStore interface {
	// CreateLead inserts l and then its CREATED history entry.
	CreateLead(ctx context.Context, l *Lead, created *LeadHistory) error
	// UpdateLead saves l and appends entries, atomically where supported.
	UpdateLead(ctx context.Context, l *Lead, entries []LeadHistory) error
	DeleteLead(ctx context.Context, id string) error
	GetLead(ctx context.Context, id string) (*Lead, error)

	// FindLeads returns matches newest first. A zero page returns all of them.
	FindLeads(ctx context.Context, p Predicate, page Page) ([]Lead, error)
	CountLeads(ctx context.Context, p Predicate) (int64, error)
	GroupCount(ctx context.Context, p Predicate, by GroupField) (map[string]int64, error)
	AggregateValues(ctx context.Context, p Predicate) (ValueAggregate, error)

	ListHistory(ctx context.Context, leadID string, limit int) ([]LeadHistory, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityRecord, error)

	// UserDisplayName returns the user's name, or their email when unnamed.
	UserDisplayName(ctx context.Context, userID string) (string, error)
}
