package core

import (
	"context"
	"fmt"
	"time"
)

// ListFilters are the filters the lead list and export accept.
type ListFilters struct {
	Status   Status
	Priority Priority
	Search   string
}

func (f ListFilters) predicate(loc *time.Location) Predicate {
	return NewPredicate(SearchFilters{
		Search:   f.Search,
		Status:   f.Status,
		Priority: f.Priority,
	}, ListSearchFields, loc)
}

// ListLeads returns one page of leads, newest first, without statistics.
func (s *Service) ListLeads(ctx context.Context, id Identity, f ListFilters, page Page) (*SearchResult, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	start := s.now()

	res, err := s.findPage(ctx, f.predicate(s.loc), page)
	if err != nil {
		return nil, err
	}
	s.observer.SearchFinished("list", res.Pagination.Total, s.now().Sub(start))
	return res, nil
}

// Search runs the advanced lead search: one page of matches plus
// statistics computed over every match.
func (s *Service) Search(ctx context.Context, id Identity, f SearchFilters, page Page) (*SearchResult, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	start := s.now()
	p := NewPredicate(f, AdvancedSearchFields, s.loc)

	res, err := s.findPage(ctx, p, page)
	if err != nil {
		return nil, err
	}

	agg, err := s.store.AggregateValues(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("aggregate values: %w", err)
	}
	byStatus, err := s.store.GroupCount(ctx, p, GroupByStatus)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	byPriority, err := s.store.GroupCount(ctx, p, GroupByPriority)
	if err != nil {
		return nil, fmt.Errorf("count by priority: %w", err)
	}
	res.Statistics = StatisticsFrom(res.Pagination.Total, agg, byStatus, byPriority)

	s.observer.SearchFinished("search", res.Pagination.Total, s.now().Sub(start))
	return res, nil
}

func (s *Service) findPage(ctx context.Context, p Predicate, page Page) (*SearchResult, error) {
	if page.IsZero() {
		page = s.Page(1, DefaultPageSize)
	}

	total, err := s.store.CountLeads(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	leads, err := s.store.FindLeads(ctx, p, page)
	if err != nil {
		return nil, fmt.Errorf("find leads: %w", err)
	}
	if leads == nil {
		leads = []Lead{}
	}
	return &SearchResult{Leads: leads, Pagination: NewPagination(page, total)}, nil
}

// DashboardStats are the headline counts on the dashboard.
type DashboardStats struct {
	TotalLeads     int64 `json:"totalLeads"`
	NewLeads       int64 `json:"newLeads"`
	QualifiedLeads int64 `json:"qualifiedLeads"`
	ClosedLeads    int64 `json:"closedLeads"`
}

// DashboardStats counts all leads and those in the NEW, QUALIFIED and
// CLOSED stages.
func (s *Service) DashboardStats(ctx context.Context, id Identity) (*DashboardStats, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	byStatus, err := s.store.GroupCount(ctx, Predicate{}, GroupByStatus)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}

	st := &DashboardStats{
		NewLeads:       byStatus[string(StatusNew)],
		QualifiedLeads: byStatus[string(StatusQualified)],
		ClosedLeads:    byStatus[string(StatusClosed)],
	}
	for _, n := range byStatus {
		st.TotalLeads += n
	}
	return st, nil
}

// DefaultActivityLimit is the size of the dashboard activity feed.
const DefaultActivityLimit = 5

// RecentActivity renders the newest history entries across all leads.
func (s *Service) RecentActivity(ctx context.Context, id Identity, limit int) ([]Activity, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	records, err := s.store.RecentActivity(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}

	out := make([]Activity, 0, len(records))
	for _, rec := range records {
		var userName string
		if rec.History.Action == ActionAssigned {
			userName = s.actorName(ctx, rec.History.UserID)
		}
		out = append(out, Activity{
			ID:        rec.History.ID,
			Type:      rec.History.Action,
			Message:   ActivityMessage(rec, userName),
			Timestamp: rec.History.Timestamp,
		})
	}
	return out, nil
}

func (s *Service) actorName(ctx context.Context, userID string) string {
	name, err := s.store.UserDisplayName(ctx, userID)
	if err != nil || name == "" {
		return "Unknown User"
	}
	return name
}
