// Package memstore is an in-memory implementation of core.LeadStore and
// auth.UserStore. It backs the test suites and STORE_DRIVER=memory.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Kurama07a/buyer-lead-app/internal/auth"
	"github.com/Kurama07a/buyer-lead-app/internal/core"
)

type leadRow struct {
	lead core.Lead
	seq  int64
}

// Store keeps leads, history and users in maps guarded by one RWMutex.
type Store struct {
	mu      sync.RWMutex
	seq     int64
	leads   map[string]*leadRow
	history []core.LeadHistory
	users   map[string]*auth.User
	byEmail map[string]string
}

var (
	_ core.LeadStore = (*Store)(nil)
	_ auth.UserStore = (*Store)(nil)
)

func New() *Store {
	return &Store{
		leads:   make(map[string]*leadRow),
		users:   make(map[string]*auth.User),
		byEmail: make(map[string]string),
	}
}

func (s *Store) CreateLead(_ context.Context, l *core.Lead, created *core.LeadHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.leads[l.ID]; exists {
		return fmt.Errorf("lead %s: duplicate key", l.ID)
	}
	s.seq++
	row := &leadRow{lead: *l, seq: s.seq}
	row.lead.CreatedBy = nil
	s.leads[l.ID] = row
	if created != nil {
		s.history = append(s.history, *created)
	}
	return nil
}

func (s *Store) UpdateLead(_ context.Context, l *core.Lead, entries []core.LeadHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.leads[l.ID]
	if !ok {
		return core.ErrLeadNotFound
	}
	row.lead = *l
	row.lead.CreatedBy = nil
	s.history = append(s.history, entries...)
	return nil
}

func (s *Store) DeleteLead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return core.ErrLeadNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *Store) GetLead(_ context.Context, id string) (*core.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.leads[id]
	if !ok {
		return nil, core.ErrLeadNotFound
	}
	l := s.withCreator(row.lead)
	return &l, nil
}

// matching returns the rows p accepts, newest first. Callers hold s.mu.
func (s *Store) matching(p core.Predicate) []*leadRow {
	var rows []*leadRow
	for _, row := range s.leads {
		if p.Matches(&row.lead) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.lead.CreatedAt.Equal(b.lead.CreatedAt) {
			return a.lead.CreatedAt.After(b.lead.CreatedAt)
		}
		return a.seq > b.seq
	})
	return rows
}

func (s *Store) withCreator(l core.Lead) core.Lead {
	if u, ok := s.users[l.CreatedByID]; ok {
		l.CreatedBy = &core.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return l
}

func (s *Store) FindLeads(ctx context.Context, p core.Predicate, page core.Page) ([]core.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.matching(p)
	if !page.IsZero() {
		start := min(page.Offset(), len(rows))
		end := min(start+page.Size, len(rows))
		rows = rows[start:end]
	}

	out := make([]core.Lead, len(rows))
	for i, row := range rows {
		out[i] = s.withCreator(row.lead)
	}
	return out, nil
}

func (s *Store) CountLeads(_ context.Context, p core.Predicate) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matching(p))), nil
}

func (s *Store) GroupCount(_ context.Context, p core.Predicate, by core.GroupField) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, row := range s.matching(p) {
		switch by {
		case core.GroupByStatus:
			counts[string(row.lead.Status)]++
		case core.GroupByPriority:
			counts[string(row.lead.Priority)]++
		default:
			return nil, fmt.Errorf("unsupported group field %q", by)
		}
	}
	return counts, nil
}

func (s *Store) AggregateValues(_ context.Context, p core.Predicate) (core.ValueAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.matching(p)
	leads := make([]*core.Lead, len(rows))
	for i, row := range rows {
		leads[i] = &row.lead
	}
	return core.AggregateValues(leads), nil
}

// newestHistory returns matching entries newest first; entries with equal
// timestamps keep reverse insertion order. Callers hold s.mu.
func (s *Store) newestHistory(keep func(*core.LeadHistory) bool, limit int) []core.LeadHistory {
	var out []core.LeadHistory
	for i := len(s.history) - 1; i >= 0; i-- {
		if keep(&s.history[i]) {
			out = append(out, s.history[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) ListHistory(_ context.Context, leadID string, limit int) ([]core.LeadHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestHistory(func(h *core.LeadHistory) bool { return h.LeadID == leadID }, limit), nil
}

func (s *Store) RecentActivity(_ context.Context, limit int) ([]core.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.newestHistory(func(*core.LeadHistory) bool { return true }, limit)
	out := make([]core.ActivityRecord, len(entries))
	for i, h := range entries {
		out[i].History = h
		if row, ok := s.leads[h.LeadID]; ok {
			out[i].Lead = &core.LeadSummary{
				FirstName:       row.lead.FirstName,
				LastName:        row.lead.LastName,
				PropertyAddress: row.lead.PropertyAddress,
				PropertyCity:    row.lead.PropertyCity,
				PropertyState:   row.lead.PropertyState,
			}
		}
	}
	return out, nil
}

func (s *Store) UserDisplayName(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return "", auth.ErrUserNotFound
	}
	if u.Name != "" {
		return u.Name, nil
	}
	return u.Email, nil
}

func (s *Store) CreateUser(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[u.Email]; taken {
		return auth.ErrEmailTaken
	}
	cp := *u
	s.users[u.ID] = &cp
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
