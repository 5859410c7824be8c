package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Kurama07a/buyer-lead-app/internal/auth"
	"github.com/Kurama07a/buyer-lead-app/internal/core"
)

const insertHistorySQL = `INSERT INTO lead_history (id, lead_id, action, field, old_value, new_value, user_id, timestamp)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertHistory(ctx context.Context, db execer, h *core.LeadHistory) error {
	_, err := db.Exec(ctx, insertHistorySQL,
		h.ID, h.LeadID, string(h.Action), h.Field, h.OldValue, h.NewValue, h.UserID, h.Timestamp)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func scanHistory(row pgx.Row, h *core.LeadHistory, extra ...any) error {
	var action string
	dest := append([]any{
		&h.ID, &h.LeadID, &action, &h.Field, &h.OldValue, &h.NewValue, &h.UserID, &h.Timestamp,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	h.Action = core.HistoryAction(action)
	return nil
}

func (s *Store) ListHistory(ctx context.Context, leadID string, limit int) ([]core.LeadHistory, error) {
	query := `SELECT id, lead_id, action, field, old_value, new_value, user_id, timestamp
FROM lead_history WHERE lead_id = $1 ORDER BY timestamp DESC, seq DESC`
	args := []any{leadID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := []core.LeadHistory{}
	for rows.Next() {
		var h core.LeadHistory
		if err := scanHistory(rows, &h); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// RecentActivity joins history to leads with a LEFT JOIN so entries for
// deleted leads come back with a nil Lead.
func (s *Store) RecentActivity(ctx context.Context, limit int) ([]core.ActivityRecord, error) {
	query := `SELECT h.id, h.lead_id, h.action, h.field, h.old_value, h.new_value, h.user_id, h.timestamp,
	l.first_name, l.last_name, l.property_address, l.property_city, l.property_state
FROM lead_history h
LEFT JOIN leads l ON l.id = h.lead_id
ORDER BY h.timestamp DESC, h.seq DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()

	out := []core.ActivityRecord{}
	for rows.Next() {
		var (
			rec                         core.ActivityRecord
			first, last, addr, city, st pgtype.Text
		)
		if err := scanHistory(rows, &rec.History, &first, &last, &addr, &city, &st); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if first.Valid {
			rec.Lead = &core.LeadSummary{
				FirstName:       first.String,
				LastName:        last.String,
				PropertyAddress: addr.String,
				PropertyCity:    city.String,
				PropertyState:   st.String,
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) UserDisplayName(ctx context.Context, userID string) (string, error) {
	var name string
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(NULLIF(name, ''), email) FROM users WHERE id = $1`, userID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", auth.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("user display name: %w", err)
	}
	return name, nil
}
