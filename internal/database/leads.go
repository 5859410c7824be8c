package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Kurama07a/buyer-lead-app/internal/core"
)

const leadColumns = `id, first_name, last_name, email, phone, address, city, state, zip_code,
	property_type, property_address, property_city, property_state, property_zip_code,
	estimated_value, property_condition, desired_timeframe, motivation_for_selling,
	current_mortgage_balance, additional_notes, lead_source, status, priority,
	created_by_id, updated_by_id, created_at, updated_at`

// selectLeads wraps a filtered leads subquery so the WHERE clause can use
// bare column names without clashing with users columns.
const selectLeads = `SELECT l.id, l.first_name, l.last_name, l.email, l.phone, l.address, l.city, l.state, l.zip_code,
	l.property_type, l.property_address, l.property_city, l.property_state, l.property_zip_code,
	l.estimated_value, l.property_condition, l.desired_timeframe, l.motivation_for_selling,
	l.current_mortgage_balance, l.additional_notes, l.lead_source, l.status, l.priority,
	l.created_by_id, l.updated_by_id, l.created_at, l.updated_at,
	u.name, u.email
FROM (SELECT * FROM leads%s) l
LEFT JOIN users u ON u.id = l.created_by_id`

const orderNewestFirst = ` ORDER BY l.created_at DESC, l.seq DESC`

const insertLead = `INSERT INTO leads (` + leadColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`

const updateLead = `UPDATE leads SET
	first_name = $2, last_name = $3, email = $4, phone = $5, address = $6, city = $7, state = $8, zip_code = $9,
	property_type = $10, property_address = $11, property_city = $12, property_state = $13, property_zip_code = $14,
	estimated_value = $15, property_condition = $16, desired_timeframe = $17, motivation_for_selling = $18,
	current_mortgage_balance = $19, additional_notes = $20, lead_source = $21, status = $22, priority = $23,
	created_by_id = $24, updated_by_id = $25, created_at = $26, updated_at = $27
WHERE id = $1`

func leadArgs(l *core.Lead) []any {
	return []any{
		l.ID, l.FirstName, l.LastName, l.Email, l.Phone, l.Address, l.City, l.State, l.ZipCode,
		string(l.PropertyType), l.PropertyAddress, l.PropertyCity, l.PropertyState, l.PropertyZipCode,
		l.EstimatedValue, string(l.PropertyCondition), l.DesiredTimeframe, l.MotivationForSelling,
		l.CurrentMortgageBalance, l.AdditionalNotes, l.LeadSource, string(l.Status), string(l.Priority),
		l.CreatedByID, l.UpdatedByID, l.CreatedAt, l.UpdatedAt,
	}
}

func scanLead(row pgx.Row) (*core.Lead, error) {
	var (
		l                                         core.Lead
		propertyType, condition, status, priority string
		creatorName, creatorEmail                 pgtype.Text
	)
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Address, &l.City, &l.State, &l.ZipCode,
		&propertyType, &l.PropertyAddress, &l.PropertyCity, &l.PropertyState, &l.PropertyZipCode,
		&l.EstimatedValue, &condition, &l.DesiredTimeframe, &l.MotivationForSelling,
		&l.CurrentMortgageBalance, &l.AdditionalNotes, &l.LeadSource, &status, &priority,
		&l.CreatedByID, &l.UpdatedByID, &l.CreatedAt, &l.UpdatedAt,
		&creatorName, &creatorEmail,
	)
	if err != nil {
		return nil, err
	}

	l.PropertyType = core.PropertyType(propertyType)
	l.PropertyCondition = core.PropertyCondition(condition)
	l.Status = core.Status(status)
	l.Priority = core.Priority(priority)
	if creatorEmail.Valid {
		l.CreatedBy = &core.UserRef{ID: l.CreatedByID, Name: creatorName.String, Email: creatorEmail.String}
	}
	return &l, nil
}

func (s *Store) CreateLead(ctx context.Context, l *core.Lead, created *core.LeadHistory) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertLead, leadArgs(l)...); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	if created != nil {
		if err := insertHistory(ctx, tx, created); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) UpdateLead(ctx context.Context, l *core.Lead, entries []core.LeadHistory) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, updateLead, leadArgs(l)...)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrLeadNotFound
	}
	for i := range entries {
		if err := insertHistory(ctx, tx, &entries[i]); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrLeadNotFound
	}
	return nil
}

func (s *Store) GetLead(ctx context.Context, id string) (*core.Lead, error) {
	query := fmt.Sprintf(selectLeads, " WHERE id = $1")
	l, err := scanLead(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

func (s *Store) FindLeads(ctx context.Context, p core.Predicate, page core.Page) ([]core.Lead, error) {
	wb := core.NewWhereBuilder()
	p.Apply(wb)
	where, args := wb.Build()

	query := fmt.Sprintf(selectLeads, where) + orderNewestFirst
	if !page.IsZero() {
		next := wb.NextArgIndex()
		query += " LIMIT $" + strconv.Itoa(next) + " OFFSET $" + strconv.Itoa(next+1)
		args = append(args, page.Size, page.Offset())
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find leads: %w", err)
	}
	defer rows.Close()

	leads := []core.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func (s *Store) CountLeads(ctx context.Context, p core.Predicate) (int64, error) {
	wb := core.NewWhereBuilder()
	p.Apply(wb)
	where, args := wb.Build()

	var n int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM leads"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

var groupColumns = map[core.GroupField]string{
	core.GroupByStatus:   "status",
	core.GroupByPriority: "priority",
}

func (s *Store) GroupCount(ctx context.Context, p core.Predicate, by core.GroupField) (map[string]int64, error) {
	col, ok := groupColumns[by]
	if !ok {
		return nil, fmt.Errorf("unsupported group field %q", by)
	}

	wb := core.NewWhereBuilder()
	p.Apply(wb)
	where, args := wb.Build()

	query := "SELECT " + col + ", COUNT(*) FROM leads" + where + " GROUP BY " + col
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("group leads by %s: %w", col, err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			key string
			n   int64
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan group count: %w", err)
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

func (s *Store) AggregateValues(ctx context.Context, p core.Predicate) (core.ValueAggregate, error) {
	wb := core.NewWhereBuilder()
	p.Apply(wb)
	where, args := wb.Build()

	query := `SELECT COUNT(estimated_value), SUM(estimated_value), AVG(estimated_value),
	MIN(estimated_value), MAX(estimated_value) FROM leads` + where

	var agg core.ValueAggregate
	err := s.db.QueryRow(ctx, query, args...).Scan(&agg.Count, &agg.Sum, &agg.Avg, &agg.Min, &agg.Max)
	if err != nil {
		return core.ValueAggregate{}, fmt.Errorf("aggregate values: %w", err)
	}
	return agg, nil
}
