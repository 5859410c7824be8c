package core

import (
	"math"
	"strings"
	"time"
)

// SearchFilters are the optional criteria of a lead search. Zero values
// impose no constraint.
type SearchFilters struct {
	Search            string
	Status            Status
	Priority          Priority
	PropertyType      PropertyType
	PropertyCondition PropertyCondition
	LeadSource        string
	EstimatedValueMin *float64
	EstimatedValueMax *float64
	CreatedDateFrom   *time.Time // calendar date; time of day is ignored
	CreatedDateTo     *time.Time // calendar date; the whole day is included
}

// Page selects a window of results. Number is 1-based. A zero Page means
// "everything".
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NewPage clamps raw paging input: number defaults to 1, size to
// DefaultPageSize, and size is capped at maxSize. Number is capped so the
// offset fits in an int.
func NewPage(number, size, maxSize int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	if limit := math.MaxInt / size; number > limit {
		number = limit
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of records skipped before this page. It saturates
// at math.MaxInt instead of overflowing.
func (p Page) Offset() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// IsZero reports whether the page is unbounded.
func (p Page) IsZero() bool { return p.Size == 0 }

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination derives the page count as ceil(total/size).
func NewPagination(p Page, total int64) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return Pagination{Page: p.Number, PageSize: p.Size, Total: total, TotalPages: pages}
}

// ValueAggregate summarizes estimated values. Pointers are nil when no
// matching lead has a value.
type ValueAggregate struct {
	Count int64
	Sum   *float64
	Avg   *float64
	Min   *float64
	Max   *float64
}

// Statistics summarizes the full matching set of a search.
type Statistics struct {
	Total             int64              `json:"total"`
	ValueCount        int64              `json:"valueCount"`
	AverageValue      *float64           `json:"averageValue"`
	TotalValue        *float64           `json:"totalValue"`
	MinValue          *float64           `json:"minValue"`
	MaxValue          *float64           `json:"maxValue"`
	StatusBreakdown   map[Status]int64   `json:"statusBreakdown"`
	PriorityBreakdown map[Priority]int64 `json:"priorityBreakdown"`
}

// SearchResult is one page of leads plus paging and, for searches,
// statistics over every match.
type SearchResult struct {
	Leads      []Lead      `json:"leads"`
	Pagination Pagination  `json:"pagination"`
	Statistics *Statistics `json:"statistics,omitempty"`
}

// GroupField is a column leads can be counted by.
type GroupField string

const (
	GroupByStatus   GroupField = "status"
	GroupByPriority GroupField = "priority"
)

// Predicate is a compiled SearchFilters: text fields resolved, date bounds
// widened to whole days. It can be evaluated in memory or rendered as SQL.
type Predicate struct {
	Text              string
	TextFields        []*FieldSpec
	Status            Status
	Priority          Priority
	PropertyType      PropertyType
	PropertyCondition PropertyCondition
	LeadSource        string
	MinValue          *float64
	MaxValue          *float64
	CreatedFrom       *time.Time
	CreatedTo         *time.Time
}

// NewPredicate compiles filters. textFields names the fields the free-text
// search runs over (AdvancedSearchFields or ListSearchFields). Date bounds
// are interpreted in loc: "from" is midnight, "to" is 23:59:59.999.
func NewPredicate(f SearchFilters, textFields []string, loc *time.Location) Predicate {
	if loc == nil {
		loc = time.UTC
	}

	p := Predicate{
		Text:              strings.TrimSpace(f.Search),
		Status:            f.Status,
		Priority:          f.Priority,
		PropertyType:      f.PropertyType,
		PropertyCondition: f.PropertyCondition,
		LeadSource:        strings.TrimSpace(f.LeadSource),
		MinValue:          f.EstimatedValueMin,
		MaxValue:          f.EstimatedValueMax,
	}
	for _, name := range textFields {
		if spec, ok := FieldByName(name); ok {
			p.TextFields = append(p.TextFields, spec)
		}
	}

	if f.CreatedDateFrom != nil {
		y, m, d := f.CreatedDateFrom.Date()
		from := time.Date(y, m, d, 0, 0, 0, 0, loc)
		p.CreatedFrom = &from
	}
	if f.CreatedDateTo != nil {
		y, m, d := f.CreatedDateTo.Date()
		to := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
		p.CreatedTo = &to
	}
	return p
}

// Matches evaluates the predicate against one lead.
func (p Predicate) Matches(l *Lead) bool {
	if p.Text != "" {
		needle := strings.ToLower(p.Text)
		found := false
		for _, f := range p.TextFields {
			if f.Type == FieldText && strings.Contains(strings.ToLower(f.Value(l)), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if p.Status != "" && l.Status != p.Status {
		return false
	}
	if p.Priority != "" && l.Priority != p.Priority {
		return false
	}
	if p.PropertyType != "" && l.PropertyType != p.PropertyType {
		return false
	}
	if p.PropertyCondition != "" && l.PropertyCondition != p.PropertyCondition {
		return false
	}
	if p.LeadSource != "" && !strings.Contains(strings.ToLower(l.LeadSource), strings.ToLower(p.LeadSource)) {
		return false
	}

	if p.MinValue != nil && (l.EstimatedValue == nil || *l.EstimatedValue < *p.MinValue) {
		return false
	}
	if p.MaxValue != nil && (l.EstimatedValue == nil || *l.EstimatedValue > *p.MaxValue) {
		return false
	}

	if p.CreatedFrom != nil && l.CreatedAt.Before(*p.CreatedFrom) {
		return false
	}
	if p.CreatedTo != nil && l.CreatedAt.After(*p.CreatedTo) {
		return false
	}
	return true
}

// Apply adds the predicate's constraints to wb. Column names come from the
// lead schema.
func (p Predicate) Apply(wb *WhereBuilder) {
	wb.AddSearch(p.Text, p.TextFields)
	wb.Add("status", string(p.Status))
	wb.Add("priority", string(p.Priority))
	wb.Add("property_type", string(p.PropertyType))
	wb.Add("property_condition", string(p.PropertyCondition))
	wb.AddContains("lead_source", p.LeadSource)
	if p.MinValue != nil {
		wb.AddCompare("estimated_value", ">=", *p.MinValue)
	}
	if p.MaxValue != nil {
		wb.AddCompare("estimated_value", "<=", *p.MaxValue)
	}
	if p.CreatedFrom != nil {
		wb.AddCompare("created_at", ">=", *p.CreatedFrom)
	}
	if p.CreatedTo != nil {
		wb.AddCompare("created_at", "<=", *p.CreatedTo)
	}
}

// StatisticsFrom assembles Statistics from store aggregates.
func StatisticsFrom(total int64, agg ValueAggregate, byStatus, byPriority map[string]int64) *Statistics {
	st := &Statistics{
		Total:             total,
		ValueCount:        agg.Count,
		AverageValue:      agg.Avg,
		TotalValue:        agg.Sum,
		MinValue:          agg.Min,
		MaxValue:          agg.Max,
		StatusBreakdown:   make(map[Status]int64, len(byStatus)),
		PriorityBreakdown: make(map[Priority]int64, len(byPriority)),
	}
	for k, v := range byStatus {
		st.StatusBreakdown[Status(k)] = v
	}
	for k, v := range byPriority {
		st.PriorityBreakdown[Priority(k)] = v
	}
	return st
}

// AggregateValues computes a ValueAggregate over leads in memory, skipping
// leads without an estimated value.
func AggregateValues(leads []*Lead) ValueAggregate {
	var (
		agg         ValueAggregate
		sum, lo, hi float64
	)
	for _, l := range leads {
		if l.EstimatedValue == nil {
			continue
		}
		v := *l.EstimatedValue
		if agg.Count == 0 || v < lo {
			lo = v
		}
		if agg.Count == 0 || v > hi {
			hi = v
		}
		sum += v
		agg.Count++
	}
	if agg.Count == 0 {
		return agg
	}
	avg := sum / float64(agg.Count)
	agg.Sum, agg.Avg, agg.Min, agg.Max = &sum, &avg, &lo, &hi
	return agg
}
