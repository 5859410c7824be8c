package core

import (
	"strconv"
	"strings"
)

// WhereBuilder accumulates AND-ed SQL conditions with positional ($n)
// arguments. Empty values are skipped so optional filters can be added
// unconditionally.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

func (wb *WhereBuilder) placeholder(v any) string {
	wb.args = append(wb.args, v)
	p := "$" + strconv.Itoa(wb.argIndex)
	wb.argIndex++
	return p
}

// Add appends "col = $n". Empty strings are ignored.
func (wb *WhereBuilder) Add(col string, val string) {
	if val == "" {
		return
	}
	wb.conditions = append(wb.conditions, quoteIdentifier(col)+" = "+wb.placeholder(val))
}

// AddCompare appends "col <op> $n" for a comparison operator such as >= or <=.
func (wb *WhereBuilder) AddCompare(col, op string, val any) {
	wb.conditions = append(wb.conditions, quoteIdentifier(col)+" "+op+" "+wb.placeholder(val))
}

// AddContains appends a case-insensitive substring match on one column.
func (wb *WhereBuilder) AddContains(col, substr string) {
	if substr == "" {
		return
	}
	wb.conditions = append(wb.conditions, quoteIdentifier(col)+" ILIKE "+wb.placeholder(likePattern(substr)))
}

// AddSearch appends ("a" ILIKE $n OR "b" ILIKE $n ...) over the text
// columns, sharing a single argument. Non-text fields are skipped.
func (wb *WhereBuilder) AddSearch(query string, fields []*FieldSpec) {
	if query == "" {
		return
	}

	var cols []string
	for _, f := range fields {
		if f.Type == FieldText {
			cols = append(cols, quoteIdentifier(f.DBColumn))
		}
	}
	if len(cols) == 0 {
		return
	}

	p := wb.placeholder(likePattern(query))
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE " + p
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// Build returns " WHERE ..." and its arguments, or "" and nil when no
// condition was added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// NextArgIndex is the number of the next placeholder, for appending
// LIMIT/OFFSET after Build.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// likePattern wraps s in % after escaping LIKE metacharacters, so user
// input is always a literal substring.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// quoteIdentifier quotes a column name for safe interpolation.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
