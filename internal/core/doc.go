// Package core holds the buyer lead domain: the lead model and its
// validation, search predicates, CSV import and export, and the change
// history kept for every lead.
//
// The package has no knowledge of HTTP or SQL. Persistence is reached
// through [LeadStore], which the memstore and database packages implement,
// and callers are identified by an [Identity] built by the auth layer.
//
// # Service
//
// [Service] is the entry point for every operation. Each method takes the
// acting Identity and rejects the zero value with [ErrUnauthenticated].
// Mutations record [LeadHistory] entries in the same store call that saves
// the lead, and report to an optional [Observer].
//
// # Fields
//
// The lead schema is declared once, in fields.go. Each [FieldSpec] carries
// the JSON name, the database column, the CSV header synonyms and whether
// the field is required, and drives parsing, export, free-text search and
// the SQL rendered by [WhereBuilder].
//
// # CSV
//
// [ParseCSV] is deliberately lenient: rows with the wrong column count or
// missing required fields become [RowWarning] values instead of failing the
// file. [GenerateCSV] and [GenerateXLSX] render the fixed [ExportHeaders]
// column order. Imports hold a slot in the [ImportLimiter] for their whole
// batch.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// message carries a code (AUTH, LEAD, VAL, FILE, IMP, DB families) listed in
// error_messages.go. Other packages add their own sentinels with
// [RegisterErrorMessage].
package core
