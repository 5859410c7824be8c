package core

import (
	"time"

	"github.com/google/uuid"
)

// LeadHistory is one immutable audit entry for a lead. Entries are only
// ever appended; deleting a lead leaves its history in place.
type LeadHistory struct {
	ID        string        `json:"id"`
	LeadID    string        `json:"leadId"`
	Action    HistoryAction `json:"action"`
	Field     string        `json:"field,omitempty"`
	OldValue  string        `json:"oldValue,omitempty"`
	NewValue  string        `json:"newValue,omitempty"`
	UserID    string        `json:"userId"`
	Timestamp time.Time     `json:"timestamp"`
}

// FieldChange is one difference between two versions of a lead.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

// DiffLeads compares before and after field by field over the lead schema
// and returns the fields whose stringified value changed, in schema order.
func DiffLeads(before, after *Lead) []FieldChange {
	var changes []FieldChange
	for i := range leadFields {
		f := &leadFields[i]
		oldV, newV := f.value(before), f.value(after)
		if oldV != newV {
			changes = append(changes, FieldChange{Field: f.Name, OldValue: oldV, NewValue: newV})
		}
	}
	return changes
}

// historyFor turns changes into history entries. A status change is
// recorded as STATUS_CHANGED, anything else as UPDATED.
func historyFor(leadID, userID string, changes []FieldChange, at time.Time) []LeadHistory {
	out := make([]LeadHistory, 0, len(changes))
	for _, c := range changes {
		action := ActionUpdated
		if c.Field == "status" {
			action = ActionStatusChanged
		}
		out = append(out, LeadHistory{
			ID:        uuid.NewString(),
			LeadID:    leadID,
			Action:    action,
			Field:     c.Field,
			OldValue:  c.OldValue,
			NewValue:  c.NewValue,
			UserID:    userID,
			Timestamp: at,
		})
	}
	return out
}

// createdEntry is the history entry written alongside a new lead.
func createdEntry(l *Lead, userID string) *LeadHistory {
	return &LeadHistory{
		ID:        uuid.NewString(),
		LeadID:    l.ID,
		Action:    ActionCreated,
		Field:     "status",
		NewValue:  string(l.Status),
		UserID:    userID,
		Timestamp: l.CreatedAt,
	}
}

// LeadSummary is the part of a lead an activity feed needs.
type LeadSummary struct {
	FirstName       string
	LastName        string
	PropertyAddress string
	PropertyCity    string
	PropertyState   string
}

// FullName joins first and last name.
func (l *LeadSummary) FullName() string {
	return l.FirstName + " " + l.LastName
}

// Location is the address, city and state joined for display.
func (l *LeadSummary) Location() string {
	return l.PropertyAddress + ", " + l.PropertyCity + ", " + l.PropertyState
}

// ActivityRecord is a history entry joined with its lead. Lead is nil when
// the lead has since been deleted.
type ActivityRecord struct {
	History LeadHistory
	Lead    *LeadSummary
}

// Activity is a rendered feed item.
type Activity struct {
	ID        string        `json:"id"`
	Type      HistoryAction `json:"type"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
}

// ActivityMessage renders a feed line for rec. userName is the display name
// of the acting user and is only used for ASSIGNED entries.
func ActivityMessage(rec ActivityRecord, userName string) string {
	name := "(deleted lead)"
	location := ""
	if l := rec.Lead; l != nil {
		name = l.FullName()
		location = l.Location()
	}

	h := rec.History
	switch h.Action {
	case ActionCreated:
		if location == "" {
			return "New lead: " + name
		}
		return "New lead: " + name + " - " + location
	case ActionStatusChanged:
		return "Status updated: " + name + " - Changed from " + h.OldValue + " to " + h.NewValue
	case ActionUpdated:
		return "Lead updated: " + name + " - " + h.Field + " changed"
	case ActionAssigned:
		return "Lead assigned: " + name + " to " + userName
	case ActionNoteAdded:
		return "Note added to " + name
	default:
		return string(h.Action) + ": " + name
	}
}
