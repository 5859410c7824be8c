package core

import "strings"

// Status is the workflow stage of a lead.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusContacted     Status = "CONTACTED"
	StatusQualified     Status = "QUALIFIED"
	StatusProposalSent  Status = "PROPOSAL_SENT"
	StatusNegotiating   Status = "NEGOTIATING"
	StatusUnderContract Status = "UNDER_CONTRACT"
	StatusClosed        Status = "CLOSED"
	StatusLost          Status = "LOST"
	StatusArchived      Status = "ARCHIVED"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{
	StatusNew, StatusContacted, StatusQualified, StatusProposalSent,
	StatusNegotiating, StatusUnderContract, StatusClosed, StatusLost, StatusArchived,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool { return contains(Statuses, s) }

// Priority ranks how urgently a lead should be worked.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool { return contains(Priorities, p) }

// PropertyType is the kind of property the seller holds.
type PropertyType string

const (
	PropertySingleFamily PropertyType = "SINGLE_FAMILY"
	PropertyMultiFamily  PropertyType = "MULTI_FAMILY"
	PropertyCondo        PropertyType = "CONDO"
	PropertyTownhouse    PropertyType = "TOWNHOUSE"
	PropertyLand         PropertyType = "LAND"
	PropertyCommercial   PropertyType = "COMMERCIAL"
	PropertyOther        PropertyType = "OTHER"
)

var PropertyTypes = []PropertyType{
	PropertySingleFamily, PropertyMultiFamily, PropertyCondo, PropertyTownhouse,
	PropertyLand, PropertyCommercial, PropertyOther,
}

func (t PropertyType) Valid() bool { return contains(PropertyTypes, t) }

// PropertyCondition is the seller-reported state of the property.
type PropertyCondition string

const (
	ConditionExcellent   PropertyCondition = "EXCELLENT"
	ConditionGood        PropertyCondition = "GOOD"
	ConditionFair        PropertyCondition = "FAIR"
	ConditionPoor        PropertyCondition = "POOR"
	ConditionNeedsRepair PropertyCondition = "NEEDS_REPAIR"
)

var PropertyConditions = []PropertyCondition{
	ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor, ConditionNeedsRepair,
}

func (c PropertyCondition) Valid() bool { return contains(PropertyConditions, c) }

// HistoryAction classifies a lead history entry.
type HistoryAction string

const (
	ActionCreated       HistoryAction = "CREATED"
	ActionUpdated       HistoryAction = "UPDATED"
	ActionStatusChanged HistoryAction = "STATUS_CHANGED"
	ActionAssigned      HistoryAction = "ASSIGNED"
	ActionNoteAdded     HistoryAction = "NOTE_ADDED"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// NormalizeEnum converts human-entered category text ("single family",
// "Needs Repair") into its stored form ("SINGLE_FAMILY", "NEEDS_REPAIR").
func NormalizeEnum(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	return strings.Join(strings.Fields(v), "_")
}

// HumanizeEnum renders a stored category for people: underscores become spaces.
func HumanizeEnum(v string) string {
	return strings.ReplaceAll(v, "_", " ")
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
