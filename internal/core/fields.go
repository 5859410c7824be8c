package core

import "strconv"

// FieldType describes how a lead field is stored and parsed.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumber
	FieldEnum
)

// FieldSpec describes one editable lead field: its canonical name, its
// column, the CSV header spellings that map to it, and accessors used by
// the parser and the update diff.
type FieldSpec struct {
	Name     string    // canonical name, e.g. "firstName"
	DBColumn string    // column in the leads table
	Type     FieldType // text, number or enum
	Required bool      // must be non-empty on create
	Headers  []string  // accepted CSV headers, lower case

	text  func(*LeadInput) *string
	num   func(*LeadInput) **float64
	value func(*Lead) string
}

// Value returns the stringified value of this field on l.
func (f *FieldSpec) Value(l *Lead) string { return f.value(l) }

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// leadFields is the fixed lead schema, in column order.
var leadFields = []FieldSpec{
	{Name: "firstName", DBColumn: "first_name", Required: true,
		Headers: []string{"first name", "firstname", "first_name"},
		text:    func(in *LeadInput) *string { return &in.FirstName },
		value:   func(l *Lead) string { return l.FirstName }},
	{Name: "lastName", DBColumn: "last_name", Required: true,
		Headers: []string{"last name", "lastname", "last_name"},
		text:    func(in *LeadInput) *string { return &in.LastName },
		value:   func(l *Lead) string { return l.LastName }},
	{Name: "email", DBColumn: "email", Required: true,
		Headers: []string{"email", "email address"},
		text:    func(in *LeadInput) *string { return &in.Email },
		value:   func(l *Lead) string { return l.Email }},
	{Name: "phone", DBColumn: "phone",
		Headers: []string{"phone", "phone number"},
		text:    func(in *LeadInput) *string { return &in.Phone },
		value:   func(l *Lead) string { return l.Phone }},
	{Name: "address", DBColumn: "address",
		Headers: []string{"address"},
		text:    func(in *LeadInput) *string { return &in.Address },
		value:   func(l *Lead) string { return l.Address }},
	{Name: "city", DBColumn: "city",
		Headers: []string{"city"},
		text:    func(in *LeadInput) *string { return &in.City },
		value:   func(l *Lead) string { return l.City }},
	{Name: "state", DBColumn: "state",
		Headers: []string{"state"},
		text:    func(in *LeadInput) *string { return &in.State },
		value:   func(l *Lead) string { return l.State }},
	{Name: "zipCode", DBColumn: "zip_code",
		Headers: []string{"zip", "zip code", "zipcode"},
		text:    func(in *LeadInput) *string { return &in.ZipCode },
		value:   func(l *Lead) string { return l.ZipCode }},
	{Name: "propertyType", DBColumn: "property_type", Type: FieldEnum, Required: true,
		Headers: []string{"property type", "propertytype", "property_type"},
		text:    func(in *LeadInput) *string { return &in.PropertyType },
		value:   func(l *Lead) string { return string(l.PropertyType) }},
	{Name: "propertyAddress", DBColumn: "property_address", Required: true,
		Headers: []string{"property address", "propertyaddress", "property_address"},
		text:    func(in *LeadInput) *string { return &in.PropertyAddress },
		value:   func(l *Lead) string { return l.PropertyAddress }},
	{Name: "propertyCity", DBColumn: "property_city", Required: true,
		Headers: []string{"property city", "propertycity", "property_city"},
		text:    func(in *LeadInput) *string { return &in.PropertyCity },
		value:   func(l *Lead) string { return l.PropertyCity }},
	{Name: "propertyState", DBColumn: "property_state", Required: true,
		Headers: []string{"property state", "propertystate", "property_state"},
		text:    func(in *LeadInput) *string { return &in.PropertyState },
		value:   func(l *Lead) string { return l.PropertyState }},
	{Name: "propertyZipCode", DBColumn: "property_zip_code", Required: true,
		Headers: []string{"property zip", "property zip code", "property zipcode", "propertyzipcode", "property_zip_code"},
		text:    func(in *LeadInput) *string { return &in.PropertyZipCode },
		value:   func(l *Lead) string { return l.PropertyZipCode }},
	{Name: "estimatedValue", DBColumn: "estimated_value", Type: FieldNumber,
		Headers: []string{"estimated value", "estimatedvalue", "estimated_value", "value"},
		num:     func(in *LeadInput) **float64 { return &in.EstimatedValue },
		value:   func(l *Lead) string { return formatOptional(l.EstimatedValue) }},
	{Name: "desiredTimeframe", DBColumn: "desired_timeframe",
		Headers: []string{"desired timeframe", "timeframe", "desired_timeframe"},
		text:    func(in *LeadInput) *string { return &in.DesiredTimeframe },
		value:   func(l *Lead) string { return l.DesiredTimeframe }},
	{Name: "motivationForSelling", DBColumn: "motivation_for_selling",
		Headers: []string{"motivation", "motivation for selling", "motivationforselling", "motivation_for_selling"},
		text:    func(in *LeadInput) *string { return &in.MotivationForSelling },
		value:   func(l *Lead) string { return l.MotivationForSelling }},
	{Name: "currentMortgageBalance", DBColumn: "current_mortgage_balance", Type: FieldNumber,
		Headers: []string{"mortgage balance", "current mortgage balance", "mortgagebalance", "current_mortgage_balance"},
		num:     func(in *LeadInput) **float64 { return &in.CurrentMortgageBalance },
		value:   func(l *Lead) string { return formatOptional(l.CurrentMortgageBalance) }},
	{Name: "propertyCondition", DBColumn: "property_condition", Type: FieldEnum,
		Headers: []string{"property condition", "condition", "propertycondition", "property_condition"},
		text:    func(in *LeadInput) *string { return &in.PropertyCondition },
		value:   func(l *Lead) string { return string(l.PropertyCondition) }},
	{Name: "additionalNotes", DBColumn: "additional_notes",
		Headers: []string{"notes", "additional notes", "additionalnotes", "additional_notes"},
		text:    func(in *LeadInput) *string { return &in.AdditionalNotes },
		value:   func(l *Lead) string { return l.AdditionalNotes }},
	{Name: "leadSource", DBColumn: "lead_source",
		Headers: []string{"lead source", "source", "leadsource", "lead_source"},
		text:    func(in *LeadInput) *string { return &in.LeadSource },
		value:   func(l *Lead) string { return l.LeadSource }},
	{Name: "status", DBColumn: "status", Type: FieldEnum,
		Headers: []string{"status"},
		text:    func(in *LeadInput) *string { return &in.Status },
		value:   func(l *Lead) string { return string(l.Status) }},
	{Name: "priority", DBColumn: "priority", Type: FieldEnum,
		Headers: []string{"priority"},
		text:    func(in *LeadInput) *string { return &in.Priority },
		value:   func(l *Lead) string { return string(l.Priority) }},
}

var (
	fieldsByName   = make(map[string]*FieldSpec, len(leadFields))
	fieldsByHeader = make(map[string]*FieldSpec)
)

func init() {
	for i := range leadFields {
		f := &leadFields[i]
		fieldsByName[f.Name] = f
		for _, h := range f.Headers {
			fieldsByHeader[h] = f
		}
	}
}

// FieldByName looks up a field by its canonical name.
func FieldByName(name string) (*FieldSpec, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// FieldForHeader maps a CSV header to a field. The header is compared
// case-insensitively after trimming; unknown headers return false.
func FieldForHeader(header string) (*FieldSpec, bool) {
	f, ok := fieldsByHeader[normalizeHeader(header)]
	return f, ok
}

// Text fields matched by free-text search.
var (
	// AdvancedSearchFields is used by the search endpoint.
	AdvancedSearchFields = []string{
		"firstName", "lastName", "email", "phone",
		"propertyAddress", "propertyCity", "motivationForSelling", "additionalNotes",
	}

	// ListSearchFields is the narrower set used by listing and export.
	ListSearchFields = []string{"firstName", "lastName", "email", "propertyAddress"}
)
