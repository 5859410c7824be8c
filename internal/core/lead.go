package core

import (
	"bytes"
	"encoding/json"
	"time"
)

// Lead is a prospective property seller.
type Lead struct {
	ID string `json:"id"`

	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zipCode,omitempty"`

	PropertyType      PropertyType      `json:"propertyType" validate:"required,propertytype"`
	PropertyAddress   string            `json:"propertyAddress" validate:"required"`
	PropertyCity      string            `json:"propertyCity" validate:"required"`
	PropertyState     string            `json:"propertyState" validate:"required"`
	PropertyZipCode   string            `json:"propertyZipCode" validate:"required"`
	EstimatedValue    *float64          `json:"estimatedValue" validate:"omitempty,gte=0"`
	PropertyCondition PropertyCondition `json:"propertyCondition,omitempty" validate:"omitempty,propertycondition"`

	DesiredTimeframe       string   `json:"desiredTimeframe,omitempty"`
	MotivationForSelling   string   `json:"motivationForSelling,omitempty"`
	CurrentMortgageBalance *float64 `json:"currentMortgageBalance" validate:"omitempty,gte=0"`
	AdditionalNotes        string   `json:"additionalNotes,omitempty"`
	LeadSource             string   `json:"leadSource,omitempty"`

	Status   Status   `json:"status" validate:"required,status"`
	Priority Priority `json:"priority" validate:"required,priority"`

	CreatedByID string    `json:"createdById"`
	UpdatedByID string    `json:"updatedById,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// CreatedBy is filled by stores that join the creating user.
	CreatedBy *UserRef `json:"createdBy,omitempty"`
}

// UserRef is the public view of a user attached to a lead.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// DisplayName prefers the name and falls back to the email.
func (u *UserRef) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Identity is a verified caller. Every service operation takes one explicitly.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// LeadInput is the payload for creating a lead, from a form or a CSV row.
// Category fields are free text and are normalized on conversion.
type LeadInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`

	PropertyType      string   `json:"propertyType"`
	PropertyAddress   string   `json:"propertyAddress"`
	PropertyCity      string   `json:"propertyCity"`
	PropertyState     string   `json:"propertyState"`
	PropertyZipCode   string   `json:"propertyZipCode"`
	EstimatedValue    *float64 `json:"estimatedValue"`
	PropertyCondition string   `json:"propertyCondition"`

	DesiredTimeframe       string   `json:"desiredTimeframe"`
	MotivationForSelling   string   `json:"motivationForSelling"`
	CurrentMortgageBalance *float64 `json:"currentMortgageBalance"`
	AdditionalNotes        string   `json:"additionalNotes"`
	LeadSource             string   `json:"leadSource"`

	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// toLead applies defaults (NEW, MEDIUM) and category normalization.
func (in LeadInput) toLead() *Lead {
	l := &Lead{
		FirstName:              in.FirstName,
		LastName:               in.LastName,
		Email:                  in.Email,
		Phone:                  in.Phone,
		Address:                in.Address,
		City:                   in.City,
		State:                  in.State,
		ZipCode:                in.ZipCode,
		PropertyType:           PropertyType(NormalizeEnum(in.PropertyType)),
		PropertyAddress:        in.PropertyAddress,
		PropertyCity:           in.PropertyCity,
		PropertyState:          in.PropertyState,
		PropertyZipCode:        in.PropertyZipCode,
		EstimatedValue:         in.EstimatedValue,
		PropertyCondition:      PropertyCondition(NormalizeEnum(in.PropertyCondition)),
		DesiredTimeframe:       in.DesiredTimeframe,
		MotivationForSelling:   in.MotivationForSelling,
		CurrentMortgageBalance: in.CurrentMortgageBalance,
		AdditionalNotes:        in.AdditionalNotes,
		LeadSource:             in.LeadSource,
		Status:                 Status(NormalizeEnum(in.Status)),
		Priority:               Priority(NormalizeEnum(in.Priority)),
	}
	if l.Status == "" {
		l.Status = StatusNew
	}
	if l.Priority == "" {
		l.Priority = PriorityMedium
	}
	return l
}

// OptionalFloat is a patchable number that tells an absent key apart from
// an explicit null. Set is false when the key was absent; a set value with
// a nil Value clears the field.
type OptionalFloat struct {
	Set   bool
	Value *float64
}

// SetFloat returns an OptionalFloat that sets the field to v.
func SetFloat(v float64) OptionalFloat { return OptionalFloat{Set: true, Value: &v} }

// ClearFloat returns an OptionalFloat that clears the field.
func ClearFloat() OptionalFloat { return OptionalFloat{Set: true} }

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o OptionalFloat) apply(dst **float64) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*dst = nil
		return
	}
	v := *o.Value
	*dst = &v
}

// LeadPatch is a partial update. Nil fields are left unchanged, as are
// unset OptionalFloat fields.
type LeadPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	ZipCode   *string `json:"zipCode"`

	PropertyType      *string       `json:"propertyType"`
	PropertyAddress   *string       `json:"propertyAddress"`
	PropertyCity      *string       `json:"propertyCity"`
	PropertyState     *string       `json:"propertyState"`
	PropertyZipCode   *string       `json:"propertyZipCode"`
	EstimatedValue    OptionalFloat `json:"estimatedValue"`
	PropertyCondition *string       `json:"propertyCondition"`

	DesiredTimeframe       *string       `json:"desiredTimeframe"`
	MotivationForSelling   *string       `json:"motivationForSelling"`
	CurrentMortgageBalance OptionalFloat `json:"currentMortgageBalance"`
	AdditionalNotes        *string       `json:"additionalNotes"`
	LeadSource             *string       `json:"leadSource"`

	Status   *string `json:"status"`
	Priority *string `json:"priority"`
}

// apply returns a copy of l with the patch applied.
func (p LeadPatch) apply(l Lead) Lead {
	setStr := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	setStr(&l.FirstName, p.FirstName)
	setStr(&l.LastName, p.LastName)
	setStr(&l.Email, p.Email)
	setStr(&l.Phone, p.Phone)
	setStr(&l.Address, p.Address)
	setStr(&l.City, p.City)
	setStr(&l.State, p.State)
	setStr(&l.ZipCode, p.ZipCode)
	setStr(&l.PropertyAddress, p.PropertyAddress)
	setStr(&l.PropertyCity, p.PropertyCity)
	setStr(&l.PropertyState, p.PropertyState)
	setStr(&l.PropertyZipCode, p.PropertyZipCode)
	setStr(&l.DesiredTimeframe, p.DesiredTimeframe)
	setStr(&l.MotivationForSelling, p.MotivationForSelling)
	setStr(&l.AdditionalNotes, p.AdditionalNotes)
	setStr(&l.LeadSource, p.LeadSource)

	if p.PropertyType != nil {
		l.PropertyType = PropertyType(NormalizeEnum(*p.PropertyType))
	}
	if p.PropertyCondition != nil {
		l.PropertyCondition = PropertyCondition(NormalizeEnum(*p.PropertyCondition))
	}
	if p.Status != nil {
		l.Status = Status(NormalizeEnum(*p.Status))
	}
	if p.Priority != nil {
		l.Priority = Priority(NormalizeEnum(*p.Priority))
	}
	p.EstimatedValue.apply(&l.EstimatedValue)
	p.CurrentMortgageBalance.apply(&l.CurrentMortgageBalance)
	return l
}
