package business

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dashboard/core"
)

// Milestone statuses
const (
	StatusPending  = "pending"
	StatusReceived = "received"
)

var MilestoneStatuses = []string{StatusPending, StatusReceived}

type Entity struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	ContactPerson null.String `json:"contact_person"`
	ContactEmail  null.String `json:"contact_email"`
	ContractValue float64     `json:"contract_value"`
	StartDate     null.Time   `json:"start_date"`
	EndDate       null.Time   `json:"end_date"`
	CreatedAt     time.Time   `json:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at"` // UTC
}

type PaymentMilestone struct {
	ID         string      `json:"id"`
	EntityID   string      `json:"entity_id"`
	Title      string      `json:"title"`
	Amount     float64     `json:"amount"`
	DueDate    time.Time   `json:"due_date"`
	Status     string      `json:"status"`
	ReceivedOn null.Time   `json:"received_on"`
	Remarks    null.String `json:"remarks"`
	CreatedAt  time.Time   `json:"created_at"` // UTC
	UpdatedAt  time.Time   `json:"updated_at"` // UTC
}

// IsReceived reports whether the milestone has been paid.
func (m PaymentMilestone) IsReceived() bool { return m.Status == StatusReceived }

// NewEntity contains information needed to create a new Entity.
type NewEntity struct {
	Name          string  `json:"name" validate:"required"`
	Category      string  `json:"category"`
	ContactPerson string  `json:"contact_person"`
	ContactEmail  string  `json:"contact_email" validate:"omitempty,email"`
	ContractValue float64 `json:"contract_value" validate:"gte=0"`
	StartDate     string  `json:"start_date" validate:"omitempty,timestamp"`
	EndDate       string  `json:"end_date" validate:"omitempty,timestamp"`

	loc *time.Location
}

func (ne *NewEntity) Validate(validate *validator.Validate, loc *time.Location) error {
	ne.Name = core.CleanString(ne.Name)
	ne.Category = core.CleanString(ne.Category, true /* lower */)
	ne.ContactPerson = core.CleanString(ne.ContactPerson)
	ne.ContactEmail = core.CleanString(ne.ContactEmail, true /* lower */)
	ne.loc = loc
	return validate.Struct(ne)
}

// UpdateEntity defines what information may be provided to modify an existing Entity.
// Empty or missing fields keep their current value,
// except StartDate and EndDate: an empty string clears them.
type UpdateEntity struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	ContactPerson *string  `json:"contact_person"`
	ContactEmail  *string  `json:"contact_email" validate:"omitempty,email"`
	ContractValue *float64 `json:"contract_value" validate:"omitempty,gte=0"`
	StartDate     *string  `json:"start_date" validate:"omitempty,timestamp"`
	EndDate       *string  `json:"end_date" validate:"omitempty,timestamp"`

	loc *time.Location
}

func (ue *UpdateEntity) Validate(orig Entity, validate *validator.Validate, loc *time.Location) error {
	if name := core.CleanString(ue.Name); name != "" {
		ue.Name = name
	} else {
		ue.Name = orig.Name
	}
	if category := core.CleanString(ue.Category, true /* lower */); category != "" {
		ue.Category = category
	} else {
		ue.Category = orig.Category
	}
	if ue.ContactEmail != nil {
		email := core.CleanString(*ue.ContactEmail, true /* lower */)
		ue.ContactEmail = &email
	}
	ue.StartDate = resolveDate(ue.StartDate, orig.StartDate)
	ue.EndDate = resolveDate(ue.EndDate, orig.EndDate)
	ue.loc = loc
	return validate.Struct(ue)
}

// resolveDate returns the date to store: orig when date is nil, none when it is empty.
func resolveDate(date *string, orig null.Time) *string {
	if date == nil {
		if !orig.Valid {
			return nil
		}
		s := orig.Time.Format(time.RFC3339)
		return &s
	}
	s := core.CleanString(*date)
	if s == "" {
		return nil
	}
	return &s
}

// NewMilestone contains information needed to create a new PaymentMilestone.
type NewMilestone struct {
	Title      string  `json:"title" validate:"required"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	DueDate    string  `json:"due_date" validate:"required,timestamp"`
	Status     string  `json:"status" validate:"omitempty,milestonestatus"`
	ReceivedOn string  `json:"received_on" validate:"omitempty,timestamp"`
	Remarks    string  `json:"remarks"`
}

func (nm *NewMilestone) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Status = core.CleanString(nm.Status, true /* lower */)
	if nm.Status == "" {
		nm.Status = StatusPending
	}
	nm.Remarks = core.CleanString(nm.Remarks)
	return validate.Struct(nm)
}

// UpdateMilestone defines what information may be provided to modify an existing PaymentMilestone.
type UpdateMilestone struct {
	Title      string   `json:"title"`
	Amount     *float64 `json:"amount" validate:"omitempty,gte=0"`
	DueDate    string   `json:"due_date" validate:"omitempty,timestamp"`
	Status     string   `json:"status" validate:"omitempty,milestonestatus"`
	ReceivedOn *string  `json:"received_on" validate:"omitempty,timestamp"`
	Remarks    *string  `json:"remarks"`
}

func (um *UpdateMilestone) Validate(orig PaymentMilestone, validate *validator.Validate) error {
	if title := core.CleanString(um.Title); title != "" {
		um.Title = title
	} else {
		um.Title = orig.Title
	}
	if status := core.CleanString(um.Status, true /* lower */); status != "" {
		um.Status = status
	} else {
		um.Status = orig.Status
	}
	return validate.Struct(um)
}

type EntityFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
}

func (f *EntityFilter) IsEmpty() bool { return f.Search == "" && f.Category == "" }

func (f *EntityFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Category = core.CleanString(f.Category, true /* lower */)
}

type MilestoneFilter struct {
	EntityIDs []string  `query:"entity"`
	Statuses  []string  `query:"status"`
	DueFrom   time.Time
	DueTo     time.Time
}

func (f *MilestoneFilter) IsEmpty() bool {
	return f.EntityIDs == nil && f.Statuses == nil && f.DueFrom.IsZero() && f.DueTo.IsZero()
}

// Match reports whether m satisfies every set field of the filter.
func (f *MilestoneFilter) Match(m PaymentMilestone) bool {
	if f.EntityIDs != nil && !contains(f.EntityIDs, m.EntityID) {
		return false
	}
	if f.Statuses != nil && !contains(f.Statuses, m.Status) {
		return false
	}
	if !f.DueFrom.IsZero() && m.DueDate.Before(f.DueFrom) {
		return false
	}
	if !f.DueTo.IsZero() && !m.DueDate.Before(f.DueTo) {
		return false
	}
	return true
}

func contains(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}
