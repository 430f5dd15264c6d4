package calendar

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/layout"
)

// Event types; they only drive color-coding.
const (
	TypeEvent    = "event"
	TypeTraining = "training"
	TypeMeeting  = "meeting"
	TypeOther    = "other"
)

// Executive director attendance statuses
const (
	AttendanceAttending      = "attending"
	AttendanceNotAttending   = "not_attending"
	AttendanceRepresentative = "sending_representative"
)

var (
	EventTypes         = []string{TypeEvent, TypeTraining, TypeMeeting, TypeOther}
	AttendanceStatuses = []string{AttendanceAttending, AttendanceNotAttending, AttendanceRepresentative}
)

type Event struct {
	ID                  string      `json:"id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	StartTime           time.Time   `json:"start_time"`
	EndTime             time.Time   `json:"end_time"`
	Venue               null.String `json:"venue"`
	MeetingLink         null.String `json:"meeting_link"`
	EventType           string      `json:"event_type"`
	ReminderMinutes     int         `json:"reminder_minutes"`
	EDAttendanceStatus  null.String `json:"ed_attendance_status"`
	EDAttendanceRemarks null.String `json:"ed_attendance_remarks"`
	CreatedBy           string      `json:"created_by"`
	CreatedAt           time.Time   `json:"created_at"` // UTC
	UpdatedAt           time.Time   `json:"updated_at"` // UTC
}

// Span returns the event as a layout.Span.
func (e Event) Span() layout.Span {
	return layout.Span{ID: e.ID, Start: e.StartTime, End: e.EndTime}
}

func spans(events []Event, loc *time.Location) []layout.Span {
	out := make([]layout.Span, len(events))
	for i, e := range events {
		s := e.Span()
		s.Start, s.End = s.Start.In(loc), s.End.In(loc)
		out[i] = s
	}
	return out
}

// NewEvent contains information needed to create a new Event.
// Timestamps are ISO-ish strings; zoneless values are in the calendar time zone.
type NewEvent struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	StartTime       string `json:"start_time" validate:"required,timestamp"`
	EndTime         string `json:"end_time" validate:"required,timestamp"`
	Venue           string `json:"venue"`
	MeetingLink     string `json:"meeting_link" validate:"omitempty,url"`
	EventType       string `json:"event_type" validate:"eventtype"`
	ReminderMinutes int    `json:"reminder_minutes" validate:"gte=0"`

	loc *time.Location
}

func (ne *NewEvent) Validate(validate *validator.Validate, loc *time.Location) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Description = core.CleanString(ne.Description)
	ne.Venue = core.CleanString(ne.Venue)
	ne.MeetingLink = core.CleanString(ne.MeetingLink)
	ne.EventType = core.CleanString(ne.EventType, true /* lower */)
	if ne.EventType == "" {
		ne.EventType = TypeEvent
	}
	ne.loc = loc
	return validate.Struct(ne)
}

// UpdateEvent defines what information may be provided to modify an existing Event.
// Empty or missing fields keep their current value.
type UpdateEvent struct {
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	StartTime       string  `json:"start_time" validate:"omitempty,timestamp"`
	EndTime         string  `json:"end_time" validate:"omitempty,timestamp"`
	Venue           *string `json:"venue"`
	MeetingLink     *string `json:"meeting_link" validate:"omitempty,url"`
	EventType       string  `json:"event_type" validate:"omitempty,eventtype"`
	ReminderMinutes *int    `json:"reminder_minutes" validate:"omitempty,gte=0"`

	loc *time.Location
}

func (ue *UpdateEvent) Validate(orig Event, validate *validator.Validate, loc *time.Location) error {
	if title := core.CleanString(ue.Title); title != "" {
		ue.Title = title
	} else {
		ue.Title = orig.Title
	}
	if ue.StartTime == "" {
		ue.StartTime = orig.StartTime.Format(time.RFC3339)
	}
	if ue.EndTime == "" {
		ue.EndTime = orig.EndTime.Format(time.RFC3339)
	}
	if ue.MeetingLink != nil {
		link := core.CleanString(*ue.MeetingLink)
		ue.MeetingLink = &link
	}
	if eventType := core.CleanString(ue.EventType, true /* lower */); eventType != "" {
		ue.EventType = eventType
	} else {
		ue.EventType = orig.EventType
	}
	ue.loc = loc
	return validate.Struct(ue)
}

// AttendanceUpdate is the executive director's answer to an event.
type AttendanceUpdate struct {
	Status  string `json:"ed_attendance_status" validate:"required,attendance"`
	Remarks string `json:"ed_attendance_remarks"`
}

func (au *AttendanceUpdate) Validate(validate *validator.Validate) error {
	au.Status = core.CleanString(au.Status, true /* lower */)
	au.Remarks = core.CleanString(au.Remarks)
	return validate.Struct(au)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	EventTypes  []string  `query:"event_type"`
	Attendances []string  `query:"ed_attendance_status"`
	CreatedBy   string    `query:"created_by"`
	From        time.Time // events ending at or after From
	To          time.Time // events starting before To
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.EventTypes == nil && qf.Attendances == nil && qf.CreatedBy == "" &&
		qf.From.IsZero() && qf.To.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.CreatedBy = core.CleanString(qf.CreatedBy, true /* lower */)
}
