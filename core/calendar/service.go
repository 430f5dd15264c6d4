package calendar

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/layout"
)

var (
	// errors
	ErrNotFound = errors.New("event not found")

	invitationTemplate = "event_invitation"
	invitationLayout   = "Mon 02 Jan 2006, 15:04"
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, evt Event) (Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		// FilterEvents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Event.Title, Event.Description or Event.Venue.
		// Events are ordered by start time unless ordering is given.
		FilterEvents(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Event, error)
		UpdateEvent(ctx context.Context, evt Event) (Event, error)
		DeleteEventsByID(ctx context.Context, ids ...string) (int, error)
	}

	// Settings are the calendar display settings.
	Settings struct {
		Location     *time.Location
		Window       layout.Window
		WeekStart    time.Weekday
		ShowAdjacent bool
		EDEmail      string
	}

	Service struct {
		repo     Repository
		mailSvc  core.EmailService
		settings Settings
	}

	// View is a calendar layout along with the events it places.
	View[T any] struct {
		Layout T       `json:"layout"`
		Events []Event `json:"events"`
	}
)

// NewSettings reads the calendar settings from the config.
func NewSettings(conf *core.Config) Settings {
	cc := conf.Calendar
	loc := cc.Location
	if loc == nil {
		loc = time.UTC
	}
	return Settings{
		Location: loc,
		Window: layout.Window{
			StartHour:   cc.DayStartHour,
			EndHour:     cc.DayEndHour,
			MinDuration: cc.MinDurationHours,
			Gap:         cc.LaneGapPercent,
		}.Valid(),
		WeekStart:    cc.WeekStart,
		ShowAdjacent: cc.ShowAdjacentDays,
		EDEmail:      cc.EDEmail,
	}
}

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, settings: NewSettings(conf)}
}

func (svc *Service) Settings() Settings { return svc.settings }

func (svc *Service) Location() *time.Location { return svc.settings.Location }

func (svc *Service) Create(ctx context.Context, ne NewEvent, createdBy string) (Event, error) {
	start, end, err := parseTimes(ne.StartTime, ne.EndTime, svc.settings.Location)
	if err != nil {
		return Event{}, err
	}

	now := time.Now().UTC()
	evt := Event{
		ID:              uuid.New().String(),
		Title:           ne.Title,
		Description:     ne.Description,
		StartTime:       start.UTC(),
		EndTime:         end.UTC(),
		Venue:           nullString(ne.Venue),
		MeetingLink:     nullString(ne.MeetingLink),
		EventType:       ne.EventType,
		ReminderMinutes: ne.ReminderMinutes,
		CreatedBy:       createdBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	evt, err = svc.repo.CreateEvent(ctx, evt)
	if err != nil {
		return Event{}, errors.Wrap(err, "creating event")
	}

	svc.sendInvitation(evt)
	return evt, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	return svc.repo.FilterEvents(ctx, *filter, ordering...)
}

func (svc *Service) Update(ctx context.Context, orig Event, ue UpdateEvent) (Event, error) {
	start, end, err := parseTimes(ue.StartTime, ue.EndTime, svc.settings.Location)
	if err != nil {
		return Event{}, err
	}

	evt := orig
	evt.Title = ue.Title
	evt.StartTime = start.UTC()
	evt.EndTime = end.UTC()
	evt.EventType = ue.EventType
	if ue.Description != nil {
		evt.Description = core.CleanString(*ue.Description)
	}
	if ue.Venue != nil {
		evt.Venue = nullString(*ue.Venue)
	}
	if ue.MeetingLink != nil {
		evt.MeetingLink = nullString(*ue.MeetingLink)
	}
	if ue.ReminderMinutes != nil {
		evt.ReminderMinutes = *ue.ReminderMinutes
	}
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

// UpdateAttendance records the executive director's attendance, independently of the event details.
func (svc *Service) UpdateAttendance(ctx context.Context, orig Event, au AttendanceUpdate) (Event, error) {
	evt := orig
	evt.EDAttendanceStatus = null.StringFrom(au.Status)
	evt.EDAttendanceRemarks = nullString(au.Remarks)
	evt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, evt)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if _, err := svc.repo.DeleteEventsByID(ctx, ids...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return nil
}

// Views

// eventsIn fetches the events intersecting r.
func (svc *Service) eventsIn(ctx context.Context, r layout.Range) ([]Event, error) {
	events, err := svc.repo.FilterEvents(ctx, QueryFilter{From: r.Start, To: r.End})
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return events, nil
}

// Day lays out the events of the day holding date, in the calendar time zone.
func (svc *Service) Day(ctx context.Context, date time.Time) (View[layout.DayView], error) {
	date = date.In(svc.settings.Location)
	events, err := svc.eventsIn(ctx, layout.DayRange(date))
	if err != nil {
		return View[layout.DayView]{}, err
	}
	day := layout.Day(spans(events, svc.settings.Location), date, svc.settings.Window)

	ids := make(map[string]bool, len(day.Placements))
	for _, p := range day.Placements {
		ids[p.Span.ID] = true
	}
	return View[layout.DayView]{Layout: day, Events: pick(events, ids)}, nil
}

// Week lays out the events of the week holding date.
func (svc *Service) Week(ctx context.Context, date time.Time) (View[layout.WeekView], error) {
	date = date.In(svc.settings.Location)
	events, err := svc.eventsIn(ctx, layout.WeekRange(date, svc.settings.WeekStart))
	if err != nil {
		return View[layout.WeekView]{}, err
	}
	week := layout.Week(spans(events, svc.settings.Location), date, svc.settings.WeekStart, svc.settings.Window)

	ids := make(map[string]bool)
	for _, d := range week.Days {
		for _, p := range d.Placements {
			ids[p.Span.ID] = true
		}
	}
	return View[layout.WeekView]{Layout: week, Events: pick(events, ids)}, nil
}

// Month lays out the events of the month holding date.
// showAdjacent overrides the configured adjacent days policy when set.
func (svc *Service) Month(ctx context.Context, date time.Time, showAdjacent *bool) (View[layout.MonthView], error) {
	date = date.In(svc.settings.Location)
	opts := layout.MonthOptions{WeekStart: svc.settings.WeekStart, ShowAdjacent: svc.settings.ShowAdjacent}
	if showAdjacent != nil {
		opts.ShowAdjacent = *showAdjacent
	}

	events, err := svc.eventsIn(ctx, layout.MonthGrid(date, opts.WeekStart))
	if err != nil {
		return View[layout.MonthView]{}, err
	}
	month := layout.Month(spans(events, svc.settings.Location), date, opts)

	ids := make(map[string]bool)
	for _, week := range month.Weeks {
		for _, cell := range week {
			for _, b := range cell.Badges {
				ids[b.Span.ID] = true
			}
		}
	}
	return View[layout.MonthView]{Layout: month, Events: pick(events, ids)}, nil
}

func pick(events []Event, ids map[string]bool) []Event {
	picked := make([]Event, 0, len(ids))
	for _, e := range events {
		if ids[e.ID] {
			picked = append(picked, e)
		}
	}
	return picked
}

// Notifications

type invitationData struct {
	ID          string
	Title       string
	EventType   string
	Start       string
	End         string
	Venue       string
	MeetingLink string
	Description string
}

// sendInvitation emails the executive director about a new event.
func (svc *Service) sendInvitation(evt Event) {
	if svc.mailSvc == nil || svc.settings.EDEmail == "" {
		return
	}
	loc := svc.settings.Location
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: "Executive Director", Address: svc.settings.EDEmail}},
		Subject:      fmt.Sprintf("Invitation: %s", evt.Title),
		TemplateName: invitationTemplate,
		TemplateData: invitationData{
			ID:          evt.ID,
			Title:       evt.Title,
			EventType:   evt.EventType,
			Start:       evt.StartTime.In(loc).Format(invitationLayout),
			End:         evt.EndTime.In(loc).Format(invitationLayout),
			Venue:       evt.Venue.String,
			MeetingLink: evt.MeetingLink.String,
			Description: evt.Description,
		},
	})
}

func nullString(s string) null.String {
	s = strings.TrimSpace(s)
	return null.NewString(s, s != "")
}
