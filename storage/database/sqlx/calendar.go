package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/calendar"
)

const eventColumns = `id, title, description, start_time, end_time, venue, meeting_link, event_type, reminder_minutes,
	ed_attendance_status, ed_attendance_remarks, created_by, created_at, updated_at`

var eventOrderings = map[string]string{
	"title":      "LOWER(title)",
	"start_time": "start_time",
	"end_time":   "end_time",
	"event_type": "event_type",
	"created_at": "created_at",
}

type eventRow struct {
	ID                  string      `db:"id"`
	Title               string      `db:"title"`
	Description         string      `db:"description"`
	StartTime           time.Time   `db:"start_time"`
	EndTime             time.Time   `db:"end_time"`
	Venue               null.String `db:"venue"`
	MeetingLink         null.String `db:"meeting_link"`
	EventType           string      `db:"event_type"`
	ReminderMinutes     int         `db:"reminder_minutes"`
	EDAttendanceStatus  null.String `db:"ed_attendance_status"`
	EDAttendanceRemarks null.String `db:"ed_attendance_remarks"`
	CreatedBy           string      `db:"created_by"`
	CreatedAt           time.Time   `db:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at"`
}

func newEventRow(evt calendar.Event) eventRow {
	return eventRow{
		ID:                  evt.ID,
		Title:               evt.Title,
		Description:         evt.Description,
		StartTime:           evt.StartTime.UTC(),
		EndTime:             evt.EndTime.UTC(),
		Venue:               evt.Venue,
		MeetingLink:         evt.MeetingLink,
		EventType:           evt.EventType,
		ReminderMinutes:     evt.ReminderMinutes,
		EDAttendanceStatus:  evt.EDAttendanceStatus,
		EDAttendanceRemarks: evt.EDAttendanceRemarks,
		CreatedBy:           evt.CreatedBy,
		CreatedAt:           evt.CreatedAt.UTC(),
		UpdatedAt:           evt.UpdatedAt.UTC(),
	}
}

func (row eventRow) event() calendar.Event {
	return calendar.Event{
		ID:                  row.ID,
		Title:               row.Title,
		Description:         row.Description,
		StartTime:           row.StartTime.UTC(),
		EndTime:             row.EndTime.UTC(),
		Venue:               row.Venue,
		MeetingLink:         row.MeetingLink,
		EventType:           row.EventType,
		ReminderMinutes:     row.ReminderMinutes,
		EDAttendanceStatus:  row.EDAttendanceStatus,
		EDAttendanceRemarks: row.EDAttendanceRemarks,
		CreatedBy:           row.CreatedBy,
		CreatedAt:           row.CreatedAt.UTC(),
		UpdatedAt:           row.UpdatedAt.UTC(),
	}
}

type eventRepository struct {
	db *sqlx.DB
}

var _ calendar.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *sqlx.DB) calendar.Repository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, evt calendar.Event) (calendar.Event, error) {
	q := `INSERT INTO event (` + eventColumns + `) VALUES (
		:id, :title, :description, :start_time, :end_time, :venue, :meeting_link, :event_type, :reminder_minutes,
		:ed_attendance_status, :ed_attendance_remarks, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newEventRow(evt)); err != nil {
		return calendar.Event{}, errors.Wrap(err, "inserting event")
	}
	return repo.GetEventByID(ctx, evt.ID)
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string) (calendar.Event, error) {
	var row eventRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+eventColumns+` FROM event WHERE id = $1`, id); err != nil {
		return calendar.Event{}, trapNoRowsErr(err, calendar.ErrNotFound, "getting event")
	}
	return row.event(), nil
}

func (repo *eventRepository) FilterEvents(
	ctx context.Context,
	filter calendar.QueryFilter,
	ordering ...core.DBOrdering,
) ([]calendar.Event, error) {
	var cond conditions
	if filter.Search != "" {
		val := likePattern(filter.Search)
		cond.add("title ILIKE ? OR description ILIKE ? OR venue ILIKE ?", val, val, val)
	}
	if filter.EventTypes != nil {
		cond.add("event_type = ANY(?)", pq.Array(filter.EventTypes))
	}
	if filter.Attendances != nil {
		cond.add("ed_attendance_status = ANY(?)", pq.Array(filter.Attendances))
	}
	if filter.CreatedBy != "" {
		cond.add("created_by = ?", filter.CreatedBy)
	}
	if !filter.From.IsZero() {
		cond.add("end_time >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		cond.add("start_time < ?", filter.To.UTC())
	}

	rows := make([]eventRow, 0)
	q := `SELECT ` + eventColumns + ` FROM event` + cond.where() +
		` ORDER BY ` + core.OrderBy(ordering, eventOrderings, "start_time ASC, end_time ASC, id ASC")
	if err := repo.db.SelectContext(ctx, &rows, q, cond.args...); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}

	events := make([]calendar.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.event())
	}
	return events, nil
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, evt calendar.Event) (calendar.Event, error) {
	q := `UPDATE event SET
		title = :title, description = :description, start_time = :start_time, end_time = :end_time,
		venue = :venue, meeting_link = :meeting_link, event_type = :event_type, reminder_minutes = :reminder_minutes,
		ed_attendance_status = :ed_attendance_status, ed_attendance_remarks = :ed_attendance_remarks,
		updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newEventRow(evt))
	if err != nil {
		return calendar.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return calendar.Event{}, calendar.ErrNotFound
	}
	return repo.GetEventByID(ctx, evt.ID)
}

func (repo *eventRepository) DeleteEventsByID(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM event WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting events")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted events")
	}
	return int(n), nil
}
