package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/dashboard/core"
	"github.com/trezcool/dashboard/core/calendar"
)

var eventComparators = map[string]comparator[calendar.Event]{
	"title":      func(a, b calendar.Event) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) },
	"start_time": func(a, b calendar.Event) int { return a.StartTime.Compare(b.StartTime) },
	"end_time":   func(a, b calendar.Event) int { return a.EndTime.Compare(b.EndTime) },
	"event_type": func(a, b calendar.Event) int { return strings.Compare(a.EventType, b.EventType) },
	"created_at": func(a, b calendar.Event) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

type eventRepository struct {
	db *table[calendar.Event]
}

var _ calendar.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) calendar.Repository {
	return &eventRepository{db: db.event}
}

func (repo *eventRepository) CreateEvent(_ context.Context, evt calendar.Event) (calendar.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.rows[evt.ID] = evt
	return evt, nil
}

func (repo *eventRepository) GetEventByID(_ context.Context, id string) (calendar.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if evt, ok := repo.db.rows[id]; ok {
		return evt, nil
	}
	return calendar.Event{}, calendar.ErrNotFound
}

func (repo *eventRepository) FilterEvents(
	_ context.Context,
	filter calendar.QueryFilter,
	ordering ...core.DBOrdering,
) ([]calendar.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := make([]calendar.Event, 0)
	for _, evt := range repo.db.rows {
		if matchEvent(filter, evt) {
			events = append(events, evt)
		}
	}
	orderBy(events, ordering, eventComparators, func(a, b calendar.Event) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		if c := a.EndTime.Compare(b.EndTime); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return events, nil
}

func matchEvent(filter calendar.QueryFilter, evt calendar.Event) bool {
	if filter.Search != "" &&
		!containsFold(evt.Title, filter.Search) &&
		!containsFold(evt.Description, filter.Search) &&
		!containsFold(evt.Venue.String, filter.Search) {
		return false
	}
	if filter.EventTypes != nil && !contains(filter.EventTypes, evt.EventType) {
		return false
	}
	if filter.Attendances != nil && !contains(filter.Attendances, evt.EDAttendanceStatus.String) {
		return false
	}
	if filter.CreatedBy != "" && evt.CreatedBy != filter.CreatedBy {
		return false
	}
	if !filter.From.IsZero() && evt.EndTime.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && !evt.StartTime.Before(filter.To) {
		return false
	}
	return true
}

func (repo *eventRepository) UpdateEvent(_ context.Context, evt calendar.Event) (calendar.Event, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.rows[evt.ID]
	if !ok {
		return calendar.Event{}, calendar.ErrNotFound
	}
	evt.CreatedBy = orig.CreatedBy
	evt.CreatedAt = orig.CreatedAt
	repo.db.rows[evt.ID] = evt
	return evt, nil
}

func (repo *eventRepository) DeleteEventsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.rows[id]; ok {
			delete(repo.db.rows, id)
			cnt++
		}
	}
	return cnt, nil
}
