package calendar

import (
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/pkg/errors"
)

const icalProductID = "-//trezcool//dashboard calendar//EN"

// ExportICal writes events as an iCalendar (RFC 5545) document.
func ExportICal(w io.Writer, events []Event, appName string) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icalProductID)
	if appName != "" {
		cal.Props.SetText("X-WR-CALNAME", appName)
	}

	for _, evt := range events {
		cal.Children = append(cal.Children, icalEvent(evt).Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return errors.Wrap(err, "encoding calendar")
	}
	return nil
}

func icalEvent(evt Event) *ical.Event {
	stamp := evt.UpdatedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}

	ie := ical.NewEvent()
	ie.Props.SetText(ical.PropUID, evt.ID)
	ie.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ie.Props.SetDateTime(ical.PropDateTimeStart, evt.StartTime.UTC())
	ie.Props.SetDateTime(ical.PropDateTimeEnd, evt.EndTime.UTC())
	ie.Props.SetText(ical.PropSummary, evt.Title)
	ie.Props.SetText(ical.PropCategories, evt.EventType)
	if evt.Description != "" {
		ie.Props.SetText(ical.PropDescription, evt.Description)
	}
	if evt.Venue.Valid {
		ie.Props.SetText(ical.PropLocation, evt.Venue.String)
	}
	if evt.MeetingLink.Valid {
		ie.Props.SetText(ical.PropURL, evt.MeetingLink.String)
	}
	return ie
}
