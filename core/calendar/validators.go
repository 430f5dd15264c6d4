package calendar

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dashboard/core"
)

var (
	eventTypeTag  = "eventtype"
	eventTypeText = "invalid event type, must be one of: event, training, meeting, other"

	attendanceTag  = "attendance"
	attendanceText = "invalid status, must be one of: attending, not_attending, sending_representative"

	endBeforeStartTag  = "endtime"
	endBeforeStartText = "end time cannot be before start time"
)

// InitValidators registers the calendar validators and their translations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(eventTypeTag, oneOf(EventTypes))
	core.RegisterCustomTranslation(validate, translator, eventTypeTag, eventTypeText)

	_ = validate.RegisterValidation(attendanceTag, oneOf(AttendanceStatuses))
	core.RegisterCustomTranslation(validate, translator, attendanceTag, attendanceText)

	validate.RegisterStructValidation(eventStructValidation, NewEvent{}, UpdateEvent{})
	core.RegisterCustomTranslation(validate, translator, endBeforeStartTag, endBeforeStartText)
}

func oneOf(vals []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, v := range vals {
			if s == v {
				return true
			}
		}
		return false
	}
}

// eventStructValidation rejects events ending before they start.
func eventStructValidation(sl validator.StructLevel) {
	switch evt := sl.Current().Interface().(type) {
	case NewEvent:
		validateEventTimes(evt.StartTime, evt.EndTime, evt.loc, sl)
	case UpdateEvent:
		validateEventTimes(evt.StartTime, evt.EndTime, evt.loc, sl)
	}
}

func validateEventTimes(start, end string, loc *time.Location, sl validator.StructLevel) {
	s, sErr := core.ParseTimestamp(start, loc)
	e, eErr := core.ParseTimestamp(end, loc)
	if sErr != nil || eErr != nil { // reported by the field validators
		return
	}
	if e.Before(s) {
		sl.ReportError(end, "end_time", "EndTime", endBeforeStartTag, "")
	}
}

// parseTimes parses already validated event times.
func parseTimes(start, end string, loc *time.Location) (time.Time, time.Time, error) {
	s, err := core.ParseTimestamp(start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, core.NewValidationError(err, core.FieldError{Field: "start_time", Error: err.Error()})
	}
	e, err := core.ParseTimestamp(end, loc)
	if err != nil {
		return time.Time{}, time.Time{}, core.NewValidationError(err, core.FieldError{Field: "end_time", Error: err.Error()})
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, core.NewValidationError(nil, core.FieldError{Field: "end_time", Error: endBeforeStartText})
	}
	return s, e, nil
}
