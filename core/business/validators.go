package business

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dashboard/core"
)

var (
	milestoneStatusTag  = "milestonestatus"
	milestoneStatusText = "invalid status, must be one of: pending, received"

	endBeforeStartTag  = "enddate"
	endBeforeStartText = "end date cannot be before start date"
)

// InitValidators registers the business validators and their translations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(milestoneStatusTag, milestoneStatusValidation)
	core.RegisterCustomTranslation(validate, translator, milestoneStatusTag, milestoneStatusText)

	validate.RegisterStructValidation(entityStructValidation, NewEntity{}, UpdateEntity{})
	core.RegisterCustomTranslation(validate, translator, endBeforeStartTag, endBeforeStartText)
}

func milestoneStatusValidation(fl validator.FieldLevel) bool {
	return contains(MilestoneStatuses, fl.Field().String())
}

// entityStructValidation checks that the contract does not end before it starts.
func entityStructValidation(sl validator.StructLevel) {
	switch ent := sl.Current().Interface().(type) {
	case NewEntity:
		validateContractDates(ent.StartDate, ent.EndDate, ent.loc, sl)
	case UpdateEntity:
		validateContractDates(deref(ent.StartDate), deref(ent.EndDate), ent.loc, sl)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func validateContractDates(start, end string, loc *time.Location, sl validator.StructLevel) {
	if start == "" || end == "" {
		return
	}
	s, sErr := core.ParseTimestamp(start, loc)
	e, eErr := core.ParseTimestamp(end, loc)
	if sErr != nil || eErr != nil { // reported by the field validators
		return
	}
	if e.Before(s) {
		sl.ReportError(end, "end_date", "EndDate", endBeforeStartTag, "")
	}
}
