package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/dashboard/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// queryTime parses the timestamp query param `name`; zoneless values are in loc.
// A missing param yields the zero time.
func queryTime(ctx echo.Context, name string, loc *time.Location) (time.Time, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return time.Time{}, nil
	}
	t, err := core.ParseTimestamp(val, loc)
	if err != nil {
		if t, err = time.ParseInLocation("2006-01-02", val, loc); err != nil {
			return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: name, Error: "invalid date/time"})
		}
	}
	return t, nil
}

// queryDate parses the `YYYY-MM-DD` query param `name` in loc, defaulting to today.
func queryDate(ctx echo.Context, name string, loc *time.Location) (time.Time, error) {
	return queryLayout(ctx, name, "2006-01-02", loc)
}

// queryMonth parses the `YYYY-MM` query param `name` in loc, defaulting to the current month.
func queryMonth(ctx echo.Context, name string, loc *time.Location) (time.Time, error) {
	return queryLayout(ctx, name, "2006-01", loc)
}

func queryLayout(ctx echo.Context, name, layout string, loc *time.Location) (time.Time, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation(layout, val, loc)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: name, Error: "use the format " + layout})
	}
	return t, nil
}

// queryBool parses the boolean query param `name`; nil when missing.
func queryBool(ctx echo.Context, name string) (*bool, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: "must be true or false"})
	}
	return &b, nil
}
