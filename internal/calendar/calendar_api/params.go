package calendar_api

import (
	"fmt"
	"net/url"

	calendar "web-calendar/internal/calendar/service"
	"web-calendar/internal/models"
)

const (
	msgEventRequired = "The event name is required!"
	msgDateRequired  = "The event date with the correct format is required! The correct format is YYYY-MM-DD!"
	msgDateFormat    = "The correct format is YYYY-MM-DD!"
)

// ValidationError rejects a single request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}

// parseCreateParams checks event before date; the first failure is reported.
func parseCreateParams(query url.Values) (string, models.Date, error) {
	name := query.Get("event")
	if name == "" {
		return "", models.Date{}, &ValidationError{Field: "event", Message: msgEventRequired}
	}

	date, err := models.ParseDate(query.Get("date"))
	if err != nil {
		return "", models.Date{}, &ValidationError{Field: "date", Message: msgDateRequired}
	}
	return name, date, nil
}

// parseRangeParams returns nil, meaning no filter, unless start_time is present. A lone
// end_time is still format-checked. start_time without end_time is rejected.
func parseRangeParams(query url.Values) (*calendar.DateRange, error) {
	if !query.Has("start_time") {
		if query.Has("end_time") {
			if _, err := parseDateParam(query, "end_time"); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	start, err := parseDateParam(query, "start_time")
	if err != nil {
		return nil, err
	}
	end, err := parseDateParam(query, "end_time")
	if err != nil {
		return nil, err
	}
	return &calendar.DateRange{Start: start, End: end}, nil
}

func parseDateParam(query url.Values, field string) (models.Date, error) {
	date, err := models.ParseDate(query.Get(field))
	if err != nil {
		return models.Date{}, &ValidationError{Field: field, Message: msgDateFormat}
	}
	return date, nil
}
