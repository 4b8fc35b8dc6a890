// Package dates turns loosely formatted, human-entered travel dates into calendar dates.
//
// A date is accepted when it parses under any recognized layout and is not before today on
// the validator's clock. Comparison is at day granularity: today is always valid.
//
//	v := dates.NewValidator(travelkit.NewDefaultTimeProvider())
//	day, err := v.Validate("May 30, 2025")
//	if errors.Is(err, travelkit.ErrPastDate) {
//	    // ask for a future date
//	}
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rickchristie/travelkit"
)

// Layout is the canonical date layout sent to providers.
const Layout = "2006-01-02"

const (
	msgInvalidFormat = "Error: Invalid date format. Please use YYYY-MM-DD"
	msgPastDate      = "Error: Date must be in the future (YYYY-MM-DD format)"
)

// fallbackLayouts covers day-first spellings dateparse does not recognize.
var fallbackLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"January 2 2006",
	"Jan 2 2006",
	"2006.01.02",
	"02.01.2006",
}

// Validator parses and validates travel dates against a clock.
type Validator struct {
	clock travelkit.TimeProvider
}

// NewValidator creates a Validator. A nil clock uses the system clock.
func NewValidator(clock travelkit.TimeProvider) *Validator {
	if clock == nil {
		clock = travelkit.NewDefaultTimeProvider()
	}
	return &Validator{clock: clock}
}

// Parse parses s into a calendar date at midnight in the clock's location. The date is the
// one written in s: a time of day or UTC offset never moves it to another day. Numeric dates
// are read month first and swapped when that cannot be a month, so 30/05/2099 is May 30.
// It fails with InvalidFormat when no layout matches the whole input.
func (v *Validator) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, travelkit.NewError(travelkit.KindInvalidFormat, msgInvalidFormat)
	}
	loc := v.clock.Now().Location()

	t, err := parseStrict(trimWeekday(s), loc)
	if err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
	}
	for _, layout := range fallbackLayouts {
		if ft, ferr := time.ParseInLocation(layout, s, loc); ferr == nil {
			return ft, nil
		}
	}
	return time.Time{}, travelkit.NewError(travelkit.KindInvalidFormat, msgInvalidFormat).WithCause(err)
}

// parseStrict detects the layout of s with dateparse, then parses s again under that layout
// so trailing tokens dateparse would drop are an error. Digit-only input must be yyyymmdd;
// unix timestamps are rejected.
func parseStrict(s string, loc *time.Location) (time.Time, error) {
	if isDigits(s) && len(s) != len("20060102") {
		return time.Time{}, fmt.Errorf("numeric date %q is not yyyymmdd", s)
	}
	layout, err := dateparse.ParseFormat(s, dateparse.RetryAmbiguousDateWithSwap(true))
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(layout, s, loc)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var weekdays = map[string]bool{
	"mon": true, "tue": true, "tues": true, "wed": true, "thu": true, "thur": true, "thurs": true,
	"fri": true, "sat": true, "sun": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true,
	"saturday": true, "sunday": true,
}

// trimWeekday drops a leading day name such as "Friday," which carries no date.
func trimWeekday(s string) string {
	head, rest, ok := strings.Cut(s, " ")
	if !ok || !weekdays[strings.ToLower(strings.TrimSuffix(head, ","))] {
		return s
	}
	return strings.TrimSpace(rest)
}

// Validate parses s and rejects dates strictly before today.
func (v *Validator) Validate(s string) (time.Time, error) {
	day, err := v.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if day.Before(v.clock.Today()) {
		return time.Time{}, travelkit.NewError(travelkit.KindPastDate, msgPastDate)
	}
	return day, nil
}

// Format renders a date in the canonical provider layout.
func Format(day time.Time) string {
	return day.Format(Layout)
}
