package rotation

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
	"github.com/teambition/rrule-go"
)

// WorkWeekDays is the offset from a week's Monday start to its Friday end
const WorkWeekDays = 4

var mondayWeeks = &now.Config{WeekStartDay: time.Monday}

// FirstMonday returns the first Monday on or after from, as a UTC calendar date.
// This is today + (0 - weekday) mod 7 days with Monday counted as weekday 0.
func FirstMonday(from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	monday := mondayWeeks.With(day).BeginningOfWeek()
	if monday.Before(day) {
		monday = monday.AddDate(0, 0, 7)
	}
	return monday
}

// WeekStartDates returns the Monday start date of each of the given number of weeks,
// beginning with the first Monday on or after from
func WeekStartDates(from time.Time, weeks int) ([]time.Time, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("week count must be positive, got %d", weeks)
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.MO},
		Count:     weeks,
		Dtstart:   FirstMonday(from),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build weekly rule: %w", err)
	}

	starts := rule.All()
	if len(starts) != weeks {
		return nil, fmt.Errorf("expected %d week start dates, got %d", weeks, len(starts))
	}
	return starts, nil
}

// WeekEnd returns the Friday that closes the work week starting at start
func WeekEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, WorkWeekDays)
}
