// Package calendar holds the workweek configuration shared by the console
// and the mock backend. Workweek is Sunday through Thursday; Friday and
// Saturday are the weekend.
package calendar

import (
	"strings"
	"time"
)

var weekendDays = []time.Weekday{time.Friday, time.Saturday}

// IsWeekend reports whether the date falls on a weekend day.
func IsWeekend(date time.Time) bool {
	for _, day := range weekendDays {
		if date.Weekday() == day {
			return true
		}
	}
	return false
}

// WeekendLabel returns the weekend day names, e.g. "Friday, Saturday".
func WeekendLabel() string {
	names := make([]string, 0, len(weekendDays))
	for _, day := range weekendDays {
		names = append(names, day.String())
	}
	return strings.Join(names, ", ")
}

// WorkweekLabel returns the workweek span, e.g. "Sunday-Thursday".
func WorkweekLabel() string {
	return time.Sunday.String() + "-" + time.Thursday.String()
}

// NextBusinessDay returns the first non-weekend day strictly after date.
func NextBusinessDay(date time.Time) time.Time {
	next := date.AddDate(0, 0, 1)
	for IsWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// IsAfterCutoff reports whether an order creation timestamp
// ("YYYY-MM-DDTHH:MM") falls at or after the daily cutoff ("HH:MM").
// Lexicographic comparison is sufficient for zero-padded HH:MM values.
func IsAfterCutoff(orderCreatedAt, cutoffTime string) bool {
	if orderCreatedAt == "" || cutoffTime == "" {
		return false
	}
	parts := strings.SplitN(orderCreatedAt, "T", 2)
	if len(parts) != 2 || parts[1] == "" {
		return false
	}
	return parts[1] >= cutoffTime
}
