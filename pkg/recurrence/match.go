package recurrence

import (
	"time"

	"github.com/username/recur/pkg/dateutil"
)

// repeatsOn reports whether candidate (already known to be >= start) falls on
// the rule's period counted from start.
func repeatsOn(start, candidate dateutil.Date, rule Rule) bool {
	n := rule.interval
	if n < 1 {
		n = 1
	}

	switch rule.unit {
	case UnitDay:
		return candidate.DaysSince(start)%n == 0
	case UnitWeek:
		return candidate.DaysSince(start)%(7*n) == 0
	case UnitMonth:
		// Exact day match: a day 31 start never matches shorter months.
		return candidate.Day == start.Day &&
			dateutil.MonthsBetween(start, candidate)%n == 0
	case UnitYear:
		return candidate.Day == start.Day &&
			candidate.Month == start.Month &&
			(candidate.Year-start.Year)%n == 0
	case UnitWeekday:
		if candidate.Weekday() != rule.weekday {
			return false
		}
		if n == 1 {
			return true
		}
		// Weeks are counted from the first matching weekday on or after start.
		anchor := dateutil.NextWeekday(start, rule.weekday)
		return (candidate.DaysSince(anchor)/7)%n == 0
	case UnitWeekend:
		return dateutil.IsWeekend(candidate)
	case UnitWorkday:
		return dateutil.IsWeekday(candidate)
	default:
		return false
	}
}

// nthWeekdayInMonth relies on each weekday appearing exactly once in every
// 7-day window counted from day 1 (or back from the last day).
func nthWeekdayInMonth(ordinal int, weekday time.Weekday, candidate dateutil.Date) bool {
	if candidate.Weekday() != weekday {
		return false
	}
	if ordinal == OrdinalLast {
		return candidate.Day > candidate.DaysInMonth()-7
	}
	return 7*(ordinal-1) < candidate.Day && candidate.Day <= 7*ordinal
}
