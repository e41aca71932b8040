package calendar

import (
	"errors"
	"time"

	"github.com/username/recur/pkg/dateutil"
	"github.com/username/recur/pkg/recurrence"
)

var (
	// ErrUnknownSchedule is returned when a name is not defined by a calendar
	ErrUnknownSchedule = errors.New("unknown schedule")

	// ErrCyclicCombination is returned when combinations refer to each other in a loop
	ErrCyclicCombination = errors.New("cyclic combination")
)

// DayInfo represents information about a specific day
type DayInfo struct {
	Date      dateutil.Date
	Weekday   time.Weekday
	Schedules []string // names occurring on Date, sorted
}

// IsBusy reports whether any schedule occurs on the day
func (d DayInfo) IsBusy() bool {
	return len(d.Schedules) > 0
}

// MonthInfo represents schedule occurrences for a month
type MonthInfo struct {
	Year   int
	Month  time.Month
	Counts map[string]int // occurrences per schedule in the month
	Days   []DayInfo
}

// Calendar resolves schedule names to predicates
type Calendar interface {
	// Lookup returns the predicate registered under name
	Lookup(name string) (recurrence.Predicate, error)

	// Names returns every defined name, sorted
	Names() []string
}
