package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the shape of a Rule
type Kind int

const (
	KindEvery Kind = iota + 1
	KindEveryNth
	KindNthWeekday
)

func (k Kind) String() string {
	switch k {
	case KindEvery:
		return "every"
	case KindEveryNth:
		return "every_nth"
	case KindNthWeekday:
		return "nth_weekday_of_period"
	default:
		return "unknown"
	}
}

// Unit is what a rule repeats on
type Unit string

const (
	UnitDay     Unit = "day"
	UnitWeek    Unit = "week"
	UnitMonth   Unit = "month"
	UnitYear    Unit = "year"
	UnitWeekend Unit = "weekend"
	UnitWorkday Unit = "workday"
	// UnitWeekday means a specific day of the week, stored in Rule.Weekday.
	UnitWeekday Unit = "weekday"
)

// Period is the span an nth-weekday rule counts within
type Period string

const PeriodMonth Period = "month"

// OrdinalLast selects the last matching weekday of the period.
const OrdinalLast = -1

// Rule is a validated repetition rule. Build it with Every, EveryNth,
// NthWeekdayOfPeriod or ParseRule; it cannot be changed afterwards.
type Rule struct {
	kind     Kind
	unit     Unit
	weekday  time.Weekday
	interval int
	ordinal  int
	period   Period
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

// ParseWeekday resolves a long or three-letter weekday name, ignoring case
func ParseWeekday(name string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return wd, ok
}

// parseUnit returns the unit for name; weekday names map to UnitWeekday.
func parseUnit(name string) (Unit, time.Weekday, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch Unit(n) {
	case UnitDay, UnitWeek, UnitMonth, UnitYear, UnitWeekend, UnitWorkday:
		return Unit(n), 0, true
	}
	if wd, ok := ParseWeekday(n); ok {
		return UnitWeekday, wd, true
	}
	return "", 0, false
}

// Every builds a rule that repeats on every unit:
// day, week, month, year, weekend, workday or a weekday name.
func Every(unit string) (Rule, error) {
	u, wd, ok := parseUnit(unit)
	if !ok {
		return Rule{}, fmt.Errorf("%w: every %q", ErrInvalidRecurrenceType, unit)
	}
	return Rule{kind: KindEvery, unit: u, weekday: wd, interval: 1}, nil
}

// EveryNth builds a rule that repeats on every n-th unit.
// Weekend and workday have no interval form.
func EveryNth(unit string, n int) (Rule, error) {
	if n <= 0 {
		return Rule{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, n)
	}
	u, wd, ok := parseUnit(unit)
	if !ok || u == UnitWeekend || u == UnitWorkday {
		return Rule{}, fmt.Errorf("%w: every %d %q", ErrInvalidRecurrenceType, n, unit)
	}
	return Rule{kind: KindEveryNth, unit: u, weekday: wd, interval: n}, nil
}

// NthWeekdayOfPeriod builds a rule for the ordinal-th weekday of each period,
// e.g. the first Thursday of the month. ordinal is 1..5 or OrdinalLast.
func NthWeekdayOfPeriod(ordinal int, weekday string, period string) (Rule, error) {
	if ordinal != OrdinalLast && (ordinal < 1 || ordinal > 5) {
		return Rule{}, fmt.Errorf("%w: ordinal %d", ErrInvalidRecurrenceType, ordinal)
	}
	wd, ok := ParseWeekday(weekday)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q is not a weekday", ErrInvalidRecurrenceType, weekday)
	}
	if strings.TrimSpace(period) == "" {
		return Rule{}, ErrMissingPeriod
	}
	if Period(strings.ToLower(strings.TrimSpace(period))) != PeriodMonth {
		return Rule{}, fmt.Errorf("%w: period %q", ErrInvalidRecurrenceType, period)
	}
	return Rule{kind: KindNthWeekday, unit: UnitWeekday, weekday: wd, interval: 1, ordinal: ordinal, period: PeriodMonth}, nil
}

func (r Rule) Kind() Kind            { return r.kind }
func (r Rule) Unit() Unit            { return r.unit }
func (r Rule) Weekday() time.Weekday { return r.weekday }
func (r Rule) Interval() int         { return r.interval }
func (r Rule) Ordinal() int          { return r.ordinal }
func (r Rule) Period() Period        { return r.period }

// Iterable reports whether EachOccurrence has a stepping algorithm for the rule
func (r Rule) Iterable() bool {
	if r.kind != KindEvery && r.kind != KindEveryNth {
		return false
	}
	return r.unit != UnitWeekend && r.unit != UnitWorkday
}

func (r Rule) String() string {
	name := string(r.unit)
	if r.unit == UnitWeekday {
		name = strings.ToLower(r.weekday.String())
	}

	switch r.kind {
	case KindEvery:
		return "every " + name
	case KindEveryNth:
		return fmt.Sprintf("every %s %s", ordinalWord(r.interval), name)
	case KindNthWeekday:
		return fmt.Sprintf("every %s %s of %s", ordinalWord(r.ordinal), name, r.period)
	default:
		return "invalid rule"
	}
}

func ordinalWord(n int) string {
	switch n {
	case OrdinalLast:
		return "last"
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	case 4:
		return "fourth"
	case 5:
		return "fifth"
	}

	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
