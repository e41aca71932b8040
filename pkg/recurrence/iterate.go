package recurrence

import (
	"fmt"
	"iter"
	"time"

	"github.com/username/recur/pkg/dateutil"
)

// EachOccurrence returns the forward sequence of occurrence dates starting at
// the start date (or the first matching weekday on or after it for weekday
// rules). The sequence ignores the end date and is infinite; stop ranging to
// stop it. Every range starts over from the beginning.
//
// Rules without a stepping algorithm (nth weekday of period, weekend,
// workday) yield ErrUnsupportedIteration once. A yearly step that lands on
// February 29 of a non-leap year yields ErrNonexistentDate and ends the sequence.
func (r *Recurrence) EachOccurrence() iter.Seq2[dateutil.Date, error] {
	return func(yield func(dateutil.Date, error) bool) {
		if !r.rule.Iterable() {
			yield(dateutil.Date{}, fmt.Errorf("%w: %s", ErrUnsupportedIteration, r.rule))
			return
		}

		current := r.first()
		for {
			if !yield(current, nil) {
				return
			}

			next, err := r.step(current)
			if err != nil {
				yield(dateutil.Date{}, err)
				return
			}
			if !next.After(current) {
				panic(fmt.Errorf("%w: %s -> %s for %s", ErrNonAdvancingStep, current, next, r.rule))
			}
			current = next
		}
	}
}

func (r *Recurrence) first() dateutil.Date {
	if r.rule.unit == UnitWeekday {
		return dateutil.NextWeekday(r.start, r.rule.weekday)
	}
	return r.start
}

func (r *Recurrence) step(current dateutil.Date) (dateutil.Date, error) {
	n := r.rule.interval
	if n < 1 {
		n = 1
	}

	switch r.rule.unit {
	case UnitDay:
		return current.AddDays(n), nil
	case UnitWeek, UnitWeekday:
		return current.AddDays(7 * n), nil
	case UnitMonth:
		// Clamp against the start day so Jan 31 gives Feb 29 and then Mar 31.
		return dateutil.AddMonthsClamped(current, n, r.start.Day), nil
	case UnitYear:
		year := current.Year + n
		if current.Month == time.February && current.Day == 29 && !dateutil.IsLeapYear(year) {
			return dateutil.Date{}, fmt.Errorf("%w: %04d-02-29", ErrNonexistentDate, year)
		}
		return dateutil.Date{Year: year, Month: current.Month, Day: current.Day}, nil
	default:
		return dateutil.Date{}, fmt.Errorf("%w: %s", ErrUnsupportedIteration, r.rule)
	}
}

// Occurrences collects occurrences up to the end date, stopping after limit
// dates when limit > 0. An open-ended recurrence needs a positive limit.
func (r *Recurrence) Occurrences(limit int) ([]dateutil.Date, error) {
	_, bounded := r.end.Get()
	if !bounded && limit <= 0 {
		return nil, fmt.Errorf("recurrence %s has no end date: a positive limit is required", r)
	}

	var dates []dateutil.Date
	for date, err := range r.EachOccurrence() {
		if err != nil {
			return dates, err
		}
		if end, ok := r.end.Get(); ok && date.After(end) {
			break
		}
		dates = append(dates, date)
		if limit > 0 && len(dates) >= limit {
			break
		}
	}
	return dates, nil
}

// Between returns the occurrences within [from, to], honoring the end date.
func (r *Recurrence) Between(from, to dateutil.Date) ([]dateutil.Date, error) {
	if end, ok := r.end.Get(); ok && end.Before(to) {
		to = end
	}

	var dates []dateutil.Date
	for date, err := range r.EachOccurrence() {
		if err != nil {
			return dates, err
		}
		if date.After(to) {
			break
		}
		if !date.Before(from) {
			dates = append(dates, date)
		}
	}
	return dates, nil
}
