package calendar

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/recur/pkg/dateutil"
	"github.com/username/recur/pkg/recurrence"
)

// maxScanDays bounds the day-by-day search used for predicates that cannot be stepped
const maxScanDays = 366 * 50

// Agenda answers day and month questions over a Calendar
type Agenda struct {
	cal    Calendar
	logger *zap.Logger
}

// NewAgenda creates a new Agenda
func NewAgenda(cal Calendar, logger *zap.Logger) *Agenda {
	return &Agenda{
		cal:    cal,
		logger: logger,
	}
}

// IsScheduled reports whether the named schedule occurs on a date-like value
func (a *Agenda) IsScheduled(name string, date any) (bool, error) {
	p, err := a.cal.Lookup(name)
	if err != nil {
		return false, err
	}

	ok, err := recurrence.Includes(p, date)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", name, err)
	}
	return ok, nil
}

// GetDayInfo returns every schedule occurring on date
func (a *Agenda) GetDayInfo(date dateutil.Date) (*DayInfo, error) {
	names := a.cal.Names()
	preds, err := a.lookupAll(names)
	if err != nil {
		return nil, err
	}

	info := dayInfo(date, names, preds)
	return &info, nil
}

// GetMonthInfo returns the occurrences of the given schedules (all when
// none are named) for each day of the month
func (a *Agenda) GetMonthInfo(year int, month time.Month, names ...string) (*MonthInfo, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", dateutil.ErrInvalidDateArgument, month)
	}
	if len(names) == 0 {
		names = a.cal.Names()
	}
	preds, err := a.lookupAll(names)
	if err != nil {
		return nil, err
	}

	info := &MonthInfo{
		Year:   year,
		Month:  month,
		Counts: make(map[string]int, len(names)),
		Days:   make([]DayInfo, 0, dateutil.DaysIn(year, month)),
	}
	for _, name := range names {
		info.Counts[name] = 0
	}

	for d := 1; d <= dateutil.DaysIn(year, month); d++ {
		day := dayInfo(dateutil.MustDate(year, month, d), names, preds)
		for _, name := range day.Schedules {
			info.Counts[name]++
		}
		info.Days = append(info.Days, day)
	}

	a.logger.Debug("Month info computed",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Strings("schedules", names))

	return info, nil
}

// Upcoming returns up to count occurrences of the named schedule on or after
// from. Recurrences with a stepping rule are iterated; anything else is
// searched day by day.
func (a *Agenda) Upcoming(name string, from dateutil.Date, count int) ([]dateutil.Date, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	p, err := a.cal.Lookup(name)
	if err != nil {
		return nil, err
	}

	var dates []dateutil.Date
	scanFrom := from
	scanTo := from.AddDays(maxScanDays)

	if rec, ok := p.(*recurrence.Recurrence); ok {
		end, bounded := rec.End().Get()
		if bounded && end.Before(scanTo) {
			scanTo = end
		}
		if !rec.Rule().Iterable() {
			return scan(p, scanFrom, scanTo, dates, count), nil
		}

		for date, err := range rec.EachOccurrence() {
			if err != nil {
				// e.g. a yearly Feb 29 rule: keep going by scanning
				a.logger.Debug("Iteration stopped, scanning instead",
					zap.String("name", name),
					zap.Error(err))
				break
			}
			if bounded && date.After(end) {
				return dates, nil
			}
			if date.Before(from) {
				continue
			}
			dates = append(dates, date)
			if len(dates) == count {
				return dates, nil
			}
			scanFrom = date.AddDays(1)
		}
	}

	return scan(p, scanFrom, scanTo, dates, count), nil
}

// scan appends the days in [from, to] on which p occurs until dates holds count
func scan(p recurrence.Predicate, from, to dateutil.Date, dates []dateutil.Date, count int) []dateutil.Date {
	for d := from; !d.After(to) && len(dates) < count; d = d.AddDays(1) {
		if p.OccursOn(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

func (a *Agenda) lookupAll(names []string) ([]recurrence.Predicate, error) {
	preds := make([]recurrence.Predicate, 0, len(names))
	for _, name := range names {
		p, err := a.cal.Lookup(name)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func dayInfo(date dateutil.Date, names []string, preds []recurrence.Predicate) DayInfo {
	info := DayInfo{
		Date:    date,
		Weekday: date.Weekday(),
	}
	for i, p := range preds {
		if p.OccursOn(date) {
			info.Schedules = append(info.Schedules, names[i])
		}
	}
	return info
}
