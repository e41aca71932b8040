package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/username/recur/pkg/dateutil"
	"github.com/username/recur/pkg/recurrence"
)

// ErrNotExportable is returned for predicates that have no RRULE form
var ErrNotExportable = errors.New("not exportable")

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

var (
	weekendDays = []rrule.Weekday{rrule.SA, rrule.SU}
	workdayDays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}
)

// firstScanDays bounds the search for a first occurrence. Every exportable
// rule that occurs at all does so within a year of its start.
const firstScanDays = 366

// DTStart returns the first date on or after the start date on which rec
// occurs. DTSTART is itself an instance of the exported rule, so it must match.
// ok is false when rec has no occurrence at all.
func DTStart(rec *recurrence.Recurrence) (dateutil.Date, bool) {
	end, bounded := rec.End().Get()
	d := rec.Start()
	for i := 0; i < firstScanDays; i++ {
		if bounded && d.After(end) {
			break
		}
		if rec.OccursOn(d) {
			return d, true
		}
		d = d.AddDays(1)
	}
	return dateutil.Date{}, false
}

// ToRRule converts a recurrence into an equivalent RFC 5545 rule: the rule
// expands to exactly the dates on which rec.OccursOn is true.
func ToRRule(rec *recurrence.Recurrence) (*rrule.RRule, error) {
	first, ok := DTStart(rec)
	if !ok {
		return nil, fmt.Errorf("%w: %s never occurs", ErrNotExportable, rec)
	}

	rule := rec.Rule()
	opt := rrule.ROption{
		Dtstart:  first.Time(),
		Interval: max(rule.Interval(), 1),
	}
	if end, ok := rec.End().Get(); ok {
		opt.Until = end.Time()
	}

	switch rule.Kind() {
	case recurrence.KindNthWeekday:
		if rule.Period() != recurrence.PeriodMonth {
			return nil, fmt.Errorf("%w: period %s", ErrNotExportable, rule.Period())
		}
		opt.Freq = rrule.MONTHLY
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[rule.Weekday()].Nth(rule.Ordinal())}
	default:
		switch rule.Unit() {
		case recurrence.UnitDay:
			opt.Freq = rrule.DAILY
		case recurrence.UnitWeek:
			opt.Freq = rrule.WEEKLY
		case recurrence.UnitMonth:
			opt.Freq = rrule.MONTHLY
		case recurrence.UnitYear:
			opt.Freq = rrule.YEARLY
		case recurrence.UnitWeekday:
			opt.Freq = rrule.WEEKLY
			opt.Byweekday = []rrule.Weekday{rruleWeekdays[rule.Weekday()]}
		case recurrence.UnitWeekend:
			opt.Freq = rrule.DAILY
			opt.Byweekday = weekendDays
		case recurrence.UnitWorkday:
			opt.Freq = rrule.DAILY
			opt.Byweekday = workdayDays
		default:
			return nil, fmt.Errorf("%w: unit %s", ErrNotExportable, rule.Unit())
		}
	}

	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build rrule for %s: %w", rec, err)
	}
	return rr, nil
}
