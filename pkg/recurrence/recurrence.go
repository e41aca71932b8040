package recurrence

import (
	"fmt"
	"strings"

	"github.com/samber/mo"

	"github.com/username/recur/pkg/dateutil"
)

// WeekdayFormat selects how StartingWeekday renders the weekday
type WeekdayFormat int

const (
	WeekdayLong WeekdayFormat = iota
	WeekdayShort
)

// Recurrence is a start date, an optional end date and one Rule.
// It is immutable and safe for concurrent use.
type Recurrence struct {
	start dateutil.Date
	end   mo.Option[dateutil.Date]
	rule  Rule
}

// New builds a Recurrence from any date-like start (see dateutil.Normalize)
// and a RuleSpec. All validation happens here.
func New(start any, spec RuleSpec) (*Recurrence, error) {
	startDate, err := dateutil.Normalize(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}

	rule, err := ParseRule(spec)
	if err != nil {
		return nil, err
	}

	end, err := spec.until()
	if err != nil {
		return nil, err
	}

	return NewWithRule(startDate, rule, end), nil
}

// NewWithRule builds a Recurrence from an already validated Rule.
func NewWithRule(start dateutil.Date, rule Rule, end mo.Option[dateutil.Date]) *Recurrence {
	return &Recurrence{
		start: start,
		end:   end,
		rule:  rule,
	}
}

func (r *Recurrence) Start() dateutil.Date          { return r.start }
func (r *Recurrence) End() mo.Option[dateutil.Date] { return r.end }
func (r *Recurrence) Rule() Rule                    { return r.rule }

// OccursOn reports whether the recurrence has an occurrence on date.
func (r *Recurrence) OccursOn(date dateutil.Date) bool {
	if date.Before(r.start) {
		return false
	}
	if end, ok := r.end.Get(); ok && date.After(end) {
		return false
	}

	switch r.rule.kind {
	case KindEvery, KindEveryNth:
		return repeatsOn(r.start, date, r.rule)
	case KindNthWeekday:
		return nthWeekdayInMonth(r.rule.ordinal, r.rule.weekday, date)
	default:
		return false
	}
}

// StartingWeekday returns the lowercase weekday name of the start date,
// e.g. "friday" or, with WeekdayShort, "fri".
func (r *Recurrence) StartingWeekday(format WeekdayFormat) string {
	name := strings.ToLower(r.start.Weekday().String())
	if format == WeekdayShort {
		return name[:3]
	}
	return name
}

func (r *Recurrence) String() string {
	s := fmt.Sprintf("%s from %s", r.rule, r.start)
	if end, ok := r.end.Get(); ok {
		s += " until " + end.String()
	}
	return s
}

func (r *Recurrence) Union(other Predicate) Predicate      { return newComposite(OpUnion, r, other) }
func (r *Recurrence) Intersect(other Predicate) Predicate  { return newComposite(OpIntersection, r, other) }
func (r *Recurrence) Difference(other Predicate) Predicate { return newComposite(OpDifference, r, other) }
func (r *Recurrence) Complement() Predicate                { return newComposite(OpComplement, r, nil) }
