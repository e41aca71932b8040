package calendar

import (
	"errors"

	"go.uber.org/zap"

	"github.com/username/recur/pkg/recurrence"
)

// CompositeCalendar implements Calendar with fallback strategy
// Primary: ScheduleCalendar (config file)
// Fallback: FileCalendar (rules file)
type CompositeCalendar struct {
	primary  Calendar
	fallback Calendar
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback Calendar, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Lookup tries the primary calendar first; names it does not define are
// looked up in the fallback. Primary names shadow fallback ones.
func (cc *CompositeCalendar) Lookup(name string) (recurrence.Predicate, error) {
	p, err := cc.primary.Lookup(name)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrUnknownSchedule) {
		return nil, err
	}

	cc.logger.Debug("Schedule not in primary calendar, falling back",
		zap.String("name", name))

	return cc.fallback.Lookup(name)
}

// Names returns the names of both calendars, sorted and deduplicated
func (cc *CompositeCalendar) Names() []string {
	seen := make(map[string]struct{})
	for _, name := range cc.primary.Names() {
		seen[name] = struct{}{}
	}
	for _, name := range cc.fallback.Names() {
		if _, dup := seen[name]; dup {
			cc.logger.Warn("Rules file schedule shadowed by config",
				zap.String("name", name))
			continue
		}
		seen[name] = struct{}{}
	}
	return sortedNames(seen)
}
