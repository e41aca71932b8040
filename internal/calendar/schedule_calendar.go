package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/username/recur/internal/config"
	"github.com/username/recur/pkg/recurrence"
)

// ScheduleCalendar implements Calendar from the schedules and combinations
// of the config file. Combinations may also refer to names defined by the
// external calendar (usually the rules file).
type ScheduleCalendar struct {
	entries map[string]recurrence.Predicate
	logger  *zap.Logger
}

// NewScheduleCalendar builds every schedule and combination up front.
// external may be nil.
func NewScheduleCalendar(cfg config.CalendarConfig, external Calendar, logger *zap.Logger) (*ScheduleCalendar, error) {
	sc := &ScheduleCalendar{
		entries: make(map[string]recurrence.Predicate, len(cfg.Schedules)+len(cfg.Combinations)),
		logger:  logger,
	}

	for name, schedule := range cfg.Schedules {
		r, err := recurrence.New(schedule.Start, schedule.RuleSpec)
		if err != nil {
			return nil, fmt.Errorf("failed to build schedule %s: %w", name, err)
		}
		sc.entries[normalizeName(name)] = r
	}

	b := &combinationBuilder{
		cal:      sc,
		combos:   make(map[string]config.CombinationConfig, len(cfg.Combinations)),
		external: external,
		visiting: make(map[string]bool),
	}
	for name, combo := range cfg.Combinations {
		b.combos[normalizeName(name)] = combo
	}
	for _, name := range sortedNames(b.combos) {
		if _, err := b.resolve(name, nil); err != nil {
			return nil, err
		}
	}

	logger.Info("Schedule calendar built",
		zap.Int("schedules", len(cfg.Schedules)),
		zap.Int("combinations", len(cfg.Combinations)))

	return sc, nil
}

// Lookup returns the schedule or combination registered under name
func (sc *ScheduleCalendar) Lookup(name string) (recurrence.Predicate, error) {
	p, ok := sc.entries[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchedule, name)
	}
	return p, nil
}

// Names returns every schedule and combination name, sorted
func (sc *ScheduleCalendar) Names() []string {
	return sortedNames(sc.entries)
}

// combinationBuilder resolves combinations depth first, memoizing into cal.entries
type combinationBuilder struct {
	cal      *ScheduleCalendar
	combos   map[string]config.CombinationConfig
	external Calendar
	visiting map[string]bool
}

func (b *combinationBuilder) resolve(name string, path []string) (recurrence.Predicate, error) {
	if p, ok := b.cal.entries[name]; ok {
		return p, nil
	}

	combo, ok := b.combos[name]
	if !ok {
		if b.external == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSchedule, name)
		}
		return b.external.Lookup(name)
	}

	path = append(path[:len(path):len(path)], name)
	if b.visiting[name] {
		return nil, fmt.Errorf("%w: %s", ErrCyclicCombination, strings.Join(path, " -> "))
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	p, err := b.build(combo, path)
	if err != nil {
		if errors.Is(err, ErrCyclicCombination) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to build combination %s: %w", name, err)
	}

	b.cal.entries[name] = p
	b.cal.logger.Debug("Combination resolved",
		zap.String("name", name),
		zap.String("predicate", fmt.Sprint(p)))

	return p, nil
}

func (b *combinationBuilder) build(combo config.CombinationConfig, path []string) (recurrence.Predicate, error) {
	if err := combo.Validate(); err != nil {
		return nil, err
	}

	if combo.Complement != "" {
		p, err := b.resolve(normalizeName(combo.Complement), path)
		if err != nil {
			return nil, err
		}
		return p.Complement(), nil
	}

	var names []string
	var combine func(ps ...recurrence.Predicate) recurrence.Predicate
	switch {
	case len(combo.Union) > 0:
		names, combine = combo.Union, recurrence.UnionAll
	case len(combo.Intersect) > 0:
		names, combine = combo.Intersect, recurrence.IntersectAll
	default:
		// difference(a, b, c) is a minus b minus c
		names, combine = combo.Difference, differenceAll
	}

	operands := make([]recurrence.Predicate, 0, len(names))
	for _, n := range names {
		p, err := b.resolve(normalizeName(n), path)
		if err != nil {
			return nil, err
		}
		operands = append(operands, p)
	}
	return combine(operands...), nil
}

func differenceAll(ps ...recurrence.Predicate) recurrence.Predicate {
	acc := ps[0]
	for _, p := range ps[1:] {
		acc = acc.Difference(p)
	}
	return acc
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
