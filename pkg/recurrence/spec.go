package recurrence

import (
	"fmt"
	"strings"

	"github.com/samber/mo"

	"github.com/username/recur/pkg/dateutil"
)

// RuleSpec is the option set a recurrence is built from. Exactly one
// repetition keyword must be set; Of, Interval and Until are modifiers.
//
//	RuleSpec{Every: "day"}
//	RuleSpec{EveryOther: "wednesday"}
//	RuleSpec{EveryNth: "month", Interval: 3}
//	RuleSpec{EveryThird: "day"}
//	RuleSpec{EveryLast: "friday", Of: "month"}
type RuleSpec struct {
	Every       string `mapstructure:"every" yaml:"every,omitempty"`
	EveryOther  string `mapstructure:"every_other" yaml:"every_other,omitempty"`
	EveryNth    string `mapstructure:"every_nth" yaml:"every_nth,omitempty"`
	EveryFirst  string `mapstructure:"every_first" yaml:"every_first,omitempty"`
	EverySecond string `mapstructure:"every_second" yaml:"every_second,omitempty"`
	EveryThird  string `mapstructure:"every_third" yaml:"every_third,omitempty"`
	EveryLast   string `mapstructure:"every_last" yaml:"every_last,omitempty"`

	Of       string `mapstructure:"of" yaml:"of,omitempty"`
	Interval int    `mapstructure:"interval" yaml:"interval,omitempty"`
	Until    string `mapstructure:"until" yaml:"until,omitempty"`
}

type keyword struct {
	name  string
	value string
}

func (s RuleSpec) keywords() []keyword {
	all := []keyword{
		{"every", s.Every},
		{"every_other", s.EveryOther},
		{"every_nth", s.EveryNth},
		{"every_first", s.EveryFirst},
		{"every_second", s.EverySecond},
		{"every_third", s.EveryThird},
		{"every_last", s.EveryLast},
	}

	var set []keyword
	for _, k := range all {
		if strings.TrimSpace(k.value) != "" {
			set = append(set, k)
		}
	}
	return set
}

// ParseRule validates a RuleSpec and builds its Rule.
func ParseRule(spec RuleSpec) (Rule, error) {
	set := spec.keywords()
	switch {
	case len(set) == 0:
		return Rule{}, ErrMissingRepeatModifier
	case len(set) > 1:
		names := make([]string, len(set))
		for i, k := range set {
			names[i] = k.name
		}
		return Rule{}, fmt.Errorf("%w: %s", ErrConflictingRepeatModifiers, strings.Join(names, ", "))
	}
	if spec.Interval < 0 {
		return Rule{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, spec.Interval)
	}

	kw := set[0]
	hasPeriod := strings.TrimSpace(spec.Of) != ""

	if spec.Interval != 0 && kw.name != "every" && kw.name != "every_nth" {
		return Rule{}, fmt.Errorf("%w: interval cannot be combined with %s", ErrConflictingRepeatModifiers, kw.name)
	}
	if hasPeriod && !isOrdinalKeyword(kw.name) {
		return Rule{}, fmt.Errorf("%w: of cannot be combined with %s", ErrConflictingRepeatModifiers, kw.name)
	}

	switch kw.name {
	case "every":
		if spec.Interval > 1 {
			return EveryNth(kw.value, spec.Interval)
		}
		return Every(kw.value)
	case "every_other":
		return EveryNth(kw.value, 2)
	case "every_nth":
		if spec.Interval == 0 {
			return Rule{}, fmt.Errorf("%w: every_nth %q needs an interval", ErrMissingInterval, kw.value)
		}
		return EveryNth(kw.value, spec.Interval)
	case "every_second", "every_third":
		// Without a period these read as "every second/third day".
		if !hasPeriod {
			return EveryNth(kw.value, ordinalOf(kw.name))
		}
		return NthWeekdayOfPeriod(ordinalOf(kw.name), kw.value, spec.Of)
	default:
		if !hasPeriod {
			return Rule{}, fmt.Errorf("%w: %s %q needs of: month", ErrMissingPeriod, kw.name, kw.value)
		}
		return NthWeekdayOfPeriod(ordinalOf(kw.name), kw.value, spec.Of)
	}
}

func isOrdinalKeyword(name string) bool {
	return ordinalOf(name) != 0
}

func ordinalOf(name string) int {
	switch name {
	case "every_first":
		return 1
	case "every_second":
		return 2
	case "every_third":
		return 3
	case "every_last":
		return OrdinalLast
	default:
		return 0
	}
}

func (s RuleSpec) until() (mo.Option[dateutil.Date], error) {
	if strings.TrimSpace(s.Until) == "" {
		return mo.None[dateutil.Date](), nil
	}
	d, err := dateutil.Normalize(s.Until)
	if err != nil {
		return mo.None[dateutil.Date](), fmt.Errorf("invalid until: %w", err)
	}
	return mo.Some(d), nil
}
