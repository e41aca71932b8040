package calendar

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/username/recur/internal/config"
	"github.com/username/recur/pkg/dateutil"
	"github.com/username/recur/pkg/recurrence"
)

func sampleCalendarConfig() config.CalendarConfig {
	return config.CalendarConfig{
		Schedules: map[string]config.ScheduleConfig{
			"standup": {Start: "2024-01-01", RuleSpec: recurrence.RuleSpec{Every: "workday"}},
			"retro":   {Start: "2024-01-03", RuleSpec: recurrence.RuleSpec{EveryOther: "wednesday", Until: "2024-12-31"}},
		},
		Combinations: map[string]config.CombinationConfig{
			"busy":         {Union: []string{"standup", "retro"}},
			"quiet":        {Complement: "busy"},
			"solo":         {Difference: []string{"standup", "retro"}},
			"paid_standup": {Intersect: []string{"standup", "payday"}},
		},
	}
}

// newTestCalendar builds the config calendar over the sample rules file
func newTestCalendar(t *testing.T) (*CompositeCalendar, *ScheduleCalendar, *FileCalendar) {
	t.Helper()
	logger := zap.NewNop()

	fc := NewFileCalendar("", logger)
	if err := fc.LoadFrom(strings.NewReader(sampleRules)); err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	sc, err := NewScheduleCalendar(sampleCalendarConfig(), fc, logger)
	if err != nil {
		t.Fatalf("NewScheduleCalendar() error = %v", err)
	}

	return NewCompositeCalendar(sc, fc, logger), sc, fc
}

func TestScheduleCalendar_Lookup(t *testing.T) {
	_, sc, _ := newTestCalendar(t)

	tests := []struct {
		name string
		date dateutil.Date
		want bool
	}{
		{"standup", dateutil.MustDate(2024, 1, 3), true},
		{"standup", dateutil.MustDate(2024, 1, 6), false},
		{"retro", dateutil.MustDate(2024, 1, 17), true},
		{"retro", dateutil.MustDate(2024, 1, 10), false},
		{"busy", dateutil.MustDate(2024, 1, 10), true},
		{"busy", dateutil.MustDate(2024, 1, 6), false},
		{"quiet", dateutil.MustDate(2024, 1, 6), true},
		{"quiet", dateutil.MustDate(2024, 1, 8), false},
		{"solo", dateutil.MustDate(2024, 1, 10), true},
		{"solo", dateutil.MustDate(2024, 1, 17), false},
		{"paid_standup", dateutil.MustDate(2024, 1, 31), true},  // Wednesday
		{"paid_standup", dateutil.MustDate(2024, 3, 31), false}, // Sunday
		{"Paid_Standup", dateutil.MustDate(2024, 7, 31), true},
	}

	for _, tt := range tests {
		t.Run(tt.name+" "+tt.date.String(), func(t *testing.T) {
			p, err := sc.Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%s) error = %v", tt.name, err)
			}
			if got := p.OccursOn(tt.date); got != tt.want {
				t.Errorf("%v OccursOn(%s) = %v, want %v", p, tt.date, got, tt.want)
			}
		})
	}
}

func TestScheduleCalendar_Names(t *testing.T) {
	_, sc, _ := newTestCalendar(t)

	want := "busy,paid_standup,quiet,retro,solo,standup"
	if got := strings.Join(sc.Names(), ","); got != want {
		t.Errorf("Names() = %s, want %s", got, want)
	}

	// payday is only known to the rules file
	if _, err := sc.Lookup("payday"); !errors.Is(err, ErrUnknownSchedule) {
		t.Errorf("Lookup(payday) error = %v, want ErrUnknownSchedule", err)
	}
}

func TestScheduleCalendar_SharesSubtrees(t *testing.T) {
	_, sc, _ := newTestCalendar(t)

	busy, _ := sc.Lookup("busy")
	quiet, _ := sc.Lookup("quiet")

	composite, ok := quiet.(*recurrence.Composite)
	if !ok {
		t.Fatalf("quiet is %T, want *recurrence.Composite", quiet)
	}
	if composite.Operands()[0] != busy {
		t.Error("quiet should wrap the same busy node")
	}
}

func TestScheduleCalendar_BuildErrors(t *testing.T) {
	base := func() config.CalendarConfig {
		return config.CalendarConfig{
			Schedules: map[string]config.ScheduleConfig{
				"daily": {Start: "2024-01-01", RuleSpec: recurrence.RuleSpec{Every: "day"}},
			},
		}
	}

	tests := []struct {
		name    string
		combos  map[string]config.CombinationConfig
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown operand",
			combos:  map[string]config.CombinationConfig{"x": {Union: []string{"daily", "nope"}}},
			wantErr: ErrUnknownSchedule,
			wantMsg: "failed to build combination x",
		},
		{
			name:    "self reference",
			combos:  map[string]config.CombinationConfig{"x": {Complement: "x"}},
			wantErr: ErrCyclicCombination,
			wantMsg: "x -> x",
		},
		{
			name: "indirect cycle",
			combos: map[string]config.CombinationConfig{
				"a": {Union: []string{"daily", "b"}},
				"b": {Intersect: []string{"daily", "c"}},
				"c": {Complement: "a"},
			},
			wantErr: ErrCyclicCombination,
			wantMsg: "a -> b -> c -> a",
		},
		{
			name: "cycle after a resolved sibling",
			combos: map[string]config.CombinationConfig{
				"a": {Union: []string{"b", "c"}},
				"b": {Union: []string{"daily", "e"}},
				"c": {Complement: "a"},
				"e": {Complement: "daily"},
			},
			wantErr: ErrCyclicCombination,
			wantMsg: "cyclic combination: a -> c -> a",
		},
		{
			name:    "bad shape",
			combos:  map[string]config.CombinationConfig{"x": {Union: []string{"daily"}}},
			wantMsg: "union needs at least two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			cfg.Combinations = tt.combos

			_, err := NewScheduleCalendar(cfg, nil, zap.NewNop())
			if err == nil {
				t.Fatal("NewScheduleCalendar() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestCombinationBuilder_LeavesCallerPathIntact(t *testing.T) {
	daily, err := recurrence.New("2024-01-01", recurrence.RuleSpec{Every: "day"})
	if err != nil {
		t.Fatal(err)
	}
	b := &combinationBuilder{
		cal: &ScheduleCalendar{
			entries: map[string]recurrence.Predicate{"daily": daily},
			logger:  zap.NewNop(),
		},
		combos: map[string]config.CombinationConfig{
			"off": {Complement: "daily"},
		},
		visiting: make(map[string]bool),
	}

	path := make([]string, 1, 4)
	path[0] = "outer"
	if _, err := b.resolve("off", path); err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if spare := path[:2][1]; spare != "" {
		t.Errorf("resolve() wrote %q into the caller's path", spare)
	}
}

func TestScheduleCalendar_BadSchedule(t *testing.T) {
	cfg := config.CalendarConfig{
		Schedules: map[string]config.ScheduleConfig{
			"broken": {Start: "2024-01-01", RuleSpec: recurrence.RuleSpec{EveryFirst: "monday"}},
		},
	}

	_, err := NewScheduleCalendar(cfg, nil, zap.NewNop())
	if !errors.Is(err, recurrence.ErrMissingPeriod) {
		t.Errorf("error = %v, want ErrMissingPeriod", err)
	}
}

func TestCompositeCalendar(t *testing.T) {
	cal, _, _ := newTestCalendar(t)

	want := "busy,gym,leap,paid_standup,payday,quiet,retro,review,solo,standup"
	if got := strings.Join(cal.Names(), ","); got != want {
		t.Errorf("Names() = %s, want %s", got, want)
	}

	for _, name := range []string{"standup", "busy", "payday", "gym"} {
		if _, err := cal.Lookup(name); err != nil {
			t.Errorf("Lookup(%s) error = %v", name, err)
		}
	}

	if _, err := cal.Lookup("nope"); !errors.Is(err, ErrUnknownSchedule) {
		t.Errorf("Lookup(nope) error = %v, want ErrUnknownSchedule", err)
	}
}

func TestCompositeCalendar_PrimaryShadowsFallback(t *testing.T) {
	logger := zap.NewNop()

	fc := NewFileCalendar("", logger)
	if err := fc.LoadFrom(strings.NewReader("standup 2024-01-01 every=day")); err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if _, err := NewScheduleCalendar(sampleCalendarConfig(), NewFileCalendar("", logger), logger); err == nil {
		t.Fatal("payday is missing, NewScheduleCalendar() should fail")
	}

	cfg := sampleCalendarConfig()
	delete(cfg.Combinations, "paid_standup")
	sc, err := NewScheduleCalendar(cfg, fc, logger)
	if err != nil {
		t.Fatalf("NewScheduleCalendar() error = %v", err)
	}

	cal := NewCompositeCalendar(sc, fc, logger)
	p, err := cal.Lookup("standup")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if p.OccursOn(dateutil.MustDate(2024, 1, 6)) {
		t.Error("config standup (workdays) should shadow the rules file one (every day)")
	}
	if got := len(cal.Names()); got != 5 {
		t.Errorf("Names() = %v, want 5 unique names", cal.Names())
	}
}
