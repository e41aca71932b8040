package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/recur/pkg/dateutil"
)

func newTestAgenda(t *testing.T) *Agenda {
	t.Helper()
	cal, _, _ := newTestCalendar(t)
	return NewAgenda(cal, zap.NewNop())
}

func TestAgenda_IsScheduled(t *testing.T) {
	agenda := newTestAgenda(t)

	tests := []struct {
		name    string
		date    any
		want    bool
		wantErr bool
	}{
		{"standup", "2024-01-03", true, false},
		{"standup", [3]int{2024, 1, 6}, false, false},
		{"payday", dateutil.MustDate(2024, 4, 30), false, false},
		{"quiet", time.Date(2024, 1, 7, 15, 0, 0, 0, time.UTC), true, false},
		{"standup", "not a date", false, true},
		{"nope", "2024-01-03", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := agenda.IsScheduled(tt.name, tt.date)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IsScheduled() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("IsScheduled(%s, %v) = %v, want %v", tt.name, tt.date, got, tt.want)
			}
		})
	}
}

func TestAgenda_GetDayInfo(t *testing.T) {
	agenda := newTestAgenda(t)

	info, err := agenda.GetDayInfo(dateutil.MustDate(2024, 1, 3))
	if err != nil {
		t.Fatalf("GetDayInfo() error = %v", err)
	}
	if info.Weekday != time.Wednesday {
		t.Errorf("Weekday = %v, want Wednesday", info.Weekday)
	}
	if got := strings.Join(info.Schedules, ","); got != "busy,retro,standup" {
		t.Errorf("Schedules = %s, want busy,retro,standup", got)
	}
	if !info.IsBusy() {
		t.Error("IsBusy() = false, want true")
	}

	saturday, err := agenda.GetDayInfo(dateutil.MustDate(2024, 1, 6))
	if err != nil {
		t.Fatalf("GetDayInfo() error = %v", err)
	}
	if got := strings.Join(saturday.Schedules, ","); got != "quiet" {
		t.Errorf("Schedules = %s, want quiet", got)
	}
}

func TestAgenda_GetMonthInfo(t *testing.T) {
	agenda := newTestAgenda(t)

	info, err := agenda.GetMonthInfo(2024, time.January, "standup", "retro", "payday")
	if err != nil {
		t.Fatalf("GetMonthInfo() error = %v", err)
	}

	if len(info.Days) != 31 {
		t.Errorf("Days count = %d, want 31", len(info.Days))
	}

	wantCounts := map[string]int{"standup": 23, "retro": 3, "payday": 1}
	for name, want := range wantCounts {
		if got := info.Counts[name]; got != want {
			t.Errorf("Counts[%s] = %d, want %d", name, got, want)
		}
	}

	jan31 := info.Days[30]
	if got := strings.Join(jan31.Schedules, ","); got != "standup,retro,payday" {
		t.Errorf("Jan 31 schedules = %s, want standup,retro,payday", got)
	}
}

func TestAgenda_GetMonthInfo_AllSchedules(t *testing.T) {
	agenda := newTestAgenda(t)

	info, err := agenda.GetMonthInfo(2024, time.February)
	if err != nil {
		t.Fatalf("GetMonthInfo() error = %v", err)
	}
	if len(info.Days) != 29 {
		t.Errorf("Days count = %d, want 29", len(info.Days))
	}
	if got := len(info.Counts); got != 10 {
		t.Errorf("Counts has %d schedules, want 10", got)
	}
	// payday started on the 31st only matches months that have one
	if got := info.Counts["payday"]; got != 0 {
		t.Errorf("Counts[payday] = %d, want 0", got)
	}
}

func TestAgenda_GetMonthInfo_Errors(t *testing.T) {
	agenda := newTestAgenda(t)

	if _, err := agenda.GetMonthInfo(2024, 13); !errors.Is(err, dateutil.ErrInvalidDateArgument) {
		t.Errorf("GetMonthInfo(13) error = %v, want ErrInvalidDateArgument", err)
	}
	if _, err := agenda.GetMonthInfo(2024, time.March, "nope"); !errors.Is(err, ErrUnknownSchedule) {
		t.Errorf("GetMonthInfo(nope) error = %v, want ErrUnknownSchedule", err)
	}
}

func TestAgenda_Upcoming(t *testing.T) {
	agenda := newTestAgenda(t)

	tests := []struct {
		name  string
		from  dateutil.Date
		count int
		want  []string
	}{
		{
			name:  "retro",
			from:  dateutil.MustDate(2024, 1, 4),
			count: 3,
			want:  []string{"2024-01-17", "2024-01-31", "2024-02-14"},
		},
		{
			name:  "retro",
			from:  dateutil.MustDate(2024, 12, 1),
			count: 5,
			want:  []string{"2024-12-04", "2024-12-18"}, // until 2024-12-31
		},
		{
			name:  "payday",
			from:  dateutil.MustDate(2024, 1, 1),
			count: 3,
			want:  []string{"2024-01-31", "2024-02-29", "2024-03-31"},
		},
		{
			name:  "quiet",
			from:  dateutil.MustDate(2024, 1, 1),
			count: 2,
			want:  []string{"2024-01-06", "2024-01-07"},
		},
		{
			name:  "review",
			from:  dateutil.MustDate(2024, 5, 1),
			count: 4,
			want:  []string{"2024-05-31", "2024-06-28"},
		},
		{
			name:  "leap",
			from:  dateutil.MustDate(2008, 1, 1),
			count: 3,
			want:  []string{"2008-02-29", "2012-02-29", "2016-02-29"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := agenda.Upcoming(tt.name, tt.from, tt.count)
			if err != nil {
				t.Fatalf("Upcoming() error = %v", err)
			}

			got := make([]string, len(dates))
			for i, d := range dates {
				got[i] = d.String()
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Upcoming(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAgenda_Upcoming_Errors(t *testing.T) {
	agenda := newTestAgenda(t)

	if _, err := agenda.Upcoming("retro", dateutil.MustDate(2024, 1, 1), 0); err == nil {
		t.Error("Upcoming() with count 0 should fail")
	}
	if _, err := agenda.Upcoming("nope", dateutil.MustDate(2024, 1, 1), 1); !errors.Is(err, ErrUnknownSchedule) {
		t.Errorf("Upcoming(nope) error = %v, want ErrUnknownSchedule", err)
	}
}
