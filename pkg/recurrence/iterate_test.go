package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/recur/pkg/dateutil"
)

func take(t *testing.T, r *Recurrence, n int) []dateutil.Date {
	t.Helper()
	var out []dateutil.Date
	for date, err := range r.EachOccurrence() {
		require.NoError(t, err)
		out = append(out, date)
		if len(out) == n {
			break
		}
	}
	return out
}

func TestEachOccurrence_MonthlyClampsAgainstStartDay(t *testing.T) {
	r := mustNew(t, "2008-01-31", RuleSpec{Every: "month"})

	got := take(t, r, 4)
	want := []dateutil.Date{
		day(2008, 1, 31),
		day(2008, 2, 29),
		day(2008, 3, 31),
		day(2008, 4, 30),
	}
	assert.Equal(t, want, got)
}

func TestEachOccurrence_MonthlyCarriesYear(t *testing.T) {
	r := mustNew(t, "2008-11-30", RuleSpec{EveryNth: "month", Interval: 2})

	got := take(t, r, 4)
	want := []dateutil.Date{
		day(2008, 11, 30),
		day(2009, 1, 30),
		day(2009, 3, 30),
		day(2009, 5, 30),
	}
	assert.Equal(t, want, got)
}

func TestEachOccurrence_DailyAndWeekly(t *testing.T) {
	daily := mustNew(t, "2008-08-01", RuleSpec{EveryThird: "day"})
	assert.Equal(t, []dateutil.Date{
		day(2008, 8, 1), day(2008, 8, 4), day(2008, 8, 7),
	}, take(t, daily, 3))

	weekly := mustNew(t, "2008-08-29", RuleSpec{EveryOther: "week"})
	assert.Equal(t, []dateutil.Date{
		day(2008, 8, 29), day(2008, 9, 12), day(2008, 9, 26),
	}, take(t, weekly, 3))
}

func TestEachOccurrence_WeekdayStartsAtFirstMatch(t *testing.T) {
	r := mustNew(t, "2008-09-04", RuleSpec{EveryOther: "wednesday"}) // Thursday

	got := take(t, r, 3)
	assert.Equal(t, []dateutil.Date{
		day(2008, 9, 10), day(2008, 9, 24), day(2008, 10, 8),
	}, got)
	for _, d := range got {
		assert.True(t, r.OccursOn(d), d.String())
	}
}

func TestEachOccurrence_Yearly(t *testing.T) {
	r := mustNew(t, "2008-02-29", RuleSpec{EveryNth: "year", Interval: 4})
	assert.Equal(t, []dateutil.Date{
		day(2008, 2, 29), day(2012, 2, 29), day(2016, 2, 29),
	}, take(t, r, 3))
}

func TestEachOccurrence_YearlyFeb29HitsNonLeapYear(t *testing.T) {
	r := mustNew(t, "2008-02-29", RuleSpec{Every: "year"})

	var dates []dateutil.Date
	var lastErr error
	for date, err := range r.EachOccurrence() {
		if err != nil {
			lastErr = err
			break
		}
		dates = append(dates, date)
	}

	assert.Equal(t, []dateutil.Date{day(2008, 2, 29)}, dates)
	assert.ErrorIs(t, lastErr, ErrNonexistentDate)
	assert.ErrorContains(t, lastErr, "2009-02-29")
}

func TestEachOccurrence_QuadrennialFeb29StopsAtCenturyYear(t *testing.T) {
	r := mustNew(t, "2092-02-29", RuleSpec{EveryNth: "year", Interval: 4})

	var dates []dateutil.Date
	var lastErr error
	for date, err := range r.EachOccurrence() {
		if err != nil {
			lastErr = err
			break
		}
		dates = append(dates, date)
	}

	assert.Equal(t, []dateutil.Date{day(2092, 2, 29), day(2096, 2, 29)}, dates)
	assert.ErrorIs(t, lastErr, ErrNonexistentDate)
	assert.ErrorContains(t, lastErr, "2100-02-29")
}

func TestEachOccurrence_Unsupported(t *testing.T) {
	specs := []RuleSpec{
		{Every: "weekend"},
		{Every: "workday"},
		{EveryFirst: "monday", Of: "month"},
	}

	for _, spec := range specs {
		r := mustNew(t, "2008-09-01", spec)

		calls := 0
		for _, err := range r.EachOccurrence() {
			calls++
			assert.ErrorIs(t, err, ErrUnsupportedIteration)
		}
		assert.Equal(t, 1, calls, r.String())
	}
}

func TestEachOccurrence_IsRestartable(t *testing.T) {
	r := mustNew(t, "2008-08-01", RuleSpec{Every: "day"})

	first := take(t, r, 5)
	second := take(t, r, 5)
	assert.Equal(t, first, second)
	assert.Equal(t, day(2008, 8, 1), second[0])
}

func TestEachOccurrence_StrictlyIncreasing(t *testing.T) {
	specs := []RuleSpec{
		{Every: "day"},
		{Every: "month"},
		{EveryNth: "month", Interval: 5},
		{Every: "friday"},
		{EveryNth: "week", Interval: 3},
	}

	for _, spec := range specs {
		r := mustNew(t, "2008-01-31", spec)
		dates := take(t, r, 50)
		for i := 1; i < len(dates); i++ {
			require.True(t, dates[i].After(dates[i-1]), "%s: %s then %s", r, dates[i-1], dates[i])
		}
	}
}

func TestEachOccurrence_IgnoresEndDate(t *testing.T) {
	r := mustNew(t, "2008-08-01", RuleSpec{Every: "day", Until: "2008-08-02"})
	assert.Len(t, take(t, r, 5), 5)
}

func TestOccurrences(t *testing.T) {
	bounded := mustNew(t, "2008-08-01", RuleSpec{Every: "day", Until: "2008-08-05"})
	dates, err := bounded.Occurrences(0)
	require.NoError(t, err)
	assert.Len(t, dates, 5)
	assert.Equal(t, day(2008, 8, 5), dates[4])

	dates, err = bounded.Occurrences(2)
	require.NoError(t, err)
	assert.Len(t, dates, 2)

	open := mustNew(t, "2008-08-01", RuleSpec{Every: "day"})
	_, err = open.Occurrences(0)
	assert.Error(t, err)

	unsupported := mustNew(t, "2008-08-01", RuleSpec{Every: "weekend", Until: "2008-09-01"})
	_, err = unsupported.Occurrences(0)
	assert.ErrorIs(t, err, ErrUnsupportedIteration)
}

func TestBetween(t *testing.T) {
	r := mustNew(t, "2008-01-31", RuleSpec{Every: "month", Until: "2008-06-15"})

	dates, err := r.Between(day(2008, 3, 1), day(2008, 12, 31))
	require.NoError(t, err)
	assert.Equal(t, []dateutil.Date{
		day(2008, 3, 31), day(2008, 4, 30), day(2008, 5, 31),
	}, dates)
}
