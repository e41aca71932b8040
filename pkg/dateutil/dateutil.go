package dateutil

import "time"

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(date Date) Date {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return date.AddDays(-(weekday - 1))
}

// GetWeekNumber returns the ISO week number for the given date
func GetWeekNumber(date Date) (year int, week int) {
	year, week = date.Time().ISOWeek()
	return
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date Date) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date Date) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// NextWeekday returns the first date on or after date that falls on weekday
func NextWeekday(date Date, weekday time.Weekday) Date {
	offset := (int(weekday) - int(date.Weekday()) + 7) % 7
	return date.AddDays(offset)
}

// MonthsBetween returns the number of calendar months from `from` to `to`,
// ignoring the day of month.
func MonthsBetween(from, to Date) int {
	return (to.Year-from.Year)*12 + int(to.Month) - int(from.Month)
}

// AddMonthsClamped moves date forward by n months with year carry and clamps
// the day to min(day, days in the target month).
func AddMonthsClamped(date Date, n int, day int) Date {
	index := int(date.Month) - 1 + n
	year := date.Year + floorDiv(index, 12)
	month := time.Month(floorMod(index, 12) + 1)

	if last := DaysIn(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
