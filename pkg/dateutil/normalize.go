package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateArgument is returned when a value cannot be turned into a Date.
var ErrInvalidDateArgument = errors.New("invalid date argument")

// Named is a symbolic date constant accepted by Normalize
type Named string

const (
	EpochName Named = "epoch"
	TodayName Named = "today"
	NowName   Named = "now"
)

// clock is replaced in tests
var clock = time.Now

var dateFormats = []string{
	"2006-01-02",
	"02.01.2006",
	"2006/01/02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// Today returns the current local date
func Today() Date {
	return FromTime(clock())
}

// ParseDate parses date string in various formats
func ParseDate(dateStr string) (Date, error) {
	s := strings.TrimSpace(dateStr)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return FromTime(t), nil
		}
	}

	return Date{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidDateArgument, dateStr)
}

// Normalize converts one of the supported date-like shapes into a Date:
// Date, *Date, time.Time, Named, a string (ISO-like or a Named constant),
// or a (year, month, day) triple as [3]int or []int.
func Normalize(v any) (Date, error) {
	switch val := v.(type) {
	case Date:
		if val.IsZero() {
			return Date{}, fmt.Errorf("%w: zero date", ErrInvalidDateArgument)
		}
		return NewDate(val.Year, val.Month, val.Day)
	case *Date:
		if val == nil {
			return Date{}, fmt.Errorf("%w: nil date", ErrInvalidDateArgument)
		}
		return Normalize(*val)
	case time.Time:
		return FromTime(val), nil
	case Named:
		return fromNamed(val)
	case string:
		if d, err := fromNamed(Named(strings.ToLower(strings.TrimSpace(val)))); err == nil {
			return d, nil
		}
		return ParseDate(val)
	case [3]int:
		return NewDate(val[0], time.Month(val[1]), val[2])
	case []int:
		if len(val) != 3 {
			return Date{}, fmt.Errorf("%w: expected (year, month, day), got %d values",
				ErrInvalidDateArgument, len(val))
		}
		return NewDate(val[0], time.Month(val[1]), val[2])
	default:
		return Date{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDateArgument, v)
	}
}

func fromNamed(n Named) (Date, error) {
	switch n {
	case EpochName:
		return Date{Year: 1970, Month: time.January, Day: 1}, nil
	case TodayName, NowName:
		return Today(), nil
	default:
		return Date{}, fmt.Errorf("%w: unknown date constant %q", ErrInvalidDateArgument, string(n))
	}
}
