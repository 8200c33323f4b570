// Package period holds monthly dates and the period covered by a data file.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// YearMonth is a calendar month. Month runs from 1 to 12.
type YearMonth struct {
	Year  int
	Month int
}

// New returns the YearMonth for year and month, normalizing months outside 1..12.
func New(year, month int) YearMonth {
	return FromAbs(year*12 + month)
}

// FromAbs converts an absolute month (year*12 + month) back to a YearMonth.
func FromAbs(abs int) YearMonth {
	year := (abs - 1) / 12
	if abs-1 < 0 && (abs-1)%12 != 0 {
		year--
	}

	return YearMonth{Year: year, Month: abs - year*12}
}

// Parse reads "YYYY-MM" or "YYYY/MM".
func Parse(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	sep := strings.IndexAny(s, "-/")
	if sep <= 0 {
		return YearMonth{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}

	year, err := strconv.Atoi(s[:sep])
	if err != nil {
		return YearMonth{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}

	month, err := strconv.Atoi(s[sep+1:])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("invalid month in %q", s)
	}

	return YearMonth{Year: year, Month: month}, nil
}

// Abs returns the absolute month, year*12 + month.
func (ym YearMonth) Abs() int {
	return ym.Year*12 + ym.Month
}

// AddMonths returns ym shifted by n months.
func (ym YearMonth) AddMonths(n int) YearMonth {
	return FromAbs(ym.Abs() + n)
}

// Before reports whether ym is earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Abs() < other.Abs()
}

// After reports whether ym is later than other.
func (ym YearMonth) After(other YearMonth) bool {
	return ym.Abs() > other.Abs()
}

// IsZero reports whether ym is the zero value.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// Time returns the first instant of the month in UTC.
func (ym YearMonth) Time() time.Time {
	return time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC)
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Period is an inclusive range of months.
type Period struct {
	Start YearMonth
	End   YearMonth
}

// Months returns the number of months in the period, 0 when End precedes Start.
func (p Period) Months() int {
	n := p.End.Abs() - p.Start.Abs() + 1
	if n < 0 {
		return 0
	}

	return n
}

// Contains reports whether ym falls inside the period.
func (p Period) Contains(ym YearMonth) bool {
	abs := ym.Abs()
	return abs >= p.Start.Abs() && abs <= p.End.Abs()
}

// IsZero reports whether p is the zero value.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

func (p Period) String() string {
	return p.Start.String() + " to " + p.End.String()
}
