// Package series holds the time series returned by a query and a compact
// binary snapshot format for caching them.
package series

import (
	"iter"
	"math"
	"strings"

	"github.com/arloliu/bd1/format"
	"github.com/arloliu/bd1/internal/hash"
	"github.com/arloliu/bd1/period"
)

// Outcome reports how completely a series was populated.
type Outcome uint8

const (
	// OutcomeComplete means every month of the requested period was attempted.
	OutcomeComplete Outcome = iota
	// OutcomeTruncated means a read failed part way; months from TruncatedAt on are missing.
	OutcomeTruncated
	// OutcomeMetadataOnly means values were not requested.
	OutcomeMetadataOnly
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "Complete"
	case OutcomeTruncated:
		return "Truncated"
	case OutcomeMetadataOnly:
		return "MetadataOnly"
	default:
		return "Unknown"
	}
}

// Point is one month of a series.
type Point struct {
	Month   period.YearMonth
	Value   float64
	Missing bool
}

// ResultSeries is one (location, parameter) series. It is created per query
// and owned by the caller.
type ResultSeries struct {
	LocationID   string
	LocationName string
	Parameter    string
	Units        string
	Interval     format.Interval

	// DeclaredPeriod is the period covered by the file.
	DeclaredPeriod period.Period
	// RequestedPeriod is the period Points covers.
	RequestedPeriod period.Period

	// Points holds one entry per month of RequestedPeriod, in order. It is
	// empty when Outcome is OutcomeMetadataOnly.
	Points []Point

	Outcome Outcome
	// TruncatedAt is the first month that could not be read. Only set when
	// Outcome is OutcomeTruncated.
	TruncatedAt period.YearMonth
}

// Allocate sizes Points to RequestedPeriod with every month missing.
func (s *ResultSeries) Allocate() {
	n := s.RequestedPeriod.Months()
	s.Points = make([]Point, n)
	month := s.RequestedPeriod.Start
	for i := range s.Points {
		s.Points[i] = Point{Month: month, Value: math.NaN(), Missing: true}
		month = month.AddMonths(1)
	}
}

// Len returns the number of points, missing ones included.
func (s *ResultSeries) Len() int {
	return len(s.Points)
}

func (s *ResultSeries) index(ym period.YearMonth) (int, bool) {
	if len(s.Points) == 0 {
		return 0, false
	}
	i := ym.Abs() - s.Points[0].Month.Abs()
	if i < 0 || i >= len(s.Points) {
		return 0, false
	}

	return i, true
}

// Value returns the value for ym. The second return is false when ym is
// outside the requested period or the value is missing.
func (s *ResultSeries) Value(ym period.YearMonth) (float64, bool) {
	i, ok := s.index(ym)
	if !ok || s.Points[i].Missing {
		return math.NaN(), false
	}

	return s.Points[i].Value, true
}

// Set stores v for ym. It reports false when ym is outside the requested period.
func (s *ResultSeries) Set(ym period.YearMonth, v float64) bool {
	i, ok := s.index(ym)
	if !ok {
		return false
	}
	s.Points[i].Value = v
	s.Points[i].Missing = false

	return true
}

// Truncate marks the series as truncated at ym.
func (s *ResultSeries) Truncate(ym period.YearMonth) {
	s.Outcome = OutcomeTruncated
	s.TruncatedAt = ym
}

// All yields every non-missing (month, value) pair in date order.
func (s *ResultSeries) All() iter.Seq2[period.YearMonth, float64] {
	return func(yield func(period.YearMonth, float64) bool) {
		for _, p := range s.Points {
			if p.Missing {
				continue
			}
			if !yield(p.Month, p.Value) {
				return
			}
		}
	}
}

// Values returns a dense copy of the values with NaN for missing months.
func (s *ResultSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		if p.Missing {
			out[i] = math.NaN()
		} else {
			out[i] = p.Value
		}
	}

	return out
}

// ValidCount returns the number of non-missing points.
func (s *ResultSeries) ValidCount() int {
	n := 0
	for _, p := range s.Points {
		if !p.Missing {
			n++
		}
	}

	return n
}

// Identifier returns the five-field identifier
// location.source.parameter.interval.scenario. Source and scenario are empty
// for this file format.
func (s *ResultSeries) Identifier() string {
	return strings.Join([]string{s.LocationID, "", s.Parameter, s.Interval.String(), ""}, ".")
}

// ID returns the 64-bit series identifier, see hash.SeriesID.
func (s *ResultSeries) ID() uint64 {
	return hash.SeriesID(s.LocationID, s.Parameter)
}
