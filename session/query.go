package session

import (
	"log/slog"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/format"
	"github.com/arloliu/bd1/internal/options"
	"github.com/arloliu/bd1/pattern"
	"github.com/arloliu/bd1/period"
	"github.com/arloliu/bd1/series"
)

// Query returns every series whose location and parameter match pat.
//
// pat has five dot-separated fields, location.source.parameter.interval.scenario,
// where '*' matches anything and every other character is literal. Only the
// location and parameter fields are used; the others are treated as '*'. An
// empty pattern matches every series. Only Real time-series variables are
// returned.
//
// Values cover the file's period unless WithRange, WithStart or WithEnd say
// otherwise. Months outside the file are missing. A read failure part way
// through a series ends that series with series.OutcomeTruncated and the query
// moves on to the next one.
//
// Results are in catalog order, then descriptor order. No match yields an
// empty list.
//
// Returns:
//   - []*series.ResultSeries: matching series, owned by the caller
//   - error: errs.ErrSessionClosed, errs.ErrInvalidPattern or errs.ErrInvalidRange
func (s *Session) Query(pat string, opts ...QueryOption) ([]*series.ResultSeries, error) {
	p, err := pattern.Parse(pat)
	if err != nil {
		return nil, err
	}
	p = p.Restrict(pattern.Source, pattern.Interval, pattern.Scenario)

	qc := &queryConfig{start: s.period.Start, end: s.period.End, readValues: true}
	if err := options.Apply(qc, opts...); err != nil {
		return nil, err
	}
	requested := period.Period{Start: qc.start, End: qc.end}
	if requested.End.Before(requested.Start) {
		return nil, errs.ErrInvalidRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errs.ErrSessionClosed
	}

	results := make([]*series.ResultSeries, 0)
	for c := range s.catalog.Len() {
		id := s.catalog.IDs[c]
		if !p.MatchField(pattern.Location, id) {
			continue
		}

		for vi := range s.header.TimeSeriesVariables {
			v := &s.header.TimeSeriesVariables[vi]
			if v.Kind != format.KindReal || !p.MatchField(pattern.Parameter, v.Name) {
				continue
			}

			rs := &series.ResultSeries{
				LocationID:      id,
				LocationName:    s.catalog.Names[c],
				Parameter:       v.Name,
				Units:           v.Units,
				Interval:        s.header.Interval(),
				DeclaredPeriod:  s.period,
				RequestedPeriod: requested,
			}

			if qc.readValues {
				s.fill(rs, s.order.Block(c), vi)
			} else {
				rs.Outcome = series.OutcomeMetadataOnly
			}
			results = append(results, rs)
		}
	}

	s.logger.Debug("query finished",
		slog.String("path", s.path),
		slog.String("pattern", p.String()),
		slog.String("requested", requested.String()),
		slog.Int("series", len(results)))

	return results, nil
}

// fill reads every month of rs.RequestedPeriod from one data block.
// s.mu must be held.
func (s *Session) fill(rs *series.ResultSeries, block, variable int) {
	rs.Allocate()

	v := &s.header.TimeSeriesVariables[variable]
	start, end := s.period.Start.Abs(), s.period.End.Abs()

	for i := range rs.Points {
		ym := rs.Points[i].Month
		pos, ok := s.header.Position(ym.Abs(), start, end, block, variable)
		if !ok {
			continue
		}

		s.r.Seek(pos)
		value, err := v.ReadFloat(s.r)
		if err != nil {
			rs.Truncate(ym)
			s.logger.Warn("series truncated",
				slog.String("series", rs.Identifier()),
				slog.String("month", ym.String()),
				slog.Any("error", errs.NewIOError(s.path, "read value", pos, err)))

			return
		}
		rs.Points[i].Value = value
		rs.Points[i].Missing = false
	}
}
