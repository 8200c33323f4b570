package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/arloliu/bd1/period"
	"github.com/arloliu/bd1/series"
	"github.com/arloliu/bd1/session"
)

type headerRecord struct {
	Path                string           `json:"path"`
	Structures          int              `json:"structures"`
	TimeSteps           int              `json:"time_steps"`
	Period              string           `json:"period"`
	HeaderLength        int64            `json:"header_length"`
	RecordSize          int              `json:"record_size"`
	EstimatedFileLength int64            `json:"estimated_file_length"`
	Variables           []variableRecord `json:"time_series_variables"`
}

type variableRecord struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Length int    `json:"length"`
	Offset int    `json:"offset"`
	Units  string `json:"units,omitempty"`
}

type structureRecord struct {
	Index      int               `json:"index"`
	Block      int               `json:"block"`
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func writeCatalog(w io.Writer, s *session.Session) error {
	enc := json.NewEncoder(w)
	h := s.Header()

	hdr := headerRecord{
		Path:                s.Path(),
		Structures:          h.NumStructures,
		TimeSteps:           h.NumTimeSteps,
		Period:              s.Period().String(),
		HeaderLength:        h.HeaderLength,
		RecordSize:          h.RecordSize,
		EstimatedFileLength: h.EstimatedFileLength,
	}
	hdr.Variables = make([]variableRecord, len(h.TimeSeriesVariables))
	for i, v := range h.TimeSeriesVariables {
		hdr.Variables[i] = variableRecord{
			Name:   v.Name,
			Kind:   v.Kind.String(),
			Length: v.ByteLength,
			Offset: v.StartOffset,
			Units:  v.Units,
		}
	}
	if err := enc.Encode(hdr); err != nil {
		return err
	}

	names := s.Catalog().AttributeNames()
	for _, st := range s.Structures() {
		rec := structureRecord{Index: st.CatalogIndex, Block: st.Block, ID: st.ID, Name: st.Name}
		for _, name := range names {
			if v, ok := s.Catalog().Attribute(st.CatalogIndex, name); ok {
				if rec.Attributes == nil {
					rec.Attributes = make(map[string]string, len(names))
				}
				rec.Attributes[name] = v.String()
			}
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}

	return nil
}

type pointRecord struct {
	Month string   `json:"month"`
	Value *float64 `json:"value"`
}

type seriesRecord struct {
	Identifier string        `json:"identifier"`
	Location   string        `json:"location"`
	Name       string        `json:"name"`
	Parameter  string        `json:"parameter"`
	Units      string        `json:"units"`
	Declared   string        `json:"declared_period"`
	Requested  string        `json:"requested_period"`
	Outcome    string        `json:"outcome"`
	Truncated  string        `json:"truncated_at,omitempty"`
	Valid      int           `json:"valid"`
	Points     []pointRecord `json:"points,omitempty"`
}

func writeNDJSON(w io.Writer, list []*series.ResultSeries) error {
	enc := json.NewEncoder(w)
	for _, rs := range list {
		rec := seriesRecord{
			Identifier: rs.Identifier(),
			Location:   rs.LocationID,
			Name:       rs.LocationName,
			Parameter:  rs.Parameter,
			Units:      rs.Units,
			Declared:   rs.DeclaredPeriod.String(),
			Requested:  rs.RequestedPeriod.String(),
			Outcome:    rs.Outcome.String(),
			Valid:      rs.ValidCount(),
		}
		if rs.Outcome == series.OutcomeTruncated {
			rec.Truncated = rs.TruncatedAt.String()
		}
		for _, p := range rs.Points {
			pr := pointRecord{Month: p.Month.String()}
			if !p.Missing {
				v := p.Value
				pr.Value = &v
			}
			rec.Points = append(rec.Points, pr)
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}

	return nil
}

// writeCSV writes one row per month of the union of requested periods and one
// column per series. Missing values are empty cells.
func writeCSV(w io.Writer, list []*series.ResultSeries) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(list)+1)
	header = append(header, "month")
	var span period.Period
	for i, rs := range list {
		header = append(header, rs.Identifier())
		if i == 0 || rs.RequestedPeriod.Start.Before(span.Start) {
			span.Start = rs.RequestedPeriod.Start
		}
		if i == 0 || rs.RequestedPeriod.End.After(span.End) {
			span.End = rs.RequestedPeriod.End
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if len(list) == 0 {
		cw.Flush()
		return cw.Error()
	}

	row := make([]string, len(list)+1)
	for m := range span.Months() {
		ym := span.Start.AddMonths(m)
		row[0] = ym.String()
		for i, rs := range list {
			row[i+1] = ""
			if v, ok := rs.Value(ym); ok {
				row[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
