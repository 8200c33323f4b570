// Package fixture builds byte-exact data files for tests.
package fixture

import (
	"fmt"
	"os"
	"strings"

	"github.com/arloliu/bd1/endian"
	"github.com/arloliu/bd1/format"
)

// Default field widths, duplicated from section.DefaultWidths so that section
// tests can use this package.
const (
	NameWidth         = 24
	ReportHeaderWidth = 60
	UnitsWidth        = 10
)

// Variable is a descriptor as written to the file.
type Variable struct {
	Name   string
	Kind   format.StorageKind
	Length int
	Report bool
	// Extra is the report header of a structure variable or the units of a time-series variable.
	Extra string
}

// File is the full content of a data file. Values are float64, int, int64 or string
// and are written according to the matching descriptor.
type File struct {
	NumTimeSteps   int
	AnnualSteps    int
	StructureVars  []Variable
	TimeSeriesVars []Variable
	// Catalog holds one row per structure, one value per structure variable.
	Catalog [][]any
	// Blocks holds [block][time step][time-series variable] values.
	Blocks [][][]any
	// NumStructures overrides len(Catalog) in the header when non-zero.
	NumStructures int
}

// Bytes serializes the file.
func (f *File) Bytes() []byte {
	engine := endian.FileEngine()

	ns := f.NumStructures
	if ns == 0 {
		ns = len(f.Catalog)
	}

	b := make([]byte, 0, 1024)
	b = endian.AppendInt32(engine, b, int32(ns))
	b = endian.AppendInt32(engine, b, int32(f.NumTimeSteps))
	b = endian.AppendInt32(engine, b, int32(len(f.StructureVars)))
	b = endian.AppendInt32(engine, b, int32(len(f.TimeSeriesVars)))
	b = endian.AppendInt32(engine, b, int32(f.AnnualSteps))

	for _, v := range f.StructureVars {
		b = appendDescriptor(b, v, ReportHeaderWidth)
	}
	for _, v := range f.TimeSeriesVars {
		b = appendDescriptor(b, v, UnitsWidth)
	}

	for _, row := range f.Catalog {
		for i, v := range f.StructureVars {
			b = appendValue(b, v, row[i])
		}
	}

	for _, block := range f.Blocks {
		for _, record := range block {
			for i, v := range f.TimeSeriesVars {
				b = appendValue(b, v, record[i])
			}
		}
	}

	return b
}

// HeaderLength returns the byte length of everything before the data region.
func (f *File) HeaderLength() int {
	n := 5*4 +
		len(f.StructureVars)*(1+4+NameWidth+4+ReportHeaderWidth) +
		len(f.TimeSeriesVars)*(1+4+NameWidth+4+UnitsWidth)
	for range f.Catalog {
		for _, v := range f.StructureVars {
			n += v.Length
		}
	}

	return n
}

// RecordSize returns the byte size of one time step of one structure.
func (f *File) RecordSize() int {
	n := 0
	for _, v := range f.TimeSeriesVars {
		n += v.Length
	}

	return n
}

// WriteFile writes the serialized file to path.
func (f *File) WriteFile(path string) error {
	return os.WriteFile(path, f.Bytes(), 0o600)
}

func appendDescriptor(b []byte, v Variable, extraWidth int) []byte {
	engine := endian.FileEngine()

	report := int32(0)
	if v.Report {
		report = 1
	}

	b = append(b, byte(v.Kind))
	b = endian.AppendInt32(engine, b, int32(v.Length))
	b = appendText(b, v.Name, NameWidth)
	b = endian.AppendInt32(engine, b, report)

	return appendText(b, v.Extra, extraWidth)
}

func appendValue(b []byte, v Variable, val any) []byte {
	engine := endian.FileEngine()

	switch v.Kind {
	case format.KindReal:
		f := toFloat(val)
		if v.Length == 8 {
			return endian.AppendFloat64(engine, b, f)
		}

		return endian.AppendFloat32(engine, b, float32(f))
	case format.KindInteger:
		i := int64(toFloat(val))
		if v.Length == 8 {
			return engine.AppendUint64(b, uint64(i)) //nolint:gosec
		}

		return endian.AppendInt32(engine, b, int32(i)) //nolint:gosec
	case format.KindText:
		return appendText(b, fmt.Sprint(val), v.Length)
	default:
		// Unknown kinds still occupy their declared length.
		return append(b, make([]byte, v.Length)...)
	}
}

func appendText(b []byte, s string, width int) []byte {
	if len(s) > width {
		s = s[:width]
	}

	b = append(b, s...)

	return append(b, strings.Repeat(" ", width-len(s))...)
}

func toFloat(val any) float64 {
	switch x := val.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	default:
		return 0
	}
}
