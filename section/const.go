package section

import "strings"

// Reserved variable names.
const (
	VarStructureIndex = "Structure Index"
	VarStructureID    = "Structure ID"
	VarStructureName  = "Structure Name"
	VarYear           = "Year"
	VarMonthIndex     = "Month Index"
)

// NumCountFields is the number of count fields at the start of the header.
const NumCountFields = 5

// Widths holds the byte widths of the fixed header fields.
type Widths struct {
	Count        int // each of the five header counts
	TypeCode     int // variable storage kind code
	Length       int // variable byte length
	Name         int // variable name
	ReportFlag   int // include-in-report flag
	ReportHeader int // structure variable report header text
	Units        int // time-series variable units
}

// DefaultWidths returns the widths used by every known writer of the format.
func DefaultWidths() Widths {
	return Widths{
		Count:        4,
		TypeCode:     1,
		Length:       4,
		Name:         24,
		ReportFlag:   4,
		ReportHeader: 60,
		Units:        10,
	}
}

// StructureDescriptorSize returns the byte size of one structure variable descriptor.
func (w Widths) StructureDescriptorSize() int {
	return w.TypeCode + w.Length + w.Name + w.ReportFlag + w.ReportHeader
}

// TimeSeriesDescriptorSize returns the byte size of one time-series variable descriptor.
func (w Widths) TimeSeriesDescriptorSize() int {
	return w.TypeCode + w.Length + w.Name + w.ReportFlag + w.Units
}

func (w Widths) valid() bool {
	intWidth := func(n int) bool { return n == 1 || n == 2 || n == 4 || n == 8 }

	return intWidth(w.Count) && intWidth(w.Length) && intWidth(w.ReportFlag) &&
		w.TypeCode == 1 && w.Name > 0 && w.ReportHeader >= 0 && w.Units >= 0
}

// isReserved compares variable names the way writers of the format do: trimmed, case-insensitive.
func isReserved(name, reserved string) bool {
	return strings.EqualFold(strings.TrimSpace(name), reserved)
}
