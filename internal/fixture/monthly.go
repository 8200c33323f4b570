package fixture

import "github.com/arloliu/bd1/format"

// Structure is one catalog row of a Monthly file.
type Structure struct {
	ID        string
	Name      string
	RiverNode string
}

// Monthly describes a typical monthly file: reserved structure variables plus a
// "River Node" attribute, and reserved time-series variables followed by Params.
type Monthly struct {
	// Structures in catalog order.
	Structures []Structure
	// BlockOrder[b] is the catalog index stored in data block b. Nil means identity.
	BlockOrder []int
	StartYear  int
	// FirstMonth is the month index stored in the first record. Zero means 1.
	FirstMonth   int
	NumTimeSteps int
	Params       []Variable
	// Value returns the stored value of a parameter. Nil stores catalog*1000 + step + param/10.
	Value func(catalog, step, param int) float64
	// OmitStructureIndex drops the "Structure Index" time-series variable.
	OmitStructureIndex bool
	// OmitMonthIndex drops the "Month Index" time-series variable.
	OmitMonthIndex bool
}

// DefaultValue is the value stored when Monthly.Value is nil.
func DefaultValue(catalog, step, param int) float64 {
	return float64(catalog*1000+step) + float64(param)/10
}

// StructureVars returns the structure descriptors used by Monthly files.
func StructureVars() []Variable {
	return []Variable{
		{Name: "Structure Index", Kind: format.KindInteger, Length: 4, Extra: "Index"},
		{Name: "Structure ID", Kind: format.KindText, Length: 12, Report: true, Extra: "ID"},
		{Name: "Structure Name", Kind: format.KindText, Length: 24, Report: true, Extra: "Name"},
		{Name: "River Node", Kind: format.KindText, Length: 12, Extra: "River Node ID"},
	}
}

// Flow returns a 4-byte Real parameter with the given name and units.
func Flow(name, units string) Variable {
	return Variable{Name: name, Kind: format.KindReal, Length: 4, Report: true, Extra: units}
}

// Build produces the File for m.
func (m Monthly) Build() *File {
	value := m.Value
	if value == nil {
		value = DefaultValue
	}
	firstMonth := m.FirstMonth
	if firstMonth == 0 {
		firstMonth = 1
	}

	f := &File{
		NumTimeSteps:  m.NumTimeSteps,
		AnnualSteps:   12,
		StructureVars: StructureVars(),
	}

	if !m.OmitStructureIndex {
		f.TimeSeriesVars = append(f.TimeSeriesVars, Variable{Name: "Structure Index", Kind: format.KindInteger, Length: 4})
	}
	f.TimeSeriesVars = append(f.TimeSeriesVars, Variable{Name: "Year", Kind: format.KindInteger, Length: 4})
	if !m.OmitMonthIndex {
		f.TimeSeriesVars = append(f.TimeSeriesVars, Variable{Name: "Month Index", Kind: format.KindInteger, Length: 4})
	}
	f.TimeSeriesVars = append(f.TimeSeriesVars, m.Params...)

	for i, s := range m.Structures {
		f.Catalog = append(f.Catalog, []any{i + 1, s.ID, s.Name, s.RiverNode})
	}

	for b := range m.Structures {
		c := b
		if m.BlockOrder != nil {
			c = m.BlockOrder[b]
		}

		block := make([][]any, 0, m.NumTimeSteps)
		for step := range m.NumTimeSteps {
			month := firstMonth - 1 + step
			record := make([]any, 0, len(f.TimeSeriesVars))
			if !m.OmitStructureIndex {
				record = append(record, c+1)
			}
			record = append(record, m.StartYear+month/12)
			if !m.OmitMonthIndex {
				record = append(record, month%12+1)
			}
			for p := range m.Params {
				record = append(record, value(c, step, p))
			}
			block = append(block, record)
		}
		f.Blocks = append(f.Blocks, block)
	}

	return f
}
