package section

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/internal/binio"
)

// maxPrealloc bounds slice pre-allocation from untrusted header counts.
const maxPrealloc = 4096

// ReadHeader parses the header and the catalog starting at offset 0 of r.
//
// Parameters:
//   - r: Reader over the whole file
//   - w: Field widths (use DefaultWidths)
//
// Returns:
//   - *FileHeader: Counts, descriptors and derived sizes
//   - *Catalog: Structure IDs, names and raw structure variable values in catalog order
//   - error: *errs.FormatError for layout problems, *errs.IOError when the file ends early
func ReadHeader(r *binio.Reader, w Widths) (*FileHeader, *Catalog, error) {
	if !w.valid() {
		return nil, nil, formatErr(r.Pos(), "", "", fmt.Errorf("%w: unusable field widths %+v", errs.ErrInvalidCount, w))
	}

	r = r.At(0)
	h := &FileHeader{}

	if err := readCounts(r, w, h); err != nil {
		return nil, nil, err
	}
	if err := requireDescriptors(r, w, h); err != nil {
		return nil, nil, err
	}

	h.StructureVariables = make([]Variable, 0, min(h.NumStructureVariables, maxPrealloc))
	for i := range h.NumStructureVariables {
		start := r.Pos()
		v, err := readDescriptor(r, w, w.ReportHeader)
		if err != nil {
			return nil, nil, wrapRead(start, "", v.Name, fmt.Errorf("structure variable %d: %w", i, unexpected(err)))
		}
		h.StructureVariables = append(h.StructureVariables, v)
	}

	h.TimeSeriesVariables = make([]Variable, 0, min(h.NumTimeSeriesVariables, maxPrealloc))
	for i := range h.NumTimeSeriesVariables {
		start := r.Pos()
		v, err := readDescriptor(r, w, w.Units)
		if err != nil {
			return nil, nil, wrapRead(start, "", v.Name, fmt.Errorf("time-series variable %d: %w", i, unexpected(err)))
		}
		v.Units, v.ReportHeader = v.ReportHeader, ""
		h.TimeSeriesVariables = append(h.TimeSeriesVariables, v)
	}

	if err := planLayout(r, h); err != nil {
		return nil, nil, err
	}

	catalog, err := readCatalog(r, h)
	if err != nil {
		return nil, nil, err
	}

	return h, catalog, nil
}

// planLayout derives the layout from the descriptors before anything is sized
// from NumStructures, and checks that the file holds the whole catalog. With
// no catalog bytes to check, it checks the data blocks instead.
func planLayout(r *binio.Reader, h *FileHeader) error {
	catalogStart := r.Pos()
	rowSize := int64(h.CatalogRowSize())
	n := int64(h.NumStructures)

	if n > 0 && rowSize > (math.MaxInt64-catalogStart)/n {
		return formatErr(catalogStart, "", "",
			fmt.Errorf("%w: %d catalog rows of %d bytes", errs.ErrInvalidCount, n, rowSize))
	}
	h.HeaderLength = catalogStart + n*rowSize

	if err := h.computeLayout(); err != nil {
		return formatErr(catalogStart, "", "", err)
	}

	if err := r.Require(h.HeaderLength); err != nil {
		return errs.NewIOError("", fmt.Sprintf("read catalog of %d rows", n), catalogStart, err)
	}

	if rowSize == 0 {
		return requireBlocks(r, h)
	}

	return nil
}

// requireBlocks checks that the file reaches the "Structure Index" value of
// the last data block, which ResolveOrder reads from every block.
func requireBlocks(r *binio.Reader, h *FileHeader) error {
	if h.NumStructures == 0 {
		return nil
	}

	si := h.TimeSeriesVariableIndex(VarStructureIndex)
	if si < 0 {
		return formatErr(h.HeaderLength, "", VarStructureIndex,
			fmt.Errorf("%w: no %q time-series variable", errs.ErrUnresolvedStructureIndex, VarStructureIndex))
	}
	if h.NumTimeSteps == 0 {
		return formatErr(h.HeaderLength, "", "",
			fmt.Errorf("%w: no time steps for %d structures", errs.ErrInvalidTimeStepCount, h.NumStructures))
	}

	v := &h.TimeSeriesVariables[si]
	last := h.NumStructures - 1
	offset := h.BlockOffset(last) + int64(v.StartOffset)
	if err := r.Require(offset + int64(v.ByteLength)); err != nil {
		return errs.NewIOError("", fmt.Sprintf("read block %d", last), offset, err)
	}

	return nil
}

func readCounts(r *binio.Reader, w Widths, h *FileHeader) error {
	counts := [NumCountFields]*int{
		&h.NumStructures,
		&h.NumTimeSteps,
		&h.NumStructureVariables,
		&h.NumTimeSeriesVariables,
		&h.NumAnnualTimeSeriesSteps,
	}
	names := [NumCountFields]string{
		"structures", "time steps", "structure variables", "time-series variables", "annual time-series steps",
	}

	for i, dst := range counts {
		start := r.Pos()
		v, err := readInt(r, w.Count)
		if err != nil {
			return wrapRead(start, "", "", fmt.Errorf("count of %s: %w", names[i], unexpected(err)))
		}
		if v < 0 {
			return formatErr(start, "", "", fmt.Errorf("%w: %d %s", errs.ErrInvalidCount, v, names[i]))
		}
		*dst = int(v)
	}

	return nil
}

// requireDescriptors checks that the file holds every declared descriptor.
func requireDescriptors(r *binio.Reader, w Widths, h *FileHeader) error {
	start := r.Pos()
	size := int64(0)
	for _, part := range []struct{ count, width int }{
		{h.NumStructureVariables, w.StructureDescriptorSize()},
		{h.NumTimeSeriesVariables, w.TimeSeriesDescriptorSize()},
	} {
		if part.count > 0 && int64(part.width) > (math.MaxInt64-start-size)/int64(part.count) {
			return formatErr(start, "", "",
				fmt.Errorf("%w: %d descriptors of %d bytes", errs.ErrInvalidCount, part.count, part.width))
		}
		size += int64(part.count) * int64(part.width)
	}

	if err := r.Require(start + size); err != nil {
		return errs.NewIOError("", "read descriptors", start, err)
	}

	return nil
}

// readCatalog reads one row per structure and routes the reserved variables.
// The "Structure Index" value of a row selects its catalog slot, so it must be
// read before "Structure ID" and "Structure Name".
func readCatalog(r *binio.Reader, h *FileHeader) (*Catalog, error) {
	indexPos := h.StructureVariableIndex(VarStructureIndex)
	idPos := h.StructureVariableIndex(VarStructureID)
	namePos := h.StructureVariableIndex(VarStructureName)

	if indexPos >= 0 && ((idPos >= 0 && idPos < indexPos) || (namePos >= 0 && namePos < indexPos)) {
		return nil, formatErr(r.Pos(), "", VarStructureIndex, errs.ErrStructureIndexOrder)
	}

	n := h.NumStructures
	c := newCatalog(n, h.StructureVariables)
	filled := make([]bool, n)

	for row := range n {
		values := make([]Value, len(h.StructureVariables))
		slot := row
		if indexPos >= 0 {
			slot = -1
		}

		for i := range h.StructureVariables {
			v := &h.StructureVariables[i]
			start := r.Pos()

			val, err := v.Read(r)
			if err != nil {
				return nil, wrapRead(start, c.idAt(slot), v.Name, fmt.Errorf("catalog row %d: %w", row, unexpected(err)))
			}
			values[i] = val

			switch i {
			case indexPos:
				idx, ok := val.Int()
				if !ok || idx < 1 || idx > int64(n) {
					return nil, formatErr(start, "", v.Name,
						fmt.Errorf("%w: catalog row %d has index %s of %d", errs.ErrStructureIndexOutOfRange, row, val, n))
				}
				slot = int(idx) - 1
				if filled[slot] {
					return nil, formatErr(start, "", v.Name,
						fmt.Errorf("%w: catalog row %d repeats index %d", errs.ErrDuplicateStructureIndex, row, idx))
				}
			case idPos:
				c.IDs[slot] = val.String()
			case namePos:
				c.Names[slot] = val.String()
			}
		}

		filled[slot] = true
		c.Values[slot] = values
	}

	c.buildIndex()

	return c, nil
}

func (c *Catalog) idAt(slot int) string {
	if slot < 0 || slot >= len(c.IDs) {
		return ""
	}

	return c.IDs[slot]
}

// unexpected reports a header that ends at a field boundary as io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

func formatErr(offset int64, structure, variable string, err error) error {
	return &errs.FormatError{Structure: structure, Variable: variable, Offset: offset, Err: err}
}

// wrapRead classifies a failure while reading header bytes: an unusable
// descriptor is a FormatError, anything else (running out of file) is an IOError.
func wrapRead(offset int64, structure, variable string, err error) error {
	if isLayoutErr(err) {
		return formatErr(offset, structure, variable, err)
	}

	return errs.NewIOError("", "read header", offset, err)
}

// isLayoutErr reports whether a decode failure comes from the descriptors rather than the file bytes.
func isLayoutErr(err error) bool {
	return errors.Is(err, errs.ErrUnknownStorageKind) ||
		errors.Is(err, errs.ErrInvalidVariableLength) ||
		errors.Is(err, errs.ErrUnresolvedStructureIndex) ||
		errors.Is(err, errs.ErrMissingPeriodVariable)
}
