package section

import (
	"fmt"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/internal/binio"
)

// OrderMap maps a catalog index to the index of the data block holding that
// structure's time series. It is a permutation of 0..NumStructures-1.
type OrderMap []int

// Block returns the data block index for a catalog index, or -1 when out of range.
func (m OrderMap) Block(catalogIndex int) int {
	if catalogIndex < 0 || catalogIndex >= len(m) {
		return -1
	}

	return m[catalogIndex]
}

// Validate checks that the map is a bijection over 0..len(m)-1.
func (m OrderMap) Validate() error {
	seen := make([]bool, len(m))
	for c, b := range m {
		if b < 0 || b >= len(m) {
			return fmt.Errorf("%w: catalog index %d has no data block", errs.ErrUnresolvedStructureIndex, c)
		}
		if seen[b] {
			return fmt.Errorf("%w: data block %d assigned twice", errs.ErrDuplicateStructureIndex, b)
		}
		seen[b] = true
	}

	return nil
}

// ResolveOrder reads the "Structure Index" value from the first record of every
// data block and builds the catalog-to-block map.
//
// Returns:
//   - OrderMap: catalog index → block index
//   - error: *errs.FormatError when the variable is missing, a block names an
//     index outside the catalog, two blocks name the same index, or a catalog
//     slot is left without a block; *errs.IOError when a block cannot be read
func ResolveOrder(r *binio.Reader, h *FileHeader) (OrderMap, error) {
	if err := requireBlocks(r, h); err != nil {
		return nil, err
	}

	m := make(OrderMap, h.NumStructures)
	for i := range m {
		m[i] = -1
	}

	for b := range h.NumStructures {
		offset := h.BlockOffset(b)
		br := r.At(offset)

		val, varOffset, err := scanRecord(br, h, VarStructureIndex)
		if err != nil {
			if isLayoutErr(err) {
				return nil, formatErr(varOffset, "", VarStructureIndex, fmt.Errorf("block %d: %w", b, err))
			}

			return nil, errs.NewIOError("", fmt.Sprintf("read block %d", b), varOffset, unexpected(err))
		}

		idx, ok := val.Int()
		if !ok || idx < 1 || idx > int64(h.NumStructures) {
			return nil, formatErr(varOffset, "", VarStructureIndex,
				fmt.Errorf("%w: block %d names index %s of %d", errs.ErrStructureIndexOutOfRange, b, val, h.NumStructures))
		}

		c := int(idx) - 1
		if m[c] >= 0 {
			return nil, formatErr(varOffset, "", VarStructureIndex,
				fmt.Errorf("%w: blocks %d and %d both name index %d", errs.ErrDuplicateStructureIndex, m[c], b, idx))
		}
		m[c] = b
	}

	if err := m.Validate(); err != nil {
		return nil, formatErr(h.HeaderLength, "", VarStructureIndex, err)
	}

	return m, nil
}

// scanRecord decodes the values of one record in descriptor order until the
// named variable, and returns its value and byte offset. Preceding values are
// decoded and discarded so a malformed record surfaces as an error.
func scanRecord(r *binio.Reader, h *FileHeader, name string) (Value, int64, error) {
	for i := range h.TimeSeriesVariables {
		v := &h.TimeSeriesVariables[i]
		offset := r.Pos()

		val, err := v.Read(r)
		if err != nil {
			return Value{}, offset, err
		}
		if v.Is(name) {
			return val, offset, nil
		}
	}

	return Value{}, r.Pos(), fmt.Errorf("%w: %q", errs.ErrUnresolvedStructureIndex, name)
}
