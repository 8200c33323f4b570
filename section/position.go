package section

// Position returns the byte offset of one value in the data region.
//
// Months are absolute months (year*12 + month). The second return is false when
// target falls outside [start, end], or when block or variable do not exist.
// block must be a data block index taken from an OrderMap, not a catalog index.
//
// Position does no I/O.
func (h *FileHeader) Position(target, start, end, block, variable int) (int64, bool) {
	if target < start || target > end {
		return 0, false
	}
	if block < 0 || block >= h.NumStructures || variable < 0 || variable >= len(h.TimeSeriesVariables) {
		return 0, false
	}

	return h.HeaderLength +
		int64(block)*h.BlockSize +
		int64(target-start)*int64(h.RecordSize) +
		int64(h.TimeSeriesVariables[variable].StartOffset), true
}
