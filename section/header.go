package section

import (
	"fmt"
	"math"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/format"
)

// FileHeader is the parsed header of a data file together with the sizes derived from it.
type FileHeader struct {
	NumStructures            int
	NumTimeSteps             int
	NumStructureVariables    int
	NumTimeSeriesVariables   int
	NumAnnualTimeSeriesSteps int

	StructureVariables  []Variable
	TimeSeriesVariables []Variable

	// HeaderLength is the byte length of everything before the first data block.
	HeaderLength int64
	// RecordSize is the byte size of one structure, one time step, all variables.
	RecordSize int
	// BlockSize is the byte size of one structure, all time steps, all variables.
	BlockSize int64
	// EstimatedFileLength is the file length implied by the header.
	EstimatedFileLength int64
}

// Interval returns the interval of the data stored in the file. Only monthly files exist.
func (h *FileHeader) Interval() format.Interval {
	return format.IntervalMonthly
}

// TimeSeriesVariableIndex returns the descriptor index of the named time-series
// variable, or -1. Names compare case-insensitively.
func (h *FileHeader) TimeSeriesVariableIndex(name string) int {
	for i := range h.TimeSeriesVariables {
		if h.TimeSeriesVariables[i].Is(name) {
			return i
		}
	}

	return -1
}

// StructureVariableIndex returns the descriptor index of the named structure
// variable, or -1. Names compare case-insensitively.
func (h *FileHeader) StructureVariableIndex(name string) int {
	for i := range h.StructureVariables {
		if h.StructureVariables[i].Is(name) {
			return i
		}
	}

	return -1
}

// BlockOffset returns the byte offset of the first record of a data block.
func (h *FileHeader) BlockOffset(block int) int64 {
	return h.HeaderLength + int64(block)*h.BlockSize
}

// computeLayout assigns time-series start offsets and the derived sizes.
// HeaderLength must already be set. Counts whose sizes overflow int64 are
// rejected with errs.ErrInvalidCount.
func (h *FileHeader) computeLayout() error {
	offset := 0
	for i := range h.TimeSeriesVariables {
		h.TimeSeriesVariables[i].StartOffset = offset
		offset += h.TimeSeriesVariables[i].ByteLength
	}
	h.RecordSize = offset

	steps, n := int64(h.NumTimeSteps), int64(h.NumStructures)
	if steps > 0 && int64(h.RecordSize) > math.MaxInt64/steps {
		return fmt.Errorf("%w: %d time steps of %d bytes", errs.ErrInvalidCount, steps, h.RecordSize)
	}
	h.BlockSize = int64(h.RecordSize) * steps

	if n > 0 && h.BlockSize > (math.MaxInt64-h.HeaderLength)/n {
		return fmt.Errorf("%w: %d blocks of %d bytes", errs.ErrInvalidCount, n, h.BlockSize)
	}
	h.EstimatedFileLength = h.HeaderLength + h.BlockSize*n

	return nil
}

// CatalogRowSize returns the byte size of one catalog row.
func (h *FileHeader) CatalogRowSize() int {
	size := 0
	for i := range h.StructureVariables {
		size += h.StructureVariables[i].ByteLength
	}

	return size
}
