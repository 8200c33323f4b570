package period

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/internal/binio"
	"github.com/arloliu/bd1/section"
)

// Derive reads the "Year" and "Month Index" values of the first record in the
// data region (block 0, time step 0) and returns the period the file covers.
//
// Returns:
//   - Period: Start is the first record's month, End is NumTimeSteps-1 months later
//   - error: *errs.FormatError when either variable is missing, the month index
//     is not 1 or NumTimeSteps is not a whole number of years; *errs.IOError
//     when the first record cannot be read
func Derive(r *binio.Reader, h *section.FileHeader) (Period, error) {
	if h.NumTimeSteps%12 != 0 {
		return Period{}, formatErr(h.HeaderLength, "",
			fmt.Errorf("%w: %d time steps", errs.ErrInvalidTimeStepCount, h.NumTimeSteps))
	}

	yearIdx := h.TimeSeriesVariableIndex(section.VarYear)
	monthIdx := h.TimeSeriesVariableIndex(section.VarMonthIndex)
	if yearIdx < 0 || monthIdx < 0 {
		return Period{}, formatErr(h.HeaderLength, "", errs.ErrMissingPeriodVariable)
	}

	if h.NumStructures == 0 || h.NumTimeSteps == 0 {
		return Period{}, formatErr(h.HeaderLength, "",
			fmt.Errorf("%w: file has no data records", errs.ErrMissingPeriodVariable))
	}

	rr := r.At(h.HeaderLength)
	var year, month int
	var haveYear, haveMonth bool

	for i := range h.TimeSeriesVariables {
		v := &h.TimeSeriesVariables[i]
		offset := rr.Pos()

		if haveYear && haveMonth {
			// Both found: the remaining lengths only need to exist.
			if err := rr.Skip(h.RecordSize - v.StartOffset); err != nil {
				return Period{}, ioErr(offset, err)
			}

			break
		}

		val, err := v.Read(rr)
		if err != nil {
			return Period{}, ioErr(offset, err)
		}

		switch i {
		case yearIdx:
			y, ok := val.Int()
			if !ok {
				return Period{}, formatErr(offset, v.Name, fmt.Errorf("%w: year %q is not a number", errs.ErrMissingPeriodVariable, val))
			}
			year, haveYear = int(y), true
		case monthIdx:
			m, ok := val.Int()
			if !ok {
				return Period{}, formatErr(offset, v.Name, fmt.Errorf("%w: month index %q is not a number", errs.ErrMissingPeriodVariable, val))
			}
			if m != 1 {
				return Period{}, formatErr(offset, v.Name, fmt.Errorf("%w: got %d", errs.ErrInvalidStartMonth, m))
			}
			month, haveMonth = int(m), true
		}
	}

	start := YearMonth{Year: year, Month: month}

	return Period{Start: start, End: start.AddMonths(h.NumTimeSteps - 1)}, nil
}

func formatErr(offset int64, variable string, err error) error {
	return &errs.FormatError{Variable: variable, Offset: offset, Err: err}
}

func ioErr(offset int64, err error) error {
	if errors.Is(err, errs.ErrUnknownStorageKind) {
		return formatErr(offset, "", err)
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	return errs.NewIOError("", "read first record", offset, err)
}
