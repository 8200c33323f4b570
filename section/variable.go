package section

import (
	"fmt"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/format"
	"github.com/arloliu/bd1/internal/binio"
)

// Variable describes one fixed-width field, either a structure variable stored
// once per structure in the catalog or a time-series variable stored once per
// structure per time step.
type Variable struct {
	Name            string
	Kind            format.StorageKind
	ByteLength      int
	IncludeInReport bool
	// ReportHeader is set for structure variables.
	ReportHeader string
	// Units is set for time-series variables.
	Units string
	// StartOffset is the byte offset of the value inside one record.
	// Only meaningful for time-series variables.
	StartOffset int
}

// Is reports whether the variable carries the given reserved name.
func (v *Variable) Is(reserved string) bool {
	return isReserved(v.Name, reserved)
}

// validate checks that the declared length can hold a value of the declared kind.
func (v *Variable) validate() error {
	switch v.Kind {
	case format.KindReal, format.KindInteger:
		if v.ByteLength != 4 && v.ByteLength != 8 {
			return fmt.Errorf("%w: %s variable of %d bytes", errs.ErrInvalidVariableLength, v.Kind, v.ByteLength)
		}
	case format.KindText:
		if v.ByteLength <= 0 {
			return fmt.Errorf("%w: text variable of %d bytes", errs.ErrInvalidVariableLength, v.ByteLength)
		}
	default:
		return fmt.Errorf("%w: %q", errs.ErrUnknownStorageKind, byte(v.Kind))
	}

	return nil
}

// Read decodes one value of this variable at the reader's position.
func (v *Variable) Read(r *binio.Reader) (Value, error) {
	switch v.Kind {
	case format.KindReal:
		if v.ByteLength == 8 {
			f, err := r.ReadFloat64()
			return RealValue(f), err
		}
		f, err := r.ReadFloat32()

		return RealValue(float64(f)), err
	case format.KindInteger:
		if v.ByteLength == 8 {
			i, err := r.ReadInt64()
			return IntegerValue(i), err
		}
		i, err := r.ReadInt32()

		return IntegerValue(int64(i)), err
	case format.KindText:
		s, err := r.ReadText(v.ByteLength)
		return TextValue(s), err
	default:
		return Value{}, fmt.Errorf("%w: %q", errs.ErrUnknownStorageKind, byte(v.Kind))
	}
}

// ReadFloat decodes one numeric value at the reader's position and widens it to float64.
func (v *Variable) ReadFloat(r *binio.Reader) (float64, error) {
	val, err := v.Read(r)
	if err != nil {
		return 0, err
	}

	return val.Float(), nil
}

// readDescriptor reads one descriptor. extraWidth is the width of the trailing
// text field: the report header for structure variables, the units for time-series variables.
func readDescriptor(r *binio.Reader, w Widths, extraWidth int) (Variable, error) {
	code, err := r.ReadUint8()
	if err != nil {
		return Variable{}, err
	}

	length, err := readInt(r, w.Length)
	if err != nil {
		return Variable{}, err
	}

	name, err := r.ReadText(w.Name)
	if err != nil {
		return Variable{}, err
	}

	report, err := readInt(r, w.ReportFlag)
	if err != nil {
		return Variable{}, err
	}

	extra, err := r.ReadText(extraWidth)
	if err != nil {
		return Variable{}, err
	}

	v := Variable{
		Name:            name,
		ByteLength:      int(length),
		IncludeInReport: report != 0,
		ReportHeader:    extra,
	}

	kind, ok := format.ParseStorageKind(code)
	if !ok {
		return v, fmt.Errorf("%w: %q", errs.ErrUnknownStorageKind, code)
	}
	v.Kind = kind

	return v, v.validate()
}

// readInt reads a little-endian signed integer field of 1, 2, 4 or 8 bytes.
func readInt(r *binio.Reader, width int) (int64, error) {
	switch width {
	case 4:
		v, err := r.ReadInt32()
		return int64(v), err
	case 8:
		return r.ReadInt64()
	}

	buf, err := r.ReadBytes(width)
	if err != nil {
		return 0, err
	}

	switch width {
	case 1:
		return int64(int8(buf[0])), nil //nolint:gosec
	case 2:
		return int64(int16(r.Engine().Uint16(buf))), nil //nolint:gosec
	default:
		return 0, fmt.Errorf("unsupported integer field width %d", width)
	}
}
