package section

import (
	"math"
	"strconv"

	"github.com/arloliu/bd1/format"
)

// Value is one decoded field: a Real, an Integer or a Text value.
// The zero Value has no kind and reports IsZero.
type Value struct {
	kind format.StorageKind
	real float64
	int  int64
	text string
}

// RealValue creates a Real value.
func RealValue(v float64) Value {
	return Value{kind: format.KindReal, real: v}
}

// IntegerValue creates an Integer value.
func IntegerValue(v int64) Value {
	return Value{kind: format.KindInteger, int: v}
}

// TextValue creates a Text value.
func TextValue(v string) Value {
	return Value{kind: format.KindText, text: v}
}

// Kind returns the storage kind of the value.
func (v Value) Kind() format.StorageKind {
	return v.kind
}

// IsZero reports whether v was never assigned.
func (v Value) IsZero() bool {
	return v.kind == 0
}

// Real returns the value of a Real. The second return is false for other kinds.
func (v Value) Real() (float64, bool) {
	return v.real, v.kind == format.KindReal
}

// Integer returns the value of an Integer. The second return is false for other kinds.
func (v Value) Integer() (int64, bool) {
	return v.int, v.kind == format.KindInteger
}

// Text returns the value of a Text. The second return is false for other kinds.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == format.KindText
}

// Float widens numeric values to float64. Text values parse as a number when possible,
// otherwise Float returns NaN.
func (v Value) Float() float64 {
	switch v.kind {
	case format.KindReal:
		return v.real
	case format.KindInteger:
		return float64(v.int)
	case format.KindText:
		if f, err := strconv.ParseFloat(v.text, 64); err == nil {
			return f
		}
	}

	return math.NaN()
}

// Int narrows numeric values to int64, truncating Real values toward zero.
// The second return is false for Text values and non-finite reals.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case format.KindInteger:
		return v.int, true
	case format.KindReal:
		if math.IsNaN(v.real) || math.IsInf(v.real, 0) {
			return 0, false
		}

		return int64(v.real), true
	default:
		return 0, false
	}
}

func (v Value) String() string {
	switch v.kind {
	case format.KindReal:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case format.KindInteger:
		return strconv.FormatInt(v.int, 10)
	case format.KindText:
		return v.text
	default:
		return ""
	}
}
