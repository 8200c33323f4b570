package series

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/format"
	"github.com/arloliu/bd1/period"
)

func sampleSeries() []*ResultSeries {
	full := newSeries(period.New(1950, 1), 24)
	for i := range full.Points {
		full.Points[i].Value = float64(1000 + i)
		full.Points[i].Missing = false
	}

	partial := newSeries(period.New(1950, 1), 30)
	partial.LocationID = "CU2"
	partial.Parameter = "CU-10%"
	partial.DeclaredPeriod.End = period.New(1951, 12)
	for i := range 24 {
		partial.Set(period.New(1950, 1).AddMonths(i), float64(i)/3)
	}

	truncated := newSeries(period.New(1950, 1), 12)
	truncated.LocationID = "CU3"
	truncated.Set(period.New(1950, 1), 7)
	truncated.Truncate(period.New(1950, 2))

	meta := &ResultSeries{
		LocationID:      "CU4",
		LocationName:    "",
		Parameter:       "Flow",
		Units:           "ACFT",
		Interval:        format.IntervalMonthly,
		DeclaredPeriod:  full.DeclaredPeriod,
		RequestedPeriod: full.DeclaredPeriod,
		Outcome:         OutcomeMetadataOnly,
	}

	return []*ResultSeries{full, partial, truncated, meta}
}

func requireSameSeries(t *testing.T, want, got *ResultSeries) {
	t.Helper()

	require.Equal(t, want.Identifier(), got.Identifier())
	require.Equal(t, want.LocationName, got.LocationName)
	require.Equal(t, want.Units, got.Units)
	require.Equal(t, want.DeclaredPeriod, got.DeclaredPeriod)
	require.Equal(t, want.RequestedPeriod, got.RequestedPeriod)
	require.Equal(t, want.Outcome, got.Outcome)
	require.Equal(t, want.TruncatedAt, got.TruncatedAt)
	require.Equal(t, want.Len(), got.Len())
	for i := range want.Points {
		require.Equal(t, want.Points[i].Month, got.Points[i].Month)
		require.Equal(t, want.Points[i].Missing, got.Points[i].Missing)
		if !want.Points[i].Missing {
			require.Equal(t, want.Points[i].Value, got.Points[i].Value)
		}
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	list := sampleSeries()

	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		t.Run(ct.String(), func(t *testing.T) {
			data, err := EncodeSnapshot(list, ct)
			require.NoError(t, err)

			snap, err := DecodeSnapshot(data)
			require.NoError(t, err)
			require.Equal(t, ct, snap.Compression)
			require.Len(t, snap.Series, len(list))
			for i := range list {
				requireSameSeries(t, list[i], snap.Series[i])
			}

			got, ok := snap.Lookup("cu2", "cu-10%")
			require.True(t, ok)
			require.Equal(t, "CU2", got.LocationID)
			require.Equal(t, 24, got.ValidCount())

			_, ok = snap.Lookup("CU9", "Flow")
			require.False(t, ok)
		})
	}
}

func TestSnapshot_Empty(t *testing.T) {
	data, err := EncodeSnapshot(nil, format.CompressionZstd)
	require.NoError(t, err)
	require.Len(t, data, SnapshotHeaderSize)

	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)
	require.Empty(t, snap.Series)
}

func TestSnapshot_UnsupportedCompression(t *testing.T) {
	_, err := EncodeSnapshot(sampleSeries(), format.CompressionType(0x7f))
	require.Error(t, err)
}

func TestDecodeSnapshot_Invalid(t *testing.T) {
	valid, err := EncodeSnapshot(sampleSeries(), format.CompressionNone)
	require.NoError(t, err)

	mutate := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return fn(b)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"Short", valid[:10]},
		{"BadMagic", mutate(func(b []byte) []byte { b[0] = 'X'; return b })},
		{"BadVersion", mutate(func(b []byte) []byte { b[4] = 9; return b })},
		{"BadCompression", mutate(func(b []byte) []byte { b[5] = 0x7f; return b })},
		{"Truncated", valid[:len(valid)-1]},
		{"TrailingGarbage", append(append([]byte(nil), valid...), 0)},
		{"FlippedPayload", mutate(func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b })},
		{"WrongIndexID", mutate(func(b []byte) []byte { b[SnapshotHeaderSize] ^= 0xff; return b })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSnapshot(tt.data)
			require.ErrorIs(t, err, errs.ErrInvalidSnapshot)
		})
	}
}
