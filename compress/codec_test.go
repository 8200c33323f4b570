package compress

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bd1/endian"
	"github.com/arloliu/bd1/format"
)

func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

// monthlyPayload mimics a snapshot payload: float64 monthly values with a
// seasonal shape, which is what snapshots mostly carry.
func monthlyPayload(months int) []byte {
	engine := endian.GetLittleEndianEngine()
	buf := make([]byte, 0, months*8)
	for m := range months {
		v := 1000 + 250*math.Sin(float64(m%12)/12*2*math.Pi)
		buf = endian.AppendFloat64(engine, buf, math.Round(v))
	}

	return buf
}

func TestGetCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err, ct.String())
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0x7f))
	require.Error(t, err)
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)

			compressed, err = codec.Compress([]byte{})
			require.NoError(t, err)

			decompressed, err = codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"single_byte", []byte{0x42}},
		{"text", []byte("CU1..Flow.Month.")},
		{"repeated_pattern", bytes.Repeat([]byte("ABCD"), 100)},
		{"fifty_years_monthly", monthlyPayload(600)},
		{"many_series", bytes.Repeat(monthlyPayload(600), 64)},
		{"zeros", make([]byte, 1024*1024)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotNil(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_CompressesZeros(t *testing.T) {
	original := make([]byte, 1024*1024)

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue
		}
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(original)
			require.NoError(t, err)
			require.Less(t, len(compressed), len(original)/10)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{"random_bytes", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"text_as_compressed", []byte("this is not compressed data")},
		{"corrupted_header", []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		if codecName == "NoOp" {
			continue
		}
		t.Run(codecName, func(t *testing.T) {
			for _, input := range invalidInputs {
				_, err := codec.Decompress(input.data)
				require.Error(t, err, input.name)
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 20
	data := monthlyPayload(240)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			var wg sync.WaitGroup
			errCh := make(chan error, numGoroutines*2)
			for range numGoroutines {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, err := codec.Compress(data)
					errCh <- err
				}()
				go func() {
					defer wg.Done()
					out, err := codec.Decompress(compressed)
					if err == nil && !bytes.Equal(out, data) {
						err = fmt.Errorf("decompressed data mismatch")
					}
					errCh <- err
				}()
			}
			wg.Wait()
			close(errCh)

			for err := range errCh {
				require.NoError(t, err)
			}
		})
	}
}
