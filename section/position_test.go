package section

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	h, _, err := readFixture(t, monthlyFixture(nil))
	require.NoError(t, err)

	start := 1950*12 + 1
	end := start + 23
	flow := h.TimeSeriesVariableIndex("Flow")

	t.Run("FirstValue", func(t *testing.T) {
		pos, ok := h.Position(start, start, end, 0, flow)
		require.True(t, ok)
		require.Equal(t, h.HeaderLength+12, pos)
	})

	t.Run("Arithmetic", func(t *testing.T) {
		pos, ok := h.Position(start+5, start, end, 1, flow)
		require.True(t, ok)
		require.Equal(t, h.HeaderLength+h.BlockSize+5*int64(h.RecordSize)+12, pos)
	})

	t.Run("LastValue", func(t *testing.T) {
		pos, ok := h.Position(end, start, end, 1, len(h.TimeSeriesVariables)-1)
		require.True(t, ok)
		require.Equal(t, h.EstimatedFileLength-4, pos)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, ok := h.Position(start-1, start, end, 0, flow)
		require.False(t, ok)
		_, ok = h.Position(end+1, start, end, 0, flow)
		require.False(t, ok)
		_, ok = h.Position(start, start, end, 2, flow)
		require.False(t, ok)
		_, ok = h.Position(start, start, end, 0, 99)
		require.False(t, ok)
	})

	t.Run("Deterministic", func(t *testing.T) {
		for target := start; target <= end; target++ {
			a, okA := h.Position(target, start, end, 1, flow)
			b, okB := h.Position(target, start, end, 1, flow)
			require.Equal(t, okA, okB)
			require.Equal(t, a, b)
		}
	})
}
