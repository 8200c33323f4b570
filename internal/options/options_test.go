package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type rangeConfig struct {
	start, end int
	readValues bool
	applied    []string
}

func withStart(abs int) Option[*rangeConfig] {
	return New(func(c *rangeConfig) error {
		if abs <= 0 {
			return errors.New("start month must be positive")
		}
		c.start = abs
		c.applied = append(c.applied, "start")

		return nil
	})
}

func withEnd(abs int) Option[*rangeConfig] {
	return NoError(func(c *rangeConfig) {
		c.end = abs
		c.applied = append(c.applied, "end")
	})
}

func withoutValues() Option[*rangeConfig] {
	return NoError(func(c *rangeConfig) {
		c.readValues = false
		c.applied = append(c.applied, "metadata")
	})
}

func TestApply(t *testing.T) {
	t.Run("AppliesInOrder", func(t *testing.T) {
		c := &rangeConfig{readValues: true}
		err := Apply(c, withStart(23401), withEnd(23424), withoutValues())
		require.NoError(t, err)
		require.Equal(t, 23401, c.start)
		require.Equal(t, 23424, c.end)
		require.False(t, c.readValues)
		require.Equal(t, []string{"start", "end", "metadata"}, c.applied)
	})

	t.Run("StopsAtFirstError", func(t *testing.T) {
		c := &rangeConfig{}
		err := Apply(c, withEnd(10), withStart(-1), withoutValues())
		require.EqualError(t, err, "start month must be positive")
		require.Equal(t, []string{"end"}, c.applied)
	})

	t.Run("NoOptions", func(t *testing.T) {
		c := &rangeConfig{readValues: true}
		require.NoError(t, Apply(c))
		require.True(t, c.readValues)
		require.Empty(t, c.applied)
	})

	t.Run("SkipsNil", func(t *testing.T) {
		c := &rangeConfig{}
		require.NoError(t, Apply(c, nil, withEnd(5)))
		require.Equal(t, 5, c.end)
	})
}

func TestFunc_NonPointerTarget(t *testing.T) {
	var n int
	require.NoError(t, NoError(func(p *int) { *p = 42 }).apply(&n))
	require.Equal(t, 42, n)
}
