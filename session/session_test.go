package session

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/internal/fixture"
	"github.com/arloliu/bd1/period"
	"github.com/arloliu/bd1/section"
)

func ditches(blockOrder []int) fixture.Monthly {
	return fixture.Monthly{
		Structures: []fixture.Structure{
			{ID: "CU1", Name: "Upper Ditch", RiverNode: "N100"},
			{ID: "CU2", Name: "Lower Ditch", RiverNode: "N200"},
		},
		BlockOrder:   blockOrder,
		StartYear:    1950,
		NumTimeSteps: 24,
		Params: []fixture.Variable{
			fixture.Flow("Flow", "ACFT"),
			fixture.Flow("CU-10%", "ACFT"),
		},
	}
}

func writeFixture(t *testing.T, name string, f *fixture.File) string {
	t.Helper()

	return writeBytes(t, name, f.Bytes())
}

func writeBytes(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func openFixture(t *testing.T, m fixture.Monthly, opts ...Option) *Session {
	t.Helper()

	s, err := Open(writeFixture(t, "ditches.bd1", m.Build()), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestOpen(t *testing.T) {
	s := openFixture(t, ditches([]int{1, 0}))

	require.Equal(t, period.Period{Start: period.New(1950, 1), End: period.New(1951, 12)}, s.Period())
	require.Equal(t, 2, s.Header().NumStructures)
	require.Equal(t, []string{"CU1", "CU2"}, s.Catalog().IDs)
	require.Equal(t, section.OrderMap{1, 0}, s.OrderMap())
	require.Equal(t, "ditches.bd1", filepath.Base(s.Path()))

	require.Equal(t, []Structure{
		{CatalogIndex: 0, Block: 1, ID: "CU1", Name: "Upper Ditch"},
		{CatalogIndex: 1, Block: 0, ID: "CU2", Name: "Lower Ditch"},
	}, s.Structures())

	node, ok := s.Attribute("CU2", "river node")
	require.True(t, ok)
	require.Equal(t, section.TextValue("N200"), node)

	_, ok = s.Attribute("CU9", "River Node")
	require.False(t, ok)

	om := s.OrderMap()
	om[0] = 7
	require.Equal(t, 1, s.OrderMap()[0], "OrderMap returns a copy")
}

func TestOpen_Errors(t *testing.T) {
	t.Run("UnsupportedExtension", func(t *testing.T) {
		path := writeFixture(t, "ditches.txt", ditches(nil).Build())
		s, err := Open(path)
		require.Nil(t, s)
		require.ErrorIs(t, err, errs.ErrFormat)
		require.ErrorIs(t, err, errs.ErrUnsupportedExtension)
	})

	t.Run("ExtensionIsCaseInsensitive", func(t *testing.T) {
		s, err := Open(writeFixture(t, "DITCHES.BD1", ditches(nil).Build()))
		require.NoError(t, err)
		require.NoError(t, s.Close())
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "missing.bd1"))
		require.ErrorIs(t, err, errs.ErrIO)
	})

	t.Run("MissingStructureIndex", func(t *testing.T) {
		m := ditches(nil)
		m.OmitStructureIndex = true

		path := writeFixture(t, "ditches.bd1", m.Build())
		s, err := Open(path)
		require.Nil(t, s)
		require.ErrorIs(t, err, errs.ErrFormat)
		require.ErrorIs(t, err, errs.ErrUnresolvedStructureIndex)
		require.Contains(t, err.Error(), path)
	})

	t.Run("TruncatedHeader", func(t *testing.T) {
		f := ditches(nil).Build()
		data := f.Bytes()[:f.HeaderLength()-3]

		_, err := FromReader("short.bd1", bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrIO)
		require.Contains(t, err.Error(), "short.bd1")
	})

	t.Run("PartialYear", func(t *testing.T) {
		m := ditches(nil)
		m.NumTimeSteps = 18

		_, err := Open(writeFixture(t, "ditches.bd1", m.Build()))
		require.ErrorIs(t, err, errs.ErrInvalidTimeStepCount)
	})
}

func TestOpen_WarnsOnShortFile(t *testing.T) {
	f := ditches(nil).Build()
	data := f.Bytes()
	path := writeBytes(t, "short.bd1", data[:len(data)-f.RecordSize()])

	var logs bytes.Buffer
	s, err := Open(path, WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))
	require.NoError(t, err)
	defer s.Close()

	require.Contains(t, logs.String(), "shorter than its header implies")
}

func TestClose(t *testing.T) {
	s := openFixture(t, ditches(nil))
	require.False(t, s.Closed())

	require.NoError(t, s.Close())
	require.True(t, s.Closed())
	require.NoError(t, s.Close(), "second Close is a no-op")

	_, err := s.Query("")
	require.ErrorIs(t, err, errs.ErrSessionClosed)
}

func TestWithWidths(t *testing.T) {
	w := section.DefaultWidths()
	w.Name = 20

	_, err := Open(writeFixture(t, "ditches.bd1", ditches(nil).Build()), WithWidths(w))
	require.Error(t, err, "the file was written with 24 byte names")
}
