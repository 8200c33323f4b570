package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/bd1/errs"
)

func TestRegistry_OpenShares(t *testing.T) {
	path := writeFixture(t, "ditches.bd1", ditches(nil).Build())
	reg := NewRegistry()
	defer reg.CloseAll()

	a, err := reg.Open(path)
	require.NoError(t, err)

	b, err := reg.Open(filepath.Join(filepath.Dir(path), ".", "ditches.bd1"))
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, 1, reg.Len())
}

func TestRegistry_Symlink(t *testing.T) {
	path := writeFixture(t, "ditches.bd1", ditches(nil).Build())
	link := filepath.Join(t.TempDir(), "link.bd1")
	if err := os.Symlink(path, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	reg := NewRegistry()
	defer reg.CloseAll()

	a, err := reg.Open(path)
	require.NoError(t, err)
	b, err := reg.Open(link)
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, CanonicalPath(path), CanonicalPath(link))
}

func TestRegistry_Close(t *testing.T) {
	path := writeFixture(t, "ditches.bd1", ditches(nil).Build())
	reg := NewRegistry()

	a, err := reg.Open(path)
	require.NoError(t, err)
	shared, err := reg.Open(path)
	require.NoError(t, err)

	require.NoError(t, reg.Close(a))
	require.Equal(t, 0, reg.Len())

	// No reference counting: every holder sees the close.
	_, err = shared.Query("")
	require.ErrorIs(t, err, errs.ErrSessionClosed)

	b, err := reg.Open(path)
	require.NoError(t, err)
	require.NotSame(t, a, b)

	list, err := b.Query("CU1.*.Flow")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, reg.Close(nil))
	require.NoError(t, reg.CloseAll())
	require.True(t, b.Closed())
}

func TestRegistry_ReopensDirectlyClosed(t *testing.T) {
	path := writeFixture(t, "ditches.bd1", ditches(nil).Build())
	reg := NewRegistry()
	defer reg.CloseAll()

	a, err := reg.Open(path)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := reg.Open(path)
	require.NoError(t, err)
	require.NotSame(t, a, b)
	require.False(t, b.Closed())
	require.Equal(t, 1, reg.Len())
}

func TestRegistry_OpenErrorNotCached(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Open(filepath.Join(t.TempDir(), "missing.bd1"))
	require.ErrorIs(t, err, errs.ErrIO)

	_, err = reg.Open(writeFixture(t, "ditches.dat", ditches(nil).Build()))
	require.ErrorIs(t, err, errs.ErrUnsupportedExtension)

	require.Equal(t, 0, reg.Len())
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := NewRegistry()
	var opened []*Session
	for _, name := range []string{"a.bd1", "b.bd1", "c.bd1"} {
		s, err := reg.Open(writeFixture(t, name, ditches(nil).Build()))
		require.NoError(t, err)
		opened = append(opened, s)
	}
	require.Equal(t, 3, reg.Len())

	require.NoError(t, reg.CloseAll())
	require.Equal(t, 0, reg.Len())
	for _, s := range opened {
		require.True(t, s.Closed())
	}
}

func TestRegistry_ExtensionOfCallerPath(t *testing.T) {
	dir := t.TempDir()
	data := writeFixture(t, "data.bin", ditches(nil).Build())
	target := writeFixture(t, "real.bd1", ditches(nil).Build())

	bd1Link := filepath.Join(dir, "ditches.bd1")
	txtLink := filepath.Join(dir, "alias.txt")
	if err := os.Symlink(data, bd1Link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(target, txtLink))

	reg := NewRegistry()
	defer reg.CloseAll()

	direct, err := Open(bd1Link)
	require.NoError(t, err)
	require.NoError(t, direct.Close())

	s, err := reg.Open(bd1Link)
	require.NoError(t, err)
	require.Equal(t, bd1Link, s.Path())

	_, err = Open(txtLink)
	require.ErrorIs(t, err, errs.ErrUnsupportedExtension)

	_, err = reg.Open(txtLink)
	require.ErrorIs(t, err, errs.ErrUnsupportedExtension)

	// A cached session is not reachable through a link with the wrong extension.
	_, err = reg.Open(target)
	require.NoError(t, err)
	_, err = reg.Open(txtLink)
	require.ErrorIs(t, err, errs.ErrUnsupportedExtension)
	require.Equal(t, 2, reg.Len())
}
