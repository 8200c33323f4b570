// Package session opens data files and answers time series queries against them.
//
// A Session owns one open file and its parsed layout. Sessions are safe for
// concurrent use; reads from one Session are serialized. A Registry shares
// sessions by canonical path.
//
//	s, err := session.Open("ditches.bd1", session.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	list, err := s.Query("CU*.*.Flow.*.*", session.WithRange(period.New(1950, 1), period.New(1959, 12)))
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/format"
	"github.com/arloliu/bd1/internal/binio"
	"github.com/arloliu/bd1/period"
	"github.com/arloliu/bd1/section"
)

// Session is an open data file with its header, catalog, block order and period.
type Session struct {
	mu     sync.Mutex
	closed bool

	path   string
	src    io.ReaderAt
	r      *binio.Reader
	logger *slog.Logger

	header  *section.FileHeader
	catalog *section.Catalog
	order   section.OrderMap
	period  period.Period
}

// Structure describes one location of the file.
type Structure struct {
	// CatalogIndex is the position in the header catalog.
	CatalogIndex int
	// Block is the data block holding the structure's values.
	Block int
	ID    string
	Name  string
}

// Open opens a data file and parses its layout.
//
// The file is rejected unless its extension names a supported interval. On
// any error the file is closed and no Session is returned.
//
// Returns:
//   - *Session: the open session; the caller must Close it
//   - error: *errs.FormatError for layout problems, *errs.IOError when the file
//     cannot be opened or read
func Open(path string, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	if format.IntervalFromPath(path) != format.IntervalMonthly {
		return nil, unsupportedExtension(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIOError(path, "open", -1, err)
	}

	s, err := load(path, f, cfg)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if info, statErr := f.Stat(); statErr == nil && info.Size() < s.header.EstimatedFileLength {
		s.logger.Warn("file is shorter than its header implies; late values will be missing",
			slog.String("path", path),
			slog.Int64("size", info.Size()),
			slog.Int64("expected", s.header.EstimatedFileLength))
	}

	return s, nil
}

// FromReader parses a data file read through r. name is used in errors and
// logs only. Close closes r when it implements io.Closer.
func FromReader(name string, r io.ReaderAt, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return load(name, r, cfg)
}

func unsupportedExtension(path string) error {
	return errs.NewFormatError(path, fmt.Errorf("%w: %q", errs.ErrUnsupportedExtension, filepath.Ext(path)))
}

func load(path string, src io.ReaderAt, cfg *config) (*Session, error) {
	r := binio.NewReader(src)

	header, catalog, err := section.ReadHeader(r, cfg.widths)
	if err != nil {
		return nil, errs.WithPath(err, path)
	}

	order, err := section.ResolveOrder(r, header)
	if err != nil {
		return nil, errs.WithPath(err, path)
	}

	p, err := period.Derive(r, header)
	if err != nil {
		return nil, errs.WithPath(err, path)
	}

	s := &Session{
		path:    path,
		src:     src,
		r:       r,
		logger:  cfg.logger,
		header:  header,
		catalog: catalog,
		order:   order,
		period:  p,
	}

	s.logger.Debug("opened data file",
		slog.String("path", path),
		slog.Int("structures", header.NumStructures),
		slog.Int("time_steps", header.NumTimeSteps),
		slog.Int("time_series_variables", header.NumTimeSeriesVariables),
		slog.Int64("header_length", header.HeaderLength),
		slog.Int("record_size", header.RecordSize),
		slog.String("period", p.String()))

	return s, nil
}

// Path returns the path the session was opened with.
func (s *Session) Path() string {
	return s.path
}

// Header returns the parsed header. It must not be modified.
func (s *Session) Header() *section.FileHeader {
	return s.header
}

// Catalog returns the structure catalog. It must not be modified.
func (s *Session) Catalog() *section.Catalog {
	return s.catalog
}

// Period returns the period covered by the file.
func (s *Session) Period() period.Period {
	return s.period
}

// OrderMap returns a copy of the catalog index to data block mapping.
func (s *Session) OrderMap() section.OrderMap {
	return append(section.OrderMap(nil), s.order...)
}

// Structures lists the file's locations in catalog order.
func (s *Session) Structures() []Structure {
	out := make([]Structure, s.catalog.Len())
	for i := range out {
		out[i] = Structure{
			CatalogIndex: i,
			Block:        s.order.Block(i),
			ID:           s.catalog.IDs[i],
			Name:         s.catalog.Names[i],
		}
	}

	return out
}

// Attribute returns a raw structure variable value for the structure with the given ID.
func (s *Session) Attribute(id, name string) (section.Value, bool) {
	return s.catalog.Attribute(s.catalog.IndexOf(id), name)
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Close releases the file. Closing a closed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if c, ok := s.src.(io.Closer); ok {
		if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			return errs.NewIOError(s.path, "close", -1, err)
		}
	}

	return nil
}
