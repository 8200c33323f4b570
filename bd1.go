// Package bd1 reads monthly multi-location binary time series files.
//
// A data file holds decades of monthly values for many physical locations
// ("structures"), each with several named parameters. The header declares the
// structure and time-series variables, then a catalog of structure metadata,
// followed by one fixed-size data block per structure. bd1 parses the header,
// resolves which data block belongs to which catalog entry, derives the
// period the file covers and extracts series selected by a wildcard pattern.
//
// # Basic Usage
//
//	s, err := bd1.Open("ditches.bd1")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	list, err := s.Query("CU*.*.Flow.*.*")
//	for _, rs := range list {
//	    for month, v := range rs.All() {
//	        fmt.Printf("%s %s %.2f %s\n", rs.LocationID, month, v, rs.Units)
//	    }
//	}
//
// # Sharing Sessions
//
// A Registry keeps one Session per canonical path so that independent callers
// can share an open file:
//
//	reg := bd1.NewRegistry(session.WithLogger(logger))
//	defer reg.CloseAll()
//
//	s, err := reg.Open(path)
//
// # Snapshots
//
// Query results can be serialized with series.EncodeSnapshot and read back
// with series.DecodeSnapshot, optionally compressed with zstd, s2 or lz4.
//
// # Package Structure
//
// This package provides convenience wrappers around the session package. Use
// section and period directly for low-level layout access.
package bd1

import (
	"github.com/arloliu/bd1/format"
	"github.com/arloliu/bd1/internal/hash"
	"github.com/arloliu/bd1/series"
	"github.com/arloliu/bd1/session"
)

// Open opens a data file.
//
// Available options:
//   - session.WithLogger(*slog.Logger)
//   - session.WithWidths(section.Widths)
//
// The caller must Close the returned session.
func Open(path string, opts ...session.Option) (*session.Session, error) {
	return session.Open(path, opts...)
}

// NewRegistry creates a session registry. opts apply to every session it opens.
func NewRegistry(opts ...session.Option) *session.Registry {
	return session.NewRegistry(opts...)
}

// SeriesID returns the 64-bit identifier of the series for a location and
// parameter, as used by snapshot indexes. Comparison is case-insensitive.
func SeriesID(location, parameter string) uint64 {
	return hash.SeriesID(location, parameter)
}

// Export queries s and returns the matching series as a snapshot.
//
// Parameters:
//   - s: Open session
//   - pattern: Five-field identifier pattern, see Session.Query
//   - compression: Snapshot payload compression
//   - opts: Query options such as session.WithRange
//
// Returns:
//   - []byte: Snapshot bytes
//   - int: Number of series in the snapshot
//   - error: Query or encoding error
func Export(s *session.Session, pattern string, compression format.CompressionType, opts ...session.QueryOption) ([]byte, int, error) {
	list, err := s.Query(pattern, opts...)
	if err != nil {
		return nil, 0, err
	}

	data, err := series.EncodeSnapshot(list, compression)
	if err != nil {
		return nil, 0, err
	}

	return data, len(list), nil
}
