// Package hash computes stable 64-bit identifiers for time series.
package hash

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Sum computes the xxHash64 of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// SeriesID identifies a series by location and parameter. Both parts are
// case-folded to match identifier matching, which is case-insensitive.
func SeriesID(location, parameter string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(strings.ToUpper(location))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(strings.ToUpper(parameter))

	return d.Sum64()
}
