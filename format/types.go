package format

import (
	"path/filepath"
	"strings"
)

type (
	StorageKind     uint8
	Interval        uint8
	CompressionType uint8
)

const (
	KindReal    StorageKind = 'R' // KindReal represents a 4 or 8 byte little-endian float.
	KindInteger StorageKind = 'I' // KindInteger represents a 4 or 8 byte little-endian signed integer.
	KindText    StorageKind = 'C' // KindText represents fixed-width, space padded text.

	IntervalUnknown Interval = 0x0 // IntervalUnknown represents an unrecognized file kind.
	IntervalMonthly Interval = 0x1 // IntervalMonthly represents monthly location data.
	IntervalDaily   Interval = 0x2 // IntervalDaily is declared by the format but not supported.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// MonthlyExtension is the only file extension currently recognized.
const MonthlyExtension = ".bd1"

// ParseStorageKind maps a one byte type code from a variable descriptor to a StorageKind.
// Lower-case codes are accepted. The second return is false for unknown codes.
func ParseStorageKind(code byte) (StorageKind, bool) {
	switch code {
	case 'R', 'r':
		return KindReal, true
	case 'I', 'i':
		return KindInteger, true
	case 'C', 'c':
		return KindText, true
	default:
		return 0, false
	}
}

// IntervalFromPath derives the interval of a data file from its extension.
func IntervalFromPath(path string) Interval {
	if strings.EqualFold(filepath.Ext(path), MonthlyExtension) {
		return IntervalMonthly
	}

	return IntervalUnknown
}

func (k StorageKind) String() string {
	switch k {
	case KindReal:
		return "Real"
	case KindInteger:
		return "Integer"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

func (i Interval) String() string {
	switch i {
	case IntervalMonthly:
		return "Month"
	case IntervalDaily:
		return "Day"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a case-insensitive name ("none", "zstd", "s2", "lz4") to a CompressionType.
func ParseCompression(name string) (CompressionType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
