// Package endian provides the byte order used by data files and snapshots.
//
// Every multi-byte numeric field in a data file is little-endian. Readers and
// writers in this module take an EndianEngine instead of a bare binary.ByteOrder
// so that the same value can both decode fixed fields and append new ones:
//
//	engine := endian.GetLittleEndianEngine()
//	count := int32(engine.Uint32(buf[0:4]))
//	buf = engine.AppendUint32(buf, uint32(count))
//
// # Thread Safety
//
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"math"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// FileEngine returns the engine matching the on-disk byte order of data files.
func FileEngine() EndianEngine {
	return binary.LittleEndian
}

// Int32 decodes a signed 32-bit integer from the first four bytes of b.
func Int32(engine EndianEngine, b []byte) int32 {
	return int32(engine.Uint32(b)) //nolint:gosec
}

// Int64 decodes a signed 64-bit integer from the first eight bytes of b.
func Int64(engine EndianEngine, b []byte) int64 {
	return int64(engine.Uint64(b)) //nolint:gosec
}

// Float32 decodes an IEEE 754 single precision value from the first four bytes of b.
func Float32(engine EndianEngine, b []byte) float32 {
	return math.Float32frombits(engine.Uint32(b))
}

// Float64 decodes an IEEE 754 double precision value from the first eight bytes of b.
func Float64(engine EndianEngine, b []byte) float64 {
	return math.Float64frombits(engine.Uint64(b))
}

// AppendInt32 appends v as four bytes.
func AppendInt32(engine EndianEngine, b []byte, v int32) []byte {
	return engine.AppendUint32(b, uint32(v)) //nolint:gosec
}

// AppendFloat32 appends v as four bytes.
func AppendFloat32(engine EndianEngine, b []byte, v float32) []byte {
	return engine.AppendUint32(b, math.Float32bits(v))
}

// AppendFloat64 appends v as eight bytes.
func AppendFloat64(engine EndianEngine, b []byte, v float64) []byte {
	return engine.AppendUint64(b, math.Float64bits(v))
}
