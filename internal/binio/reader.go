// Package binio provides positioned little-endian reads over an io.ReaderAt.
package binio

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/arloliu/bd1/endian"
)

// Reader reads fixed-width fields starting at a byte position and advances it.
//
// Reader does not own the underlying io.ReaderAt. Two readers created with At
// share the source but keep independent positions.
type Reader struct {
	r      io.ReaderAt
	engine endian.EndianEngine
	pos    int64
	size   int64 // -1 when the source does not report its size
	buf    [8]byte
}

// largeRead is the read size above which ReadBytes checks that the bytes
// exist before allocating a buffer for them.
const largeRead = 64 * 1024

// NewReader creates a reader positioned at offset 0.
//
// The source size is taken from a Size() int64 method (bytes.Reader,
// io.SectionReader) or from Stat (os.File) when available.
func NewReader(r io.ReaderAt) *Reader {
	return &Reader{r: r, engine: endian.FileEngine(), size: sourceSize(r)}
}

func sourceSize(r io.ReaderAt) int64 {
	switch src := r.(type) {
	case interface{ Size() int64 }:
		return src.Size()
	case interface{ Stat() (os.FileInfo, error) }:
		if info, err := src.Stat(); err == nil && info.Mode().IsRegular() {
			return info.Size()
		}
	}

	return -1
}

// At returns a new reader positioned at the given offset.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, engine: r.engine, pos: offset, size: r.size}
}

// Size returns the source size, and false when it is not known.
func (r *Reader) Size() (int64, bool) {
	return r.size, r.size >= 0
}

// Require checks that the source holds at least end bytes without reading
// them. When the size is unknown it probes the byte at end-1.
// It returns io.ErrUnexpectedEOF when the source is shorter.
func (r *Reader) Require(end int64) error {
	if end <= 0 {
		return nil
	}
	if r.size >= 0 {
		if end > r.size {
			return io.ErrUnexpectedEOF
		}

		return nil
	}

	var b [1]byte
	n, err := r.r.ReadAt(b[:], end-1)
	if n == 1 {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

// Seek moves the reader to an absolute offset.
func (r *Reader) Seek(offset int64) {
	r.pos = offset
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Engine returns the byte order used for numeric fields.
func (r *Reader) Engine() endian.EndianEngine {
	return r.engine
}

// ReadBytes reads exactly n bytes from the current position.
// A short read is reported as io.ErrUnexpectedEOF, or io.EOF when no byte was available.
// Slices of 8 bytes or less alias an internal buffer and are only valid until the next read.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}

	var buf []byte
	if n <= len(r.buf) {
		buf = r.buf[:n]
	} else {
		if n > largeRead {
			if err := r.Require(r.pos + int64(n)); err != nil {
				return nil, err
			}
		}
		buf = make([]byte, n)
	}

	if err := r.fill(buf); err != nil {
		return nil, err
	}

	return buf, nil
}

// Skip advances the position by n bytes after checking they exist.
func (r *Reader) Skip(n int) error {
	_, err := r.ReadBytes(n)
	return err
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}

	return buf[0], nil
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}

	return endian.Int32(r.engine, buf), nil
}

// ReadInt64 reads a signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}

	return endian.Int64(r.engine, buf), nil
}

// ReadFloat32 reads an IEEE 754 single precision value.
func (r *Reader) ReadFloat32() (float32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}

	return endian.Float32(r.engine, buf), nil
}

// ReadFloat64 reads an IEEE 754 double precision value.
func (r *Reader) ReadFloat64() (float64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}

	return endian.Float64(r.engine, buf), nil
}

// ReadText reads a fixed-width text field and trims padding.
// Trailing NUL bytes are treated as padding as well as spaces.
func (r *Reader) ReadText(n int) (string, error) {
	buf, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(strings.TrimRight(string(buf), "\x00")), nil
}

func (r *Reader) fill(buf []byte) error {
	n, err := r.r.ReadAt(buf, r.pos)
	if n == len(buf) {
		// io.ReaderAt may return io.EOF together with a full read at the end of the source.
		r.pos += int64(n)
		return nil
	}

	if err == nil || errors.Is(err, io.EOF) {
		if n == 0 {
			return io.EOF
		}

		return io.ErrUnexpectedEOF
	}

	return err
}
