package series

import (
	"bytes"
	"fmt"
	"math"

	"github.com/arloliu/bd1/compress"
	"github.com/arloliu/bd1/endian"
	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/format"
	"github.com/arloliu/bd1/internal/hash"
	"github.com/arloliu/bd1/internal/pool"
	"github.com/arloliu/bd1/period"
)

// Snapshot layout, all fields little-endian:
//
//	+--------+---------+-------------+----------+-------+---------+---------+----------+----------+
//	| magic  | version | compression | reserved | count | packed  | raw     | checksum | reserved |
//	| 4 bytes| 1 byte  | 1 byte      | 2 bytes  | u32   | len u32 | len u32 | u64      | 4 bytes  |
//	+--------+---------+-------------+----------+-------+---------+---------+----------+----------+
//	| index: count x (series ID u64, raw offset u32, raw length u32)                               |
//	+-----------------------------------------------------------------------------------------------+
//	| payload: compressed concatenation of encoded series                                          |
//	+-----------------------------------------------------------------------------------------------+
//
// The checksum is the xxHash64 of the uncompressed payload.
const (
	SnapshotHeaderSize     = 32
	SnapshotIndexEntrySize = 16
	SnapshotVersion        = 1
)

var snapshotMagic = [4]byte{'B', 'D', '1', 'S'}

// Snapshot is a decoded set of series.
type Snapshot struct {
	Compression format.CompressionType
	Series      []*ResultSeries

	byID map[uint64]int
}

// Get returns the first series with the given ID.
func (s *Snapshot) Get(id uint64) (*ResultSeries, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}

	return s.Series[i], true
}

// Lookup returns the series for a location and parameter, compared case-insensitively.
func (s *Snapshot) Lookup(location, parameter string) (*ResultSeries, bool) {
	return s.Get(hash.SeriesID(location, parameter))
}

// EncodeSnapshot serializes list with the given compression.
//
// Returns:
//   - []byte: snapshot bytes, owned by the caller
//   - error: unsupported compression type, or a field too large for the format
func EncodeSnapshot(list []*ResultSeries, compression format.CompressionType) ([]byte, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}
	if uint64(len(list)) > math.MaxUint32 {
		return nil, fmt.Errorf("too many series for a snapshot: %d", len(list))
	}

	engine := endian.GetLittleEndianEngine()
	raw := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(raw)

	index := make([]byte, 0, len(list)*SnapshotIndexEntrySize)
	for _, s := range list {
		start := raw.Len()
		if err := appendSeries(engine, raw, s); err != nil {
			return nil, err
		}
		if raw.Len() > math.MaxUint32 {
			return nil, fmt.Errorf("snapshot payload exceeds %d bytes", uint32(math.MaxUint32))
		}
		index = engine.AppendUint64(index, s.ID())
		index = engine.AppendUint32(index, uint32(start))           //nolint:gosec
		index = engine.AppendUint32(index, uint32(raw.Len()-start)) //nolint:gosec
	}

	packed, err := codec.Compress(raw.Bytes())
	if err != nil {
		return nil, fmt.Errorf("compress snapshot payload: %w", err)
	}

	out := make([]byte, 0, SnapshotHeaderSize+len(index)+len(packed))
	out = append(out, snapshotMagic[:]...)
	out = append(out, SnapshotVersion, byte(compression), 0, 0)
	out = engine.AppendUint32(out, uint32(len(list)))   //nolint:gosec
	out = engine.AppendUint32(out, uint32(len(packed))) //nolint:gosec
	out = engine.AppendUint32(out, uint32(raw.Len()))   //nolint:gosec
	out = engine.AppendUint64(out, hash.Sum(raw.Bytes()))
	out = append(out, 0, 0, 0, 0)
	out = append(out, index...)
	out = append(out, packed...)

	return out, nil
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
//
// Returns errs.ErrInvalidSnapshot (wrapped) for a bad magic or version, an
// unknown compression type, inconsistent lengths or a checksum mismatch.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) < SnapshotHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", errs.ErrInvalidSnapshot, len(data))
	}
	if !bytes.Equal(data[:4], snapshotMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", errs.ErrInvalidSnapshot, data[:4])
	}
	if data[4] != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidSnapshot, data[4])
	}

	compression := format.CompressionType(data[5])
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidSnapshot, err)
	}

	engine := endian.GetLittleEndianEngine()
	count := int64(engine.Uint32(data[8:12]))
	packedLen := int64(engine.Uint32(data[12:16]))
	rawLen := int64(engine.Uint32(data[16:20]))
	checksum := engine.Uint64(data[20:28])

	indexEnd := SnapshotHeaderSize + count*SnapshotIndexEntrySize
	if indexEnd+packedLen != int64(len(data)) {
		return nil, fmt.Errorf("%w: %d series and %d payload bytes do not fit %d bytes",
			errs.ErrInvalidSnapshot, count, packedLen, len(data))
	}

	raw, err := codec.Decompress(data[indexEnd:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidSnapshot, err)
	}
	if int64(len(raw)) != rawLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", errs.ErrInvalidSnapshot, len(raw), rawLen)
	}
	if hash.Sum(raw) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", errs.ErrInvalidSnapshot)
	}

	snap := &Snapshot{
		Compression: compression,
		Series:      make([]*ResultSeries, 0, count),
		byID:        make(map[uint64]int, count),
	}

	for i := range count {
		entry := data[SnapshotHeaderSize+i*SnapshotIndexEntrySize:]
		id := engine.Uint64(entry[0:8])
		off := int64(engine.Uint32(entry[8:12]))
		n := int64(engine.Uint32(entry[12:16]))
		if off+n > rawLen {
			return nil, fmt.Errorf("%w: series %d spans [%d,%d) beyond payload", errs.ErrInvalidSnapshot, i, off, off+n)
		}

		s, err := decodeSeries(engine, raw[off:off+n])
		if err != nil {
			return nil, fmt.Errorf("%w: series %d: %w", errs.ErrInvalidSnapshot, i, err)
		}
		if s.ID() != id {
			return nil, fmt.Errorf("%w: series %d does not match its index ID", errs.ErrInvalidSnapshot, i)
		}

		if _, dup := snap.byID[id]; !dup {
			snap.byID[id] = len(snap.Series)
		}
		snap.Series = append(snap.Series, s)
	}

	return snap, nil
}

// appendSeries writes one series:
//
//	strings (u16 length + bytes): location ID, location name, parameter, units
//	interval u8, outcome u8
//	declared start, declared end, requested start, requested end, truncated at: absolute months, i32
//	point count u32, presence bitmap, then one f64 per present point
func appendSeries(engine endian.EndianEngine, bb *pool.ByteBuffer, s *ResultSeries) error {
	for _, str := range []string{s.LocationID, s.LocationName, s.Parameter, s.Units} {
		if len(str) > math.MaxUint16 {
			return fmt.Errorf("series %s: string field longer than %d bytes", s.Identifier(), math.MaxUint16)
		}
		bb.B = engine.AppendUint16(bb.B, uint16(len(str))) //nolint:gosec
		bb.B = append(bb.B, str...)
	}
	bb.B = append(bb.B, byte(s.Interval), byte(s.Outcome))

	for _, ym := range []period.YearMonth{
		s.DeclaredPeriod.Start, s.DeclaredPeriod.End,
		s.RequestedPeriod.Start, s.RequestedPeriod.End,
		s.TruncatedAt,
	} {
		bb.B = endian.AppendInt32(engine, bb.B, int32(ym.Abs())) //nolint:gosec
	}

	n := len(s.Points)
	bb.B = engine.AppendUint32(bb.B, uint32(n)) //nolint:gosec
	bb.Grow((n+7)/8 + n*8)

	bitmapAt := bb.Len()
	bb.B = append(bb.B, make([]byte, (n+7)/8)...)
	for i, p := range s.Points {
		if p.Missing {
			continue
		}
		bb.B[bitmapAt+i/8] |= 1 << (i % 8)
		bb.B = endian.AppendFloat64(engine, bb.B, p.Value)
	}

	return nil
}

type cursor struct {
	engine endian.EndianEngine
	b      []byte
}

func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || n > len(c.b) {
		return nil, fmt.Errorf("need %d bytes, %d left", n, len(c.b))
	}
	out := c.b[:n]
	c.b = c.b[n:]

	return out, nil
}

func (c *cursor) uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint16(b), nil
}

func (c *cursor) uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint32(b), nil
}

func (c *cursor) month() (period.YearMonth, error) {
	b, err := c.take(4)
	if err != nil {
		return period.YearMonth{}, err
	}
	abs := int(endian.Int32(c.engine, b))
	if abs == 0 {
		return period.YearMonth{}, nil
	}

	return period.FromAbs(abs), nil
}

func (c *cursor) text() (string, error) {
	n, err := c.uint16()
	if err != nil {
		return "", err
	}
	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func decodeSeries(engine endian.EndianEngine, b []byte) (*ResultSeries, error) {
	c := &cursor{engine: engine, b: b}
	s := &ResultSeries{}

	var err error
	for _, dst := range []*string{&s.LocationID, &s.LocationName, &s.Parameter, &s.Units} {
		if *dst, err = c.text(); err != nil {
			return nil, err
		}
	}

	kinds, err := c.take(2)
	if err != nil {
		return nil, err
	}
	s.Interval = format.Interval(kinds[0])
	s.Outcome = Outcome(kinds[1])

	for _, dst := range []*period.YearMonth{
		&s.DeclaredPeriod.Start, &s.DeclaredPeriod.End,
		&s.RequestedPeriod.Start, &s.RequestedPeriod.End,
		&s.TruncatedAt,
	} {
		if *dst, err = c.month(); err != nil {
			return nil, err
		}
	}

	n32, err := c.uint32()
	if err != nil {
		return nil, err
	}
	n := int(n32)
	if n != 0 && n != s.RequestedPeriod.Months() {
		return nil, fmt.Errorf("%d points for a %d month period", n, s.RequestedPeriod.Months())
	}

	bitmap, err := c.take((n + 7) / 8)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return s, nil
	}

	s.Allocate()
	for i := range s.Points {
		if bitmap[i/8]&(1<<(i%8)) == 0 {
			continue
		}
		v, err := c.take(8)
		if err != nil {
			return nil, err
		}
		s.Points[i].Value = endian.Float64(engine, v)
		s.Points[i].Missing = false
	}
	if len(c.b) != 0 {
		return nil, fmt.Errorf("%d trailing bytes", len(c.b))
	}

	return s, nil
}
