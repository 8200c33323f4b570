// Package compress provides the codecs used for series snapshot payloads.
//
// A snapshot (see the series package) stores the result of a query so that it
// can be cached or shipped without keeping the data file open. The encoded
// payload is passed through one of these codecs before it is written:
//   - None: No compression
//   - Zstd: Best ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fastest decompression
//
// The algorithm is recorded in the snapshot header as a format.CompressionType,
// so readers pick the matching codec with GetCodec.
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(payload)
//
// # Zstd Backends
//
// Zstd uses github.com/klauspost/compress/zstd by default. Building with the
// gozstd tag (and cgo enabled) switches to the cgo binding
// github.com/valyala/gozstd. Both produce standard zstd frames, so snapshots
// written by one backend are readable by the other.
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool encoders, and can be
// shared across goroutines.
package compress
