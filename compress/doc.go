// Package compress provides the codecs used to shrink region map snapshots.
//
// A map image is small and mostly zero (unused slots are all-zero sentinel
// records), so every general-purpose algorithm compresses it well. The codec is
// chosen per snapshot and recorded in the snapshot header:
//
//   - None: the raw image
//   - Zstd: best ratio; klauspost/compress in pure-Go builds, valyala/gozstd
//     when cgo is available
//   - S2: fast, moderate ratio (klauspost/compress/s2)
//   - LZ4: fastest decode (pierrec/lz4 block format)
//
// Decompressors never produce more than MaxDecodedSize bytes. S2 and zstd
// payloads announce their decoded size up front and are rejected before any
// allocation when it exceeds the limit.
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	packed, err := codec.Compress(img)
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use; the zstd and lz4
// implementations pool their internal encoders and decoders.
package compress
