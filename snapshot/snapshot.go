// Package snapshot persists region maps for later diagnosis.
//
// A snapshot is a 32-byte header followed by the map image, optionally
// compressed. The header records the image byte order, the codec and an
// xxHash64 of the raw image, so a corrupted or truncated snapshot is rejected
// instead of producing a wrong map.
//
//	Bytes  | Field         | Type   | Description
//	-------|---------------|--------|-----------------------------------
//	0-1    | Magic         | uint16 | 0x4D50 ("PM")
//	2      | Version       | uint8  | 1
//	3      | Flags         | uint8  | bit 0: image is big-endian
//	4      | Compression   | uint8  | format.CompressionType
//	5-7    | (reserved)    |        | zero
//	8-11   | PayloadLength | uint32 | bytes following the header
//	12-15  | ImageLength   | uint32 | raw image size (memmap.Size)
//	16-23  | Checksum      | uint64 | xxHash64 of the raw image
//	24-31  | RegionCount   | uint64 | visible entries in the map
//
// Snapshots are diagnostic artifacts. They are never fed back to firmware and
// do not carry a map across a reboot.
package snapshot

import (
	"bytes"
	"fmt"

	"github.com/arloliu/physmap/compress"
	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/internal/hash"
	"github.com/arloliu/physmap/internal/options"
	"github.com/arloliu/physmap/internal/pool"
	"github.com/arloliu/physmap/memmap"
)

// Encode serializes m into a snapshot.
//
// Defaults: little-endian image, zstd compression.
func Encode(m *memmap.Map, opts ...Option) ([]byte, error) {
	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	bb := pool.GetImageBuffer()
	defer pool.PutImageBuffer(bb)

	img := bb.Extend(memmap.Size)
	m.WriteToSlice(img, cfg.engine)

	payload, err := codec.Compress(img)
	if err != nil {
		return nil, fmt.Errorf("failed to compress map image: %w", err)
	}

	h := Header{
		Magic:         Magic,
		Version:       Version,
		Compression:   cfg.compression,
		PayloadLength: uint32(len(payload)), //nolint: gosec
		ImageLength:   memmap.Size,
		Checksum:      hash.Checksum(img),
		RegionCount:   uint64(m.Len()),
	}
	if cfg.engine == endian.GetBigEndianEngine() {
		h.Flags |= FlagBigEndian
	}

	// payload may alias the image buffer, so the envelope is assembled in a
	// second pooled buffer and copied out.
	out := pool.GetImageBuffer()
	defer pool.PutImageBuffer(out)

	_, _ = out.Write(h.Bytes())
	_, _ = out.Write(payload)

	return bytes.Clone(out.Bytes()), nil
}

// Decode parses a snapshot and returns the map and its header.
//
// Returns:
//   - *memmap.Map: decoded map
//   - Header: parsed header
//   - error: header errors, ErrInvalidPayloadSize, ErrChecksumMismatch, or
//     image decoding errors
func Decode(data []byte) (*memmap.Map, Header, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, Header{}, err
	}

	payload := data[HeaderSize:]
	if uint64(len(payload)) != uint64(h.PayloadLength) {
		return nil, h, fmt.Errorf("%w: header says %d bytes, have %d",
			errs.ErrInvalidPayloadSize, h.PayloadLength, len(payload))
	}
	if h.ImageLength != memmap.Size {
		return nil, h, fmt.Errorf("%w: image length %d, expected %d",
			errs.ErrInvalidPayloadSize, h.ImageLength, memmap.Size)
	}

	codec, err := compress.CreateCodec(h.Compression, "snapshot")
	if err != nil {
		return nil, h, err
	}

	img, err := codec.Decompress(payload)
	if err != nil {
		return nil, h, fmt.Errorf("failed to decompress map image: %w", err)
	}
	if len(img) != memmap.Size {
		return nil, h, fmt.Errorf("%w: decompressed %d bytes, expected %d",
			errs.ErrInvalidPayloadSize, len(img), memmap.Size)
	}
	if sum := hash.Checksum(img); sum != h.Checksum {
		return nil, h, fmt.Errorf("%w: header %#016x, image %#016x", errs.ErrChecksumMismatch, h.Checksum, sum)
	}

	m, err := memmap.Parse(img, h.Engine())
	if err != nil {
		return nil, h, err
	}
	if uint64(m.Len()) != h.RegionCount {
		return nil, h, fmt.Errorf("%w: header says %d regions, image has %d",
			errs.ErrCountOutOfRange, h.RegionCount, m.Len())
	}

	return m, h, nil
}
