package snapshot

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/format"
	"github.com/arloliu/physmap/memmap"
	"github.com/arloliu/physmap/region"
	"github.com/stretchr/testify/require"
)

func sampleMap() *memmap.Map {
	m := memmap.New()
	m.AddRegion(region.New(format.TypeConventional, 0x100000, 0x7000, format.AttrWB))
	m.AddRegion(region.New(format.TypeBootServicesData, 0x0, 0xa0, format.AttrWB))
	m.AddRegion(region.New(format.TypePageTables, 0x400000, 8, format.AttrWB))

	return m
}

func TestEncodeDecode(t *testing.T) {
	testCases := []struct {
		name string
		opts []Option
		big  bool
		comp format.CompressionType
	}{
		{"defaults", nil, false, format.CompressionZstd},
		{"none", []Option{WithCompression(format.CompressionNone)}, false, format.CompressionNone},
		{"s2 big-endian", []Option{WithCompression(format.CompressionS2), WithBigEndian()}, true, format.CompressionS2},
		{"lz4", []Option{WithCompression(format.CompressionLZ4), WithLittleEndian()}, false, format.CompressionLZ4},
		{"zstd native", []Option{WithNativeEndian()}, endian.IsNativeBigEndian(), format.CompressionZstd},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require := require.New(t)

			m := sampleMap()
			data, err := Encode(m, tc.opts...)
			require.NoError(err)

			got, h, err := Decode(data)
			require.NoError(err)
			require.Equal(m.Regions(), got.Regions())
			require.Equal(tc.comp, h.Compression)
			require.Equal(tc.big, h.Flags&FlagBigEndian != 0)
			require.Equal(uint64(3), h.RegionCount)
			require.Equal(uint32(memmap.Size), h.ImageLength)
			require.Equal(uint32(len(data)-HeaderSize), h.PayloadLength)
		})
	}
}

func TestEncode_EmptyMap(t *testing.T) {
	data, err := Encode(memmap.New(), WithCompression(format.CompressionLZ4))
	require.NoError(t, err)

	got, h, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 0, got.Len())
	require.Equal(t, uint64(0), h.RegionCount)
}

func TestEncode_CompressionShrinks(t *testing.T) {
	data, err := Encode(sampleMap(), WithCompression(format.CompressionZstd))
	require.NoError(t, err)
	require.Less(t, len(data), memmap.Size/4)
}

func TestEncode_InvalidOption(t *testing.T) {
	_, err := Encode(sampleMap(), WithCompression(format.CompressionType(0x9)))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestDecode_Corruption(t *testing.T) {
	good, err := Encode(sampleMap(), WithCompression(format.CompressionNone))
	require.NoError(t, err)

	corrupt := func(fn func([]byte) []byte) []byte {
		b := append([]byte(nil), good...)
		return fn(b)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", good[:HeaderSize-1], errs.ErrInvalidHeaderSize},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b }), errs.ErrInvalidMagicNumber},
		{"bad version", corrupt(func(b []byte) []byte { b[2] = 9; return b }), errs.ErrUnsupportedVersion},
		{"bad flags", corrupt(func(b []byte) []byte { b[3] = 0x80; return b }), errs.ErrInvalidHeaderFlags},
		{"bad compression", corrupt(func(b []byte) []byte { b[4] = 0x7; return b }), errs.ErrInvalidCompression},
		{"truncated payload", good[:len(good)-1], errs.ErrInvalidPayloadSize},
		{"flipped image bit", corrupt(func(b []byte) []byte { b[HeaderSize+9] ^= 0x01; return b }), errs.ErrChecksumMismatch},
		{"wrong region count", corrupt(func(b []byte) []byte { b[24] = 7; return b }), errs.ErrCountOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

// envelope wraps payload in a well-formed header claiming a full map image.
func envelope(ct format.CompressionType, payload []byte) []byte {
	h := Header{
		Magic:         Magic,
		Version:       Version,
		Compression:   ct,
		PayloadLength: uint32(len(payload)), //nolint: gosec
		ImageLength:   memmap.Size,
	}

	return append(h.Bytes(), payload...)
}

func TestDecode_OversizedPayload(t *testing.T) {
	// S2 block whose length prefix claims ~2 GiB.
	s2Block := binary.AppendUvarint(nil, 0x7ffffff0)
	s2Block = append(s2Block, 0x00, 0x00, 0x00, 0x00)

	// Zstd single-segment frame declaring a ~2 GiB content size, followed by an
	// empty last raw block.
	zstdFrame := []byte{
		0x28, 0xb5, 0x2f, 0xfd, // magic
		0xa0,                   // 4-byte content size, single segment
		0xf0, 0xff, 0xff, 0x7f, // content size
		0x01, 0x00, 0x00, // last raw block, size 0
	}

	// LZ4 block: one literal, then a match extended far past the limit.
	var lz4Block bytes.Buffer
	lz4Block.Write([]byte{0x1f, 'a', 0x01, 0x00})
	lz4Block.Write(bytes.Repeat([]byte{0xff}, 5000))
	lz4Block.Write([]byte{0x00, 0x50, 'a', 'b', 'c', 'd', 'e'})

	tests := []struct {
		name    string
		ct      format.CompressionType
		payload []byte
	}{
		{"s2", format.CompressionS2, s2Block},
		{"zstd", format.CompressionZstd, zstdFrame},
		{"lz4", format.CompressionLZ4, lz4Block.Bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, err := Decode(envelope(tt.ct, tt.payload))
			require.ErrorIs(t, err, errs.ErrDecodedSizeLimit)
			require.Nil(t, m)
		})
	}
}

func TestEncode_EnvelopeLayout(t *testing.T) {
	data, err := Encode(sampleMap(), WithCompression(format.CompressionNone))
	require.NoError(t, err)
	require.Len(t, data, HeaderSize+memmap.Size)

	h, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, sampleMap().Bytes(endian.GetLittleEndianEngine()), data[HeaderSize:])
	require.Equal(t, h.Bytes(), data[:HeaderSize])
}

func TestHeader_RoundTrip(t *testing.T) {
	h := Header{
		Magic:         Magic,
		Version:       Version,
		Flags:         FlagBigEndian,
		Compression:   format.CompressionS2,
		PayloadLength: 123,
		ImageLength:   memmap.Size,
		Checksum:      0x0123456789abcdef,
		RegionCount:   42,
	}

	b := h.Bytes()
	require.Len(t, b, HeaderSize)
	require.Equal(t, []byte{'P', 'M'}, b[0:2])

	parsed, err := ParseHeader(b)
	require.NoError(t, err)
	require.Equal(t, h, parsed)
	require.Equal(t, endian.GetBigEndianEngine(), parsed.Engine())
}
