package snapshot

import (
	"fmt"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/format"
)

const (
	// HeaderSize is the fixed snapshot header size in bytes.
	HeaderSize = 32

	// Magic identifies a snapshot ("PM" in little-endian byte order).
	Magic = 0x4D50

	// Version is the current envelope version.
	Version = 1

	// FlagBigEndian marks an image encoded in big-endian byte order.
	FlagBigEndian = 0x01

	flagMask = FlagBigEndian
)

// Header is the fixed-size header in front of the snapshot payload.
// The header itself is always little-endian.
type Header struct {
	// Magic must equal Magic.
	Magic uint16 // byte offset 0-1
	// Version is the envelope version.
	Version uint8 // byte offset 2
	// Flags holds FlagBigEndian; the remaining bits must be zero.
	Flags uint8 // byte offset 3
	// Compression is the codec applied to the image.
	Compression format.CompressionType // byte offset 4
	// PayloadLength is the byte length of the (compressed) image after the header.
	PayloadLength uint32 // byte offset 8-11
	// ImageLength is the byte length of the raw image.
	ImageLength uint32 // byte offset 12-15
	// Checksum is the xxHash64 of the raw image.
	Checksum uint64 // byte offset 16-23
	// RegionCount repeats the image's count so tools can report it without
	// decompressing.
	RegionCount uint64 // byte offset 24-31
}

// Engine returns the byte order of the image.
func (h *Header) Engine() endian.EndianEngine {
	if h.Flags&FlagBigEndian != 0 {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := endian.GetLittleEndianEngine()

	engine.PutUint16(b[0:2], h.Magic)
	b[2] = h.Version
	b[3] = h.Flags
	b[4] = uint8(h.Compression)
	engine.PutUint32(b[8:12], h.PayloadLength)
	engine.PutUint32(b[12:16], h.ImageLength)
	engine.PutUint64(b[16:24], h.Checksum)
	engine.PutUint64(b[24:32], h.RegionCount)

	return b
}

// Parse parses the header from the first HeaderSize bytes of data and
// validates its fixed fields.
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: need %d bytes, have %d", errs.ErrInvalidHeaderSize, HeaderSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()
	h.Magic = engine.Uint16(data[0:2])
	h.Version = data[2]
	h.Flags = data[3]
	h.Compression = format.CompressionType(data[4])
	h.PayloadLength = engine.Uint32(data[8:12])
	h.ImageLength = engine.Uint32(data[12:16])
	h.Checksum = engine.Uint64(data[16:24])
	h.RegionCount = engine.Uint64(data[24:32])

	return h.Validate()
}

// Validate checks the magic number, version, flags and reserved bytes.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("%w: %#04x", errs.ErrInvalidMagicNumber, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedVersion, h.Version)
	}
	if h.Flags&^flagMask != 0 {
		return fmt.Errorf("%w: %#02x", errs.ErrInvalidHeaderFlags, h.Flags)
	}

	return nil
}

// ParseHeader parses a Header from the front of data.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if err := h.Parse(data); err != nil {
		return Header{}, err
	}

	return h, nil
}
