// Package errs defines the sentinel errors shared by the physmap packages.
//
// Callers match them with errors.Is; producers wrap them with fmt.Errorf and
// the %w verb to attach context.
package errs

import "errors"

// Region map errors.
var (
	// ErrMapFull is raised when a region is appended to a map that already holds
	// Capacity entries. memmap.Map.AddRegion panics with an error wrapping it.
	ErrMapFull = errors.New("too many memory regions in memory map")

	// ErrCountOutOfRange indicates an image whose count field exceeds the capacity.
	ErrCountOutOfRange = errors.New("region count out of range")

	// ErrUnsorted indicates that the visible entries are not in map order.
	ErrUnsorted = errors.New("regions not sorted")

	// ErrSentinelInPrefix indicates a zero-page entry below the count.
	ErrSentinelInPrefix = errors.New("zero-page region in visible entries")

	// ErrIndexOutOfRange is raised by read accessors given an index >= count.
	ErrIndexOutOfRange = errors.New("region index out of range")
)

// Binary layout errors.
var (
	ErrInvalidDescriptorSize = errors.New("invalid descriptor size")
	ErrInvalidImageSize      = errors.New("invalid memory map image size")
	ErrMisalignedImage       = errors.New("memory map image is not 8-byte aligned")
	ErrForeignByteOrder      = errors.New("memory map image is in the other byte order")
)

// Firmware map errors.
var (
	ErrInvalidDescriptorStride  = errors.New("invalid firmware descriptor stride")
	ErrUnsupportedDescriptorVer = errors.New("unsupported firmware descriptor version")
	ErrInvalidFirmwareMapSize   = errors.New("firmware map size is not a multiple of the descriptor stride")
)

// Snapshot errors.
var (
	ErrInvalidHeaderSize  = errors.New("invalid snapshot header size")
	ErrInvalidMagicNumber = errors.New("invalid snapshot magic number")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrInvalidHeaderFlags = errors.New("invalid snapshot header flags")
	ErrInvalidPayloadSize = errors.New("invalid snapshot payload size")
	ErrChecksumMismatch   = errors.New("snapshot checksum mismatch")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrDecodedSizeLimit   = errors.New("decoded payload exceeds size limit")
)

// Loader and handoff errors.
var (
	ErrInvalidReservation   = errors.New("invalid loader reservation")
	ErrHandoffAlreadyClosed = errors.New("handoff region already closed")
)
