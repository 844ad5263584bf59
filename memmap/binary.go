package memmap

import (
	"fmt"
	"math/bits"
	"slices"
	"unsafe"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/region"
)

const (
	// CountOffset is the byte offset of the count field in a map image.
	CountOffset = Capacity * region.DescriptorSize

	// Size is the size of a map image in bytes. It equals unsafe.Sizeof(Map{})
	// on every architecture.
	Size = CountOffset + 8
)

// AppendBinary appends the full map image, all Capacity records followed by
// the count, to dst using the given byte order.
func (m *Map) AppendBinary(dst []byte, engine endian.EndianEngine) []byte {
	dst = slices.Grow(dst, Size)
	for i := range m.entries {
		dst = m.entries[i].AppendTo(dst, engine)
	}

	return engine.AppendUint64(dst, m.count)
}

// Bytes returns the map image using the given byte order.
func (m *Map) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, Size)
	m.WriteToSlice(b, engine)

	return b
}

// WriteToSlice writes the map image into data, which must hold at least Size bytes.
func (m *Map) WriteToSlice(data []byte, engine endian.EndianEngine) {
	offset := 0
	for i := range m.entries {
		offset = m.entries[i].WriteToSlice(data, offset, engine)
	}
	engine.PutUint64(data[CountOffset:Size], m.count)
}

// MarshalBinary implements encoding.BinaryMarshaler using the host byte order,
// which is the order a consumer reading the map by address expects.
func (m *Map) MarshalBinary() ([]byte, error) {
	return m.Bytes(endian.Native()), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using the host byte order.
func (m *Map) UnmarshalBinary(data []byte) error {
	parsed, err := Parse(data, endian.Native())
	if err != nil {
		return err
	}
	*m = *parsed

	return nil
}

// Parse decodes a map image.
//
// Only the records below the count are decoded; the remaining slots are set
// to the sentinel, so a later AddRegion cannot resurrect stale data from the
// image.
//
// Returns:
//   - *Map: Decoded map
//   - error: ErrInvalidImageSize if data is shorter than Size,
//     ErrCountOutOfRange if the count exceeds Capacity, additionally
//     ErrForeignByteOrder if it only fits byte-swapped
func Parse(data []byte, engine endian.EndianEngine) (*Map, error) {
	if len(data) < Size {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrInvalidImageSize, Size, len(data))
	}

	count := engine.Uint64(data[CountOffset:Size])
	if err := checkCount(count); err != nil {
		return nil, err
	}

	m := &Map{count: count}
	for i := range int(count) {
		d, err := region.Parse(data[i*region.DescriptorSize:], engine)
		if err != nil {
			return nil, fmt.Errorf("failed to parse region %d: %w", i, err)
		}
		m.entries[i] = d
	}

	return m, nil
}

// View reinterprets a native-order map image in place, without copying.
//
// This is how a consumer reads a map handed over by address. The returned Map
// aliases data: it is valid only while data is, and must be treated as
// read-only when data is backed by a read-only mapping.
//
// Returns:
//   - *Map: Map aliasing data
//   - error: ErrInvalidImageSize, ErrMisalignedImage or ErrCountOutOfRange
//     (with ErrForeignByteOrder for an image written in the other byte order)
func View(data []byte) (*Map, error) {
	if len(data) < Size {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrInvalidImageSize, Size, len(data))
	}

	ptr := unsafe.Pointer(unsafe.SliceData(data))
	if uintptr(ptr)%8 != 0 {
		return nil, fmt.Errorf("%w: address %p", errs.ErrMisalignedImage, ptr)
	}

	m := (*Map)(ptr)
	if err := checkCount(m.count); err != nil {
		return nil, err
	}

	return m, nil
}

// checkCount rejects a count above Capacity. A count that is in range once
// byte-swapped means the image was written in the other byte order.
func checkCount(count uint64) error {
	if count <= Capacity {
		return nil
	}
	if swapped := bits.ReverseBytes64(count); swapped <= Capacity {
		return fmt.Errorf("%w: %w: count %#x is %d byte-swapped",
			errs.ErrCountOutOfRange, errs.ErrForeignByteOrder, count, swapped)
	}

	return fmt.Errorf("%w: count %d, capacity %d", errs.ErrCountOutOfRange, count, Capacity)
}
