// Package firmware decodes the raw memory map returned by the UEFI boot
// service GetMemoryMap into region descriptors.
//
// Firmware is free to pad its records: DescriptorSize, not the size of the
// structure known to the loader, is the stride between records. UEFI data is
// always little-endian.
package firmware

import (
	"fmt"
	"iter"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/region"
)

// MemoryMap is a raw GetMemoryMap result.
type MemoryMap struct {
	// MapSize is the number of valid bytes in the buffer.
	MapSize uint64
	// MapKey identifies this snapshot of the map for ExitBootServices.
	MapKey uint64
	// DescriptorSize is the stride between records.
	DescriptorSize uint64
	// DescriptorVersion is the record version reported by firmware.
	DescriptorVersion uint32

	buf []byte
}

// Parse wraps a raw GetMemoryMap buffer.
//
// Returns:
//   - *MemoryMap: the wrapped map; buf is retained, not copied
//   - error: ErrInvalidDescriptorStride, ErrUnsupportedDescriptorVer or
//     ErrInvalidFirmwareMapSize
func Parse(buf []byte, descriptorSize uint64, version uint32) (*MemoryMap, error) {
	if descriptorSize < region.DescriptorSize {
		return nil, fmt.Errorf("%w: %d bytes, minimum %d",
			errs.ErrInvalidDescriptorStride, descriptorSize, region.DescriptorSize)
	}
	if version != region.DescriptorVersion {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnsupportedDescriptorVer, version)
	}
	if uint64(len(buf))%descriptorSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes, stride %d",
			errs.ErrInvalidFirmwareMapSize, len(buf), descriptorSize)
	}

	return &MemoryMap{
		MapSize:           uint64(len(buf)),
		DescriptorSize:    descriptorSize,
		DescriptorVersion: version,
		buf:               buf,
	}, nil
}

// Len returns the number of records in the map.
func (m *MemoryMap) Len() int {
	return int(m.MapSize / m.DescriptorSize)
}

// At decodes the i-th record.
func (m *MemoryMap) At(i int) (region.Descriptor, error) {
	if i < 0 || i >= m.Len() {
		return region.Descriptor{}, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, m.Len())
	}
	off := uint64(i) * m.DescriptorSize

	return region.Parse(m.buf[off:off+m.DescriptorSize], endian.GetLittleEndianEngine())
}

// Descriptors yields the records in firmware order.
func (m *MemoryMap) Descriptors() iter.Seq[region.Descriptor] {
	return func(yield func(region.Descriptor) bool) {
		for i := range m.Len() {
			// Length and stride were checked by Parse, so At cannot fail here.
			d, _ := m.At(i)
			if !yield(d) {
				return
			}
		}
	}
}

// Encode builds a raw GetMemoryMap buffer with the given stride. Bytes past
// the 40-byte record inside each stride are left zero.
func Encode(descs []region.Descriptor, stride uint64) ([]byte, error) {
	if stride < region.DescriptorSize {
		return nil, fmt.Errorf("%w: %d bytes, minimum %d",
			errs.ErrInvalidDescriptorStride, stride, region.DescriptorSize)
	}

	buf := make([]byte, uint64(len(descs))*stride)
	engine := endian.GetLittleEndianEngine()
	for i := range descs {
		descs[i].WriteToSlice(buf, int(uint64(i)*stride), engine)
	}

	return buf, nil
}
