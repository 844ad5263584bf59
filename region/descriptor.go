package region

import (
	"cmp"
	"fmt"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/format"
)

// Descriptor describes one contiguous physical memory range.
//
// The field order and widths are part of the handoff ABI; see the package
// documentation for the record layout.
type Descriptor struct {
	// Type is the memory category reported by firmware or assigned by the loader.
	//
	// Offset: 0, Size: 4 bytes
	Type format.MemoryType

	_ uint32

	// PhysicalStart is the physical address of the first byte of the range.
	//
	// Offset: 8, Size: 8 bytes
	PhysicalStart uint64

	// VirtualStart is the virtual address of the range when firmware maps it.
	// It is carried through untouched.
	//
	// Offset: 16, Size: 8 bytes
	VirtualStart uint64

	// PageCount is the number of PageSize pages covered. Zero marks a sentinel.
	//
	// Offset: 24, Size: 8 bytes
	PageCount uint64

	// Attribute is the attribute bitmask, carried through untouched.
	//
	// Offset: 32, Size: 8 bytes
	Attribute format.Attribute
}

// New creates a descriptor for pages pages of memory type t starting at start.
func New(t format.MemoryType, start, pages uint64, attr format.Attribute) Descriptor {
	return Descriptor{
		Type:          t,
		PhysicalStart: start,
		PageCount:     pages,
		Attribute:     attr,
	}
}

// IsSentinel reports whether d is an empty-slot marker.
func (d Descriptor) IsSentinel() bool {
	return d.PageCount == 0
}

// Size returns the size of the range in bytes.
func (d Descriptor) Size() uint64 {
	return d.PageCount * PageSize
}

// PhysicalEnd returns the first physical address past the range.
// The result wraps for ranges reaching the top of the address space.
func (d Descriptor) PhysicalEnd() uint64 {
	return d.PhysicalStart + d.Size()
}

// Contains reports whether addr lies inside the range.
func (d Descriptor) Contains(addr uint64) bool {
	return addr >= d.PhysicalStart && addr-d.PhysicalStart < d.Size()
}

// Compare is the region map's total order: sentinels sort after every real
// region, real regions sort by PhysicalStart and then by PageCount.
func Compare(a, b Descriptor) int {
	switch {
	case a.PageCount == 0 && b.PageCount == 0:
		return 0
	case a.PageCount == 0:
		return 1
	case b.PageCount == 0:
		return -1
	}

	if c := cmp.Compare(a.PhysicalStart, b.PhysicalStart); c != 0 {
		return c
	}

	return cmp.Compare(a.PageCount, b.PageCount)
}

// String returns the diagnostic form of the descriptor.
func (d Descriptor) String() string {
	return fmt.Sprintf("[0x%016x-0x%016x) %-20s %10d pages %s",
		d.PhysicalStart, d.PhysicalEnd(), d.Type, d.PageCount, d.Attribute)
}

// Bytes returns the descriptor as a 40-byte record using the specified endian engine.
func (d *Descriptor) Bytes(engine endian.EndianEngine) []byte {
	var b [DescriptorSize]byte
	d.WriteToSlice(b[:], 0, engine)

	return b[:]
}

// AppendTo appends the encoded record to dst and returns the extended slice.
func (d *Descriptor) AppendTo(dst []byte, engine endian.EndianEngine) []byte {
	dst = engine.AppendUint32(dst, uint32(d.Type))
	dst = engine.AppendUint32(dst, 0)
	dst = engine.AppendUint64(dst, d.PhysicalStart)
	dst = engine.AppendUint64(dst, d.VirtualStart)
	dst = engine.AppendUint64(dst, d.PageCount)

	return engine.AppendUint64(dst, uint64(d.Attribute))
}

// WriteToSlice writes the record into data at offset and returns the next position.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have space for 40 bytes at offset)
//   - offset: Starting position in data slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position (offset + 40)
func (d *Descriptor) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	b := data[offset : offset+DescriptorSize]
	engine.PutUint32(b[typeOffset:typeOffset+4], uint32(d.Type))
	engine.PutUint32(b[typeOffset+4:physicalStartOffset], 0)
	engine.PutUint64(b[physicalStartOffset:virtualStartOffset], d.PhysicalStart)
	engine.PutUint64(b[virtualStartOffset:pageCountOffset], d.VirtualStart)
	engine.PutUint64(b[pageCountOffset:attributeOffset], d.PageCount)
	engine.PutUint64(b[attributeOffset:DescriptorSize], uint64(d.Attribute))

	return offset + DescriptorSize
}

// Parse decodes a descriptor from the first 40 bytes of data.
//
// Returns:
//   - Descriptor: Parsed descriptor, padding discarded
//   - error: ErrInvalidDescriptorSize if data is too short
func Parse(data []byte, engine endian.EndianEngine) (Descriptor, error) {
	if len(data) < DescriptorSize {
		return Descriptor{}, fmt.Errorf("%w: need %d bytes, have %d",
			errs.ErrInvalidDescriptorSize, DescriptorSize, len(data))
	}

	return Descriptor{
		Type:          format.MemoryType(engine.Uint32(data[typeOffset : typeOffset+4])),
		PhysicalStart: engine.Uint64(data[physicalStartOffset:virtualStartOffset]),
		VirtualStart:  engine.Uint64(data[virtualStartOffset:pageCountOffset]),
		PageCount:     engine.Uint64(data[pageCountOffset:attributeOffset]),
		Attribute:     format.Attribute(engine.Uint64(data[attributeOffset:DescriptorSize])),
	}, nil
}
