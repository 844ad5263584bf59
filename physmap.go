// Package physmap provides the physical memory map a boot loader hands to the
// kernel: a fixed-capacity, allocation-free, sorted table of memory region
// descriptors with a layout that is stable across the stage boundary.
//
// # Core Features
//
//   - Fixed capacity of 64 UEFI-style region descriptors, no allocation
//   - Entries kept sorted by physical start, then page count, after every insert
//   - Zero-page descriptors act as sentinels and are compacted away
//   - Byte-for-byte stable layout: 64 × 40-byte records followed by a uint64 count
//   - Zero-copy consumer view over a memory-mapped handoff image
//   - Checksummed, compressed snapshots for diagnostics (Zstd, S2, LZ4)
//
// # Basic Usage
//
// Building a map from firmware regions:
//
//	m := physmap.New()
//	m.AddRegion(region.New(format.TypeConventional, 0x100000, 0x7f00, format.AttrWB))
//	m.AddRegion(region.New(format.TypeACPIReclaim, 0x7ff00000, 0x10, format.AttrWB))
//	fmt.Printf("%+v", m)
//
// Handing it to the next stage and reading it back:
//
//	_ = physmap.Publish("/boot/memmap.img", m)
//
//	r, _ := physmap.Attach("/boot/memmap.img")
//	defer r.Close()
//	for _, d := range r.Map().All() {
//	    fmt.Println(d)
//	}
//
// # Package Structure
//
// This package wraps the memmap, handoff and snapshot packages for the common
// cases. The loader package builds a map from a firmware memory map plus the
// loader's own reservations.
package physmap

import (
	"fmt"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/handoff"
	"github.com/arloliu/physmap/memmap"
	"github.com/arloliu/physmap/region"
	"github.com/arloliu/physmap/snapshot"
)

// Capacity is the maximum number of regions in a map.
const Capacity = memmap.Capacity

// New returns an empty map.
func New() *memmap.Map {
	return memmap.New()
}

// FromDescriptors builds a map from descs in the given order.
//
// Unlike Map.AddRegion it does not panic on overflow: it returns an error
// wrapping errs.ErrMapFull when descs holds more than Capacity real regions.
func FromDescriptors(descs ...region.Descriptor) (*memmap.Map, error) {
	m := memmap.New()
	for i, d := range descs {
		if m.Full() {
			return nil, fmt.Errorf("%w: descriptor %d of %d", errs.ErrMapFull, i, len(descs))
		}
		m.AddRegion(d)
	}

	return m, nil
}

// Decode parses a map image in host byte order.
func Decode(data []byte) (*memmap.Map, error) {
	return memmap.Parse(data, endian.Native())
}

// Publish writes m to path as a handoff image.
func Publish(path string, m *memmap.Map) error {
	return handoff.Publish(path, m)
}

// Attach maps the handoff image at path for reading.
func Attach(path string) (*handoff.Region, error) {
	return handoff.Attach(path)
}

// Snapshot encodes m as a checksummed, compressed snapshot.
func Snapshot(m *memmap.Map, opts ...snapshot.Option) ([]byte, error) {
	return snapshot.Encode(m, opts...)
}

// Restore decodes a snapshot produced by Snapshot.
func Restore(data []byte) (*memmap.Map, error) {
	m, _, err := snapshot.Decode(data)
	return m, err
}
