package loader

import (
	"maps"
	"slices"

	"github.com/arloliu/physmap/format"
	"github.com/arloliu/physmap/memmap"
	"github.com/arloliu/physmap/region"
)

// Summary aggregates the visible entries of a map.
type Summary struct {
	Regions     int
	TotalPages  uint64
	UsablePages uint64
	// HighestEnd is the largest physical end address over all regions.
	HighestEnd uint64
	// PagesByType holds the page total per memory type.
	PagesByType map[format.MemoryType]uint64
}

// Summarize computes a Summary over the visible entries of m.
func Summarize(m *memmap.Map) Summary {
	s := Summary{PagesByType: make(map[format.MemoryType]uint64)}
	for _, d := range m.All() {
		s.Regions++
		s.TotalPages += d.PageCount
		s.PagesByType[d.Type] += d.PageCount
		if d.Type.IsUsable() {
			s.UsablePages += d.PageCount
		}
		s.HighestEnd = max(s.HighestEnd, d.PhysicalEnd())
	}

	return s
}

// UsableBytes returns the usable memory in bytes.
func (s Summary) UsableBytes() uint64 {
	return s.UsablePages * region.PageSize
}

// Types returns the memory types present, in ascending code order.
func (s Summary) Types() []format.MemoryType {
	return slices.Sorted(maps.Keys(s.PagesByType))
}
