package memmap

import (
	"fmt"
	"iter"
	"slices"

	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/region"
)

// Capacity is the fixed number of descriptor slots in a Map.
const Capacity = 64

// Map is a fixed-capacity, sorted collection of memory region descriptors.
//
// The zero value is an empty map ready for use.
type Map struct {
	entries [Capacity]region.Descriptor
	// count is uint64 rather than int so the layout does not depend on the
	// word size of the stage that built the map.
	count uint64
}

// New returns an empty map: every slot holds the sentinel descriptor.
func New() *Map {
	return &Map{}
}

// AddRegion appends d and restores the map order.
//
// A descriptor with PageCount == 0 is accepted and immediately compacted away,
// so it never becomes visible.
//
// AddRegion panics with an error wrapping errs.ErrMapFull when the map already
// holds Capacity entries. There is no fallback storage at boot time, so running
// out of slots must stop the boot rather than drop a region.
func (m *Map) AddRegion(d region.Descriptor) {
	if m.count >= Capacity {
		panic(fmt.Errorf("%w: capacity %d", errs.ErrMapFull, Capacity))
	}

	m.entries[m.count] = d
	m.count++
	m.Sort()
}

// Sort orders the whole backing array with region.Compare and resets the count
// to the index of the first sentinel, or Capacity when there is none.
//
// Sort is idempotent. Call it after editing entries through Mutable.
func (m *Map) Sort() {
	slices.SortFunc(m.entries[:], region.Compare)

	idx := slices.IndexFunc(m.entries[:], region.Descriptor.IsSentinel)
	if idx < 0 {
		m.count = Capacity
		return
	}
	m.count = uint64(idx)
}

// Reset empties the map.
func (m *Map) Reset() {
	*m = Map{}
}

// Len returns the number of visible entries.
func (m *Map) Len() int {
	return int(m.count)
}

// Full reports whether another AddRegion would be fatal.
func (m *Map) Full() bool {
	return m.count >= Capacity
}

// Remaining returns the number of free slots.
func (m *Map) Remaining() int {
	return Capacity - int(m.count)
}

// At returns a copy of the i-th visible entry. It panics if i is outside [0, Len()).
func (m *Map) At(i int) region.Descriptor {
	if i < 0 || uint64(i) >= m.count {
		panic(fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, m.count))
	}

	return m.entries[i]
}

// All iterates over the visible entries in stored order, yielding copies.
func (m *Map) All() iter.Seq2[int, region.Descriptor] {
	return func(yield func(int, region.Descriptor) bool) {
		for i := range m.visible() {
			if !yield(i, m.entries[i]) {
				return
			}
		}
	}
}

// Regions returns a copy of the visible entries.
func (m *Map) Regions() []region.Descriptor {
	return slices.Clone(m.entries[:m.visible()])
}

// CopyTo copies the visible entries into dst and returns the number copied.
func (m *Map) CopyTo(dst []region.Descriptor) int {
	return copy(dst, m.entries[:m.visible()])
}

// Mutable returns the visible entries for in-place editing.
//
// The slice has no spare capacity, so appending to it never reaches the slots
// past the count. Zeroing an entry's PageCount leaves a hole until the next Sort.
func (m *Map) Mutable() []region.Descriptor {
	n := m.visible()
	return m.entries[:n:n]
}

// Validate checks the invariants a consumer relies on. It is never called
// implicitly; it exists for consumers that did not build the map themselves.
func (m *Map) Validate() error {
	if err := checkCount(m.count); err != nil {
		return err
	}

	for i := range m.visible() {
		cur := m.entries[i]
		if cur.IsSentinel() {
			return fmt.Errorf("%w: index %d", errs.ErrSentinelInPrefix, i)
		}
		if i > 0 && region.Compare(m.entries[i-1], cur) > 0 {
			return fmt.Errorf("%w: index %d (0x%x) after 0x%x",
				errs.ErrUnsorted, i, cur.PhysicalStart, m.entries[i-1].PhysicalStart)
		}
	}

	return nil
}

// visible clamps the count so a corrupted image can never index past the array.
func (m *Map) visible() int {
	return int(min(m.count, Capacity))
}
