// Package memmap implements the fixed-capacity physical memory map handed from
// the boot loader to the kernel.
//
// A Map is a plain value: an array of Capacity region descriptors followed by a
// 64-bit count of visible entries. It never allocates, never grows, and its
// in-memory layout is the handoff ABI, so a consumer can read it straight from
// the address the producer wrote it to.
//
// # Invariants
//
// After New, AddRegion and Sort:
//
//  1. 0 <= Len() <= Capacity
//  2. entries [0, Len()) are ordered by PhysicalStart, then by PageCount
//  3. no entry in [0, Len()) has PageCount == 0
//  4. entries at or past Len() are never exposed
//
// Overlapping or adjacent regions are kept as inserted. The map does not
// merge, split or validate ranges.
//
// # Image Layout
//
//	Bytes       | Field   | Description
//	------------|---------|------------------------------------------
//	0-2559      | entries | 64 × 40-byte region.Descriptor records
//	2560-2567   | count   | uint64, number of visible entries
//
// # Mutable View
//
// Mutable exposes the visible entries for in-place edits. Edits are not
// re-validated: setting an entry's PageCount to zero leaves a hole inside the
// visible prefix until the next call to Sort, which moves it past the count.
// Invariants 2 and 3 hold again only after that Sort.
//
// # Concurrency
//
// A Map has a single writer. Once handed off it is read-only by convention;
// nothing in this package synchronizes access.
package memmap
