// Package region defines the memory region descriptor stored in the region map
// and its fixed-size binary record.
//
// # Record Layout
//
// A Descriptor mirrors EFI_MEMORY_DESCRIPTOR version 1. Its in-memory layout
// and its encoded form are identical, 40 bytes with no implicit padding:
//
//	Bytes  | Field          | Type   | Description
//	-------|----------------|--------|------------------------------------
//	0-3    | Type           | uint32 | UEFI memory type (format.MemoryType)
//	4-7    | (padding)      | uint32 | always written as zero
//	8-15   | PhysicalStart  | uint64 | first physical byte of the range
//	16-23  | VirtualStart   | uint64 | virtual address, if mapped
//	24-31  | PageCount      | uint64 | number of 4 KiB pages, 0 = sentinel
//	32-39  | Attribute      | uint64 | attribute bitmask (format.Attribute)
//
// Every field has an explicit fixed width, so producers and consumers built for
// different word sizes agree on the layout byte for byte.
//
// # Sentinel
//
// A descriptor with PageCount == 0 never describes a real region. The region
// map uses it as its empty-slot marker and always orders it after every real
// region (see Compare).
package region
