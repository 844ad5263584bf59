// Package format defines the enumerated codes carried by the region map and
// its snapshot envelope.
//
// MemoryType and Attribute mirror the UEFI memory descriptor (UEFI 2.10,
// section 7.2 EFI_BOOT_SERVICES.GetMemoryMap). The map never validates them:
// unknown codes pass through unchanged and only print as Unknown.
package format

import (
	"fmt"
	"strings"
)

type (
	MemoryType      uint32
	Attribute       uint64
	CompressionType uint8
)

const (
	TypeReserved            MemoryType = 0  // TypeReserved is EfiReservedMemoryType.
	TypeLoaderCode          MemoryType = 1  // TypeLoaderCode is EfiLoaderCode.
	TypeLoaderData          MemoryType = 2  // TypeLoaderData is EfiLoaderData.
	TypeBootServicesCode    MemoryType = 3  // TypeBootServicesCode is EfiBootServicesCode.
	TypeBootServicesData    MemoryType = 4  // TypeBootServicesData is EfiBootServicesData.
	TypeRuntimeServicesCode MemoryType = 5  // TypeRuntimeServicesCode is EfiRuntimeServicesCode.
	TypeRuntimeServicesData MemoryType = 6  // TypeRuntimeServicesData is EfiRuntimeServicesData.
	TypeConventional        MemoryType = 7  // TypeConventional is EfiConventionalMemory.
	TypeUnusable            MemoryType = 8  // TypeUnusable is EfiUnusableMemory.
	TypeACPIReclaim         MemoryType = 9  // TypeACPIReclaim is EfiACPIReclaimMemory.
	TypeACPINonVolatile     MemoryType = 10 // TypeACPINonVolatile is EfiACPIMemoryNVS.
	TypeMMIO                MemoryType = 11 // TypeMMIO is EfiMemoryMappedIO.
	TypeMMIOPortSpace       MemoryType = 12 // TypeMMIOPortSpace is EfiMemoryMappedIOPortSpace.
	TypePALCode             MemoryType = 13 // TypePALCode is EfiPalCode.
	TypePersistent          MemoryType = 14 // TypePersistent is EfiPersistentMemory.

	// OS-defined types (0x80000000-0xFFFFFFFF) used by the loader for the
	// ranges it carves out before handing the map over.
	TypeKernelImage MemoryType = 0x80000000 // TypeKernelImage covers the loaded kernel ELF segments.
	TypePageTables  MemoryType = 0x80000001 // TypePageTables covers page tables built by the loader.
	TypeBootStack   MemoryType = 0x80000002 // TypeBootStack covers the kernel's initial stack.
	TypeBootInfo    MemoryType = 0x80000003 // TypeBootInfo covers the boot information block.
	TypeFramebuffer MemoryType = 0x80000004 // TypeFramebuffer covers the GOP framebuffer.

	osDefinedBase MemoryType = 0x80000000
)

var memoryTypeNames = map[MemoryType]string{
	TypeReserved:            "Reserved",
	TypeLoaderCode:          "LoaderCode",
	TypeLoaderData:          "LoaderData",
	TypeBootServicesCode:    "BootServicesCode",
	TypeBootServicesData:    "BootServicesData",
	TypeRuntimeServicesCode: "RuntimeServicesCode",
	TypeRuntimeServicesData: "RuntimeServicesData",
	TypeConventional:        "Conventional",
	TypeUnusable:            "Unusable",
	TypeACPIReclaim:         "ACPIReclaim",
	TypeACPINonVolatile:     "ACPINonVolatile",
	TypeMMIO:                "MMIO",
	TypeMMIOPortSpace:       "MMIOPortSpace",
	TypePALCode:             "PALCode",
	TypePersistent:          "Persistent",
	TypeKernelImage:         "KernelImage",
	TypePageTables:          "PageTables",
	TypeBootStack:           "BootStack",
	TypeBootInfo:            "BootInfo",
	TypeFramebuffer:         "Framebuffer",
}

func (t MemoryType) String() string {
	if name, ok := memoryTypeNames[t]; ok {
		return name
	}
	if t.IsOSDefined() {
		return fmt.Sprintf("OSDefined(%#x)", uint32(t))
	}

	return fmt.Sprintf("Unknown(%#x)", uint32(t))
}

// IsOSDefined reports whether t lies in the range UEFI reserves for OS loaders.
func (t MemoryType) IsOSDefined() bool {
	return t >= osDefinedBase
}

// IsUsable reports whether the kernel may treat a region of this type as free
// RAM once boot services have been exited.
func (t MemoryType) IsUsable() bool {
	switch t {
	case TypeConventional, TypeBootServicesCode, TypeBootServicesData, TypeLoaderCode, TypeLoaderData:
		return true
	default:
		return false
	}
}

// ParseMemoryType resolves a type name as printed by String.
// Names are matched case-insensitively.
func ParseMemoryType(name string) (MemoryType, error) {
	for t, n := range memoryTypeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown memory type %q", name)
}

// Memory attribute bits.
const (
	AttrUC           Attribute = 0x0000000000000001 // AttrUC marks uncacheable memory.
	AttrWC           Attribute = 0x0000000000000002 // AttrWC marks write-combining memory.
	AttrWT           Attribute = 0x0000000000000004 // AttrWT marks write-through memory.
	AttrWB           Attribute = 0x0000000000000008 // AttrWB marks write-back memory.
	AttrUCE          Attribute = 0x0000000000000010 // AttrUCE marks uncacheable, exported memory.
	AttrWP           Attribute = 0x0000000000001000 // AttrWP marks write-protected memory.
	AttrRP           Attribute = 0x0000000000002000 // AttrRP marks read-protected memory.
	AttrXP           Attribute = 0x0000000000004000 // AttrXP marks execute-protected memory.
	AttrNV           Attribute = 0x0000000000008000 // AttrNV marks non-volatile memory.
	AttrMoreReliable Attribute = 0x0000000000010000 // AttrMoreReliable marks higher-reliability memory.
	AttrRO           Attribute = 0x0000000000020000 // AttrRO marks read-only memory.
	AttrSP           Attribute = 0x0000000000040000 // AttrSP marks specific-purpose memory.
	AttrCPUCrypto    Attribute = 0x0000000000080000 // AttrCPUCrypto marks memory usable for CPU crypto.
	AttrRuntime      Attribute = 0x8000000000000000 // AttrRuntime marks memory needed by runtime services.
)

var attributeNames = []struct {
	bit  Attribute
	name string
}{
	{AttrUC, "UC"},
	{AttrWC, "WC"},
	{AttrWT, "WT"},
	{AttrWB, "WB"},
	{AttrUCE, "UCE"},
	{AttrWP, "WP"},
	{AttrRP, "RP"},
	{AttrXP, "XP"},
	{AttrNV, "NV"},
	{AttrMoreReliable, "MORE_RELIABLE"},
	{AttrRO, "RO"},
	{AttrSP, "SP"},
	{AttrCPUCrypto, "CPU_CRYPTO"},
	{AttrRuntime, "RUNTIME"},
}

// Has reports whether all bits of mask are set.
func (a Attribute) Has(mask Attribute) bool {
	return a&mask == mask
}

// String renders the set bits joined by '|'. Bits without a name are
// appended as a single hex remainder.
func (a Attribute) String() string {
	if a == 0 {
		return "-"
	}

	var sb strings.Builder
	rest := a
	for _, n := range attributeNames {
		if a&n.bit == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(n.name)
		rest &^= n.bit
	}
	if rest != 0 {
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "%#x", uint64(rest))
	}

	return sb.String()
}

// ParseAttribute resolves a single attribute name as printed by String.
func ParseAttribute(name string) (Attribute, error) {
	for _, n := range attributeNames {
		if strings.EqualFold(n.name, name) {
			return n.bit, nil
		}
	}

	return 0, fmt.Errorf("unknown memory attribute %q", name)
}

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType resolves a compression name (none, zstd, s2, lz4).
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression type %q", name)
	}
}
