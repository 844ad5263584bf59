package region

const (
	// PageSize is the UEFI page size in bytes.
	PageSize = 4096

	// DescriptorSize is the size of one encoded descriptor record in bytes.
	DescriptorSize = 40

	// DescriptorVersion is the EFI_MEMORY_DESCRIPTOR_VERSION the record follows.
	DescriptorVersion = 1
)

// Field offsets inside a descriptor record.
const (
	typeOffset          = 0
	physicalStartOffset = 8
	virtualStartOffset  = 16
	pageCountOffset     = 24
	attributeOffset     = 32
)
