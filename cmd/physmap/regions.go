package main

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"

	"github.com/arloliu/physmap/firmware"
	"github.com/arloliu/physmap/format"
	"github.com/arloliu/physmap/loader"
	"github.com/arloliu/physmap/region"
	"gopkg.in/yaml.v3"
)

// regionFile is the YAML input of the build command.
//
//	exit_boot_services: true
//	min_pages: 4                 # skip smaller firmware regions
//	firmware_dump: ovmf.bin      # optional raw GetMemoryMap buffer
//	descriptor_size: 48
//	firmware:
//	  - {type: Conventional, start: 0x100000, pages: 0x7f00, attributes: [WB]}
//	reservations:
//	  - {type: KernelImage, start: 0x200000, size: 0x12345, attributes: [WB]}
type regionFile struct {
	ExitBootServices bool          `yaml:"exit_boot_services"`
	MinPages         uint64        `yaml:"min_pages"`
	FirmwareDump     string        `yaml:"firmware_dump"`
	DescriptorSize   uint64        `yaml:"descriptor_size"`
	Firmware         []regionEntry `yaml:"firmware"`
	Reservations     []regionEntry `yaml:"reservations"`
}

type regionEntry struct {
	Type       string   `yaml:"type"`
	Start      uint64   `yaml:"start"`
	Pages      uint64   `yaml:"pages"`
	Size       uint64   `yaml:"size"`
	Attributes []string `yaml:"attributes"`
}

// descriptorList feeds inline firmware entries through the same path as a
// firmware dump.
type descriptorList []region.Descriptor

func (l descriptorList) Descriptors() iter.Seq[region.Descriptor] {
	return slices.Values(l)
}

func loadRegionFile(path string) (*regionFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rf regionFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if rf.FirmwareDump != "" && !filepath.IsAbs(rf.FirmwareDump) {
		rf.FirmwareDump = filepath.Join(filepath.Dir(path), rf.FirmwareDump)
	}

	return &rf, nil
}

func (e regionEntry) decode() (region.Descriptor, error) {
	t, err := format.ParseMemoryType(e.Type)
	if err != nil {
		return region.Descriptor{}, err
	}

	var attr format.Attribute
	for _, name := range e.Attributes {
		bit, err := format.ParseAttribute(name)
		if err != nil {
			return region.Descriptor{}, err
		}
		attr |= bit
	}

	pages := e.Pages
	if pages == 0 && e.Size != 0 {
		pages = (e.Size + region.PageSize - 1) / region.PageSize
	}

	return region.New(t, e.Start, pages, attr), nil
}

// apply feeds the file's regions into b: the firmware dump first, then the
// inline firmware entries, then the reservations.
func (rf *regionFile) apply(b *loader.Builder) error {
	if rf.FirmwareDump != "" {
		raw, err := os.ReadFile(rf.FirmwareDump)
		if err != nil {
			return err
		}
		stride := rf.DescriptorSize
		if stride == 0 {
			stride = region.DescriptorSize
		}
		fw, err := firmware.Parse(raw, stride, region.DescriptorVersion)
		if err != nil {
			return fmt.Errorf("firmware dump %s: %w", rf.FirmwareDump, err)
		}
		if err := b.AddFirmware(fw); err != nil {
			return err
		}
	}

	inline := make(descriptorList, 0, len(rf.Firmware))
	for i, e := range rf.Firmware {
		d, err := e.decode()
		if err != nil {
			return fmt.Errorf("firmware entry %d: %w", i, err)
		}
		inline = append(inline, d)
	}
	if err := b.AddFirmware(inline); err != nil {
		return err
	}

	for i, e := range rf.Reservations {
		d, err := e.decode()
		if err != nil {
			return fmt.Errorf("reservation %d: %w", i, err)
		}
		if err := b.Reserve(d.Type, d.PhysicalStart, d.PageCount, d.Attribute); err != nil {
			return fmt.Errorf("reservation %d: %w", i, err)
		}
	}

	return nil
}
