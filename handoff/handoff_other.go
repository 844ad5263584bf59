//go:build !unix

package handoff

import (
	"os"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/memmap"
)

// Publish writes the map image to path.
func Publish(path string, m *memmap.Map) error {
	return os.WriteFile(path, m.Bytes(endian.Native()), 0o644)
}

// Attach reads the image at path into a private copy of the map.
func Attach(path string) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m, err := memmap.Parse(data, endian.Native())
	if err != nil {
		return nil, err
	}

	return &Region{data: data, m: m}, nil
}
