//go:build unix

package handoff

import (
	"errors"
	"fmt"
	"os"

	"github.com/arloliu/physmap/endian"
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/memmap"
	"golang.org/x/sys/unix"
)

// Publish writes the map image to path through a shared writable mapping and
// flushes it with msync before returning.
func Publish(path string, m *memmap.Map) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Truncate(memmap.Size); err != nil {
		return fmt.Errorf("handoff: truncate %s: %w", path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, memmap.Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("handoff: mmap %s: %w", path, err)
	}

	m.WriteToSlice(data, endian.Native())

	if err := unix.Msync(data, unix.MS_SYNC); err != nil {
		_ = unix.Munmap(data)
		return fmt.Errorf("handoff: msync %s: %w", path, err)
	}

	return unix.Munmap(data)
}

// Attach maps the image at path read-only and returns a Region whose map
// aliases the mapping.
func Attach(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() // the mapping keeps the pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() < memmap.Size {
		return nil, fmt.Errorf("%w: %s is %d bytes, need %d",
			errs.ErrInvalidImageSize, path, info.Size(), memmap.Size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, memmap.Size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("handoff: mmap %s: %w", path, err)
	}

	m, err := memmap.View(data)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}

	return &Region{data: data, m: m, release: munmap}, nil
}

func munmap(data []byte) error {
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		return nil
	}

	return err
}
