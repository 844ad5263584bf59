// Package loader assembles the region map the boot loader hands to the kernel.
//
// A Builder feeds firmware regions and the loader's own reservations (kernel
// image, page tables, boot stack) into a memmap.Map. Unlike Map.AddRegion,
// which treats overflow as fatal, the Builder checks for a full map first and
// returns errs.ErrMapFull, so the boot path can log the failure before halting.
package loader

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/format"
	"github.com/arloliu/physmap/internal/options"
	"github.com/arloliu/physmap/memmap"
	"github.com/arloliu/physmap/region"
)

// Source yields raw descriptors in discovery order. *firmware.MemoryMap
// implements it.
type Source interface {
	Descriptors() iter.Seq[region.Descriptor]
}

// Builder accumulates regions into a memory map.
type Builder struct {
	m                memmap.Map
	logger           *slog.Logger
	exitBootServices bool
	minPages         uint64
	added            int
}

// NewBuilder creates a Builder with an empty map.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

// Add appends one descriptor.
func (b *Builder) Add(d region.Descriptor) error {
	if b.m.Full() {
		b.logger.Error("memory map full, region dropped",
			"start", fmt.Sprintf("%#x", d.PhysicalStart),
			"pages", d.PageCount,
			"type", d.Type.String(),
			"capacity", memmap.Capacity)

		return fmt.Errorf("%w: region at %#x (%d pages)", errs.ErrMapFull, d.PhysicalStart, d.PageCount)
	}

	if b.exitBootServices && (d.Type == format.TypeBootServicesCode || d.Type == format.TypeBootServicesData) {
		d.Type = format.TypeConventional
	}

	b.m.AddRegion(d)
	b.added++
	b.logger.Debug("region added",
		"start", fmt.Sprintf("%#x", d.PhysicalStart),
		"pages", d.PageCount,
		"type", d.Type.String(),
		"visible", b.m.Len())

	return nil
}

// AddFirmware appends every descriptor yielded by src, stopping at the first
// error. Regions smaller than the WithMinPages threshold are skipped.
func (b *Builder) AddFirmware(src Source) error {
	n, skipped := 0, 0
	for d := range src.Descriptors() {
		if d.PageCount < b.minPages {
			b.logger.Debug("firmware region skipped",
				"start", fmt.Sprintf("%#x", d.PhysicalStart),
				"pages", d.PageCount,
				"min_pages", b.minPages)
			skipped++
			n++

			continue
		}
		if err := b.Add(d); err != nil {
			return fmt.Errorf("firmware region %d: %w", n, err)
		}
		n++
	}
	b.logger.Info("firmware memory map loaded", "regions", n, "skipped", skipped, "visible", b.m.Len())

	return nil
}

// Reserve appends a loader-owned region of pages pages at start. start must be
// page aligned and pages non-zero.
func (b *Builder) Reserve(kind format.MemoryType, start, pages uint64, attr format.Attribute) error {
	if start%region.PageSize != 0 {
		return fmt.Errorf("%w: start %#x is not page aligned", errs.ErrInvalidReservation, start)
	}
	if pages == 0 {
		return fmt.Errorf("%w: empty %s reservation at %#x", errs.ErrInvalidReservation, kind, start)
	}

	b.logger.Info("reserving region", "type", kind.String(), "start", fmt.Sprintf("%#x", start), "pages", pages)

	return b.Add(region.New(kind, start, pages, attr))
}

// ReserveBytes reserves size bytes at start, rounded up to whole pages.
func (b *Builder) ReserveBytes(kind format.MemoryType, start, size uint64, attr format.Attribute) error {
	pages := (size + region.PageSize - 1) / region.PageSize

	return b.Reserve(kind, start, pages, attr)
}

// Map returns the map under construction.
func (b *Builder) Map() *memmap.Map {
	return &b.m
}

// Finish re-sorts the map, logs the final listing at debug level and returns it.
func (b *Builder) Finish() *memmap.Map {
	b.m.Sort()

	s := Summarize(&b.m)
	b.logger.Info("memory map complete",
		"added", b.added,
		"visible", b.m.Len(),
		"usable_pages", s.UsablePages,
		"total_pages", s.TotalPages)
	if b.logger.Enabled(context.Background(), slog.LevelDebug) {
		b.logger.Debug("memory map listing", "map", fmt.Sprintf("%+v", &b.m))
	}

	return &b.m
}
