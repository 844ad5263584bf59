// Package handoff moves a region map across the loader/kernel boundary through
// a memory-mapped file.
//
// The producer publishes the map image in host byte order, exactly as it sits
// in memory. The consumer maps the same file read-only and reads the map in
// place through memmap.View, trusting only the layout.
package handoff

import (
	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/memmap"
)

// Region is an attached map image.
type Region struct {
	data    []byte
	m       *memmap.Map
	release func([]byte) error
	closed  bool
}

// Map returns the attached map. On platforms with mmap it aliases a read-only
// mapping: it must not be mutated, and it is invalid after Close.
func (r *Region) Map() *memmap.Map {
	return r.m
}

// Bytes returns the raw image.
func (r *Region) Bytes() []byte {
	return r.data
}

// Copy returns a private, mutable copy of the attached map. It fails with
// errs.ErrHandoffAlreadyClosed once the region is closed.
func (r *Region) Copy() (*memmap.Map, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}

	m := *r.m

	return &m, nil
}

// Close releases the mapping. Closing twice is a no-op.
func (r *Region) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.m = nil

	if r.release == nil {
		return nil
	}
	data := r.data
	r.data = nil

	return r.release(data)
}

// Closed reports whether Close has been called.
func (r *Region) Closed() bool {
	return r.closed
}

func (r *Region) checkOpen() error {
	if r.closed {
		return errs.ErrHandoffAlreadyClosed
	}

	return nil
}

// Validate runs the consumer-side invariant check on the attached map.
func (r *Region) Validate() error {
	if err := r.checkOpen(); err != nil {
		return err
	}

	return r.m.Validate()
}
