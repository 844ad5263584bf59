// Package endian provides byte order utilities for the region map image.
//
// The map crosses a stage boundary as raw memory, so the image written by the
// producer is in the producer's native byte order. Tools that move an image
// between machines (snapshots, fixtures) name the order explicitly through an
// EndianEngine instead of assuming the host's.
//
// # Basic Usage
//
//	engine := endian.Native()
//	img := m.Bytes(engine)
//
// For a fixed, portable order:
//
//	engine := endian.GetLittleEndianEngine()
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. On a little-endian host the low byte (0x00) comes first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// Native returns the engine matching the host byte order.
func Native() EndianEngine {
	if IsNativeBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Name returns "little" or "big" for the given engine.
func Name(engine EndianEngine) string {
	if engine == binary.BigEndian {
		return "big"
	}

	return "little"
}
