// Package memflash simulates a NOR-flash device in memory.
package memflash

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/feedctl/go-flashplan/flash"
)

var _ flash.Device = &Device{}

// Device keeps flash contents in a byte slice, enforcing erase-before-write
// semantics: erasing a page sets it to 0xFF, programming a half-word is only
// allowed while the location still holds the erased value.
type Device struct {
	pageSize uint32
	data     []byte
}

// New returns a device of the given size with all pages erased.
func New(size, pageSize uint32) *Device {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xFF
	}
	return &Device{pageSize: pageSize, data: data}
}

// FromBytes wraps an existing flash dump, such as a storage region read out
// of a device or spliced from a firmware image.
func FromBytes(b []byte, pageSize uint32) *Device {
	data := make([]byte, len(b))
	copy(data, b)
	return &Device{pageSize: pageSize, data: data}
}

// Bytes returns a copy of the device contents.
func (d *Device) Bytes() []byte {
	out := make([]byte, len(d.data))
	copy(out, d.data)
	return out
}

// PageSize returns the erase granularity in bytes.
func (d *Device) PageSize() uint32 {
	return d.pageSize
}

// Size returns the device capacity in bytes.
func (d *Device) Size() uint32 {
	return uint32(len(d.data))
}

// ReadAt reads device contents at the given offset.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(d.data)) {
		return 0, errors.Wrapf(flash.ErrOutOfRange, "read %d bytes at 0x%x", len(p), off)
	}
	return copy(p, d.data[off:]), nil
}

// ErasePage erases the page beginning at offset.
func (d *Device) ErasePage(offset uint32) error {
	if offset%d.pageSize != 0 {
		return errors.Wrapf(flash.ErrBadAlignment, "erase at 0x%x, page size %d", offset, d.pageSize)
	}
	if offset+d.pageSize > uint32(len(d.data)) {
		return errors.Wrapf(flash.ErrOutOfRange, "erase at 0x%x", offset)
	}
	for i := offset; i < offset+d.pageSize; i++ {
		d.data[i] = 0xFF
	}
	return nil
}

// ProgramHalfWord programs a 16-bit value at a 2-aligned offset.
func (d *Device) ProgramHalfWord(offset uint32, value uint16) error {
	if offset%2 != 0 {
		return errors.Wrapf(flash.ErrBadAlignment, "program at 0x%x", offset)
	}
	if offset+2 > uint32(len(d.data)) {
		return errors.Wrapf(flash.ErrOutOfRange, "program at 0x%x", offset)
	}
	if binary.LittleEndian.Uint16(d.data[offset:]) != 0xFFFF {
		return errors.Wrapf(flash.ErrNotErased, "program at 0x%x", offset)
	}
	binary.LittleEndian.PutUint16(d.data[offset:], value)
	return nil
}
