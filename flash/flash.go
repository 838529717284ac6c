// Package flash abstracts a NOR-flash program/erase controller the way
// the STM32F1 FPEC exposes it: pages erase to 0xFF and locations are
// programmed in half-word units, only from the erased state.
package flash

import (
	"io"

	"github.com/pkg/errors"
)

// Device is the interface required from a flash device.
type Device interface {
	io.ReaderAt

	// ErasePage erases the page beginning at offset. The offset must be
	// page-aligned.
	ErasePage(offset uint32) error

	// ProgramHalfWord programs a 16-bit value at a 2-aligned offset. The
	// location must currently hold the erased value 0xFFFF.
	ProgramHalfWord(offset uint32, value uint16) error

	// PageSize returns the erase granularity in bytes.
	PageSize() uint32

	// Size returns the device capacity in bytes.
	Size() uint32
}

var (
	// ErrOutOfRange is returned when an offset lies outside the device.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrBadAlignment is returned when an offset breaks the alignment
	// required by the operation.
	ErrBadAlignment = errors.New("misaligned offset")

	// ErrNotErased is returned when programming a location that does not
	// hold the erased value.
	ErrNotErased = errors.New("location is not erased")
)
