// Package flashplan computes and validates the flash memory layout of the
// power-feed controller firmware: a code region at the bottom of flash and
// a reserved emulated-EEPROM storage region at the top, split on a page
// boundary derived from the target description.
package flashplan

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/feedctl/go-flashplan/flashplan/config"
)

// Region is a half-open [Start, End) range of flash addresses.
type Region struct {
	Start uint32
	End   uint32
}

// Size returns the region size in bytes.
func (r Region) Size() uint32 {
	return r.End - r.Start
}

// Empty reports whether the region covers no addresses.
func (r Region) Empty() bool {
	return r.Start == r.End
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.End
}

func (r Region) String() string {
	return fmt.Sprintf("[0x%08x, 0x%08x)", r.Start, r.End)
}

// Plan is the computed memory layout for one target. Code and Storage are
// contiguous and disjoint and together cover the whole flash.
type Plan struct {
	FlashOrigin   uint32
	FlashLength   uint32
	PageSize      uint32
	ReservedPages uint32

	RAM           Region
	AssertOverlap bool

	// Code is the range the linked image may occupy.
	Code Region

	// Storage is the range reserved for the emulated EEPROM. Empty when
	// no pages are reserved.
	Storage Region
}

// NewPlan computes the memory layout for a target. It is a pure function of
// the target constants; invalid combinations are configuration errors.
func NewPlan(target *config.Target) (*Plan, error) {
	if target.PageSize == 0 {
		return nil, errors.New("flashplan: page size must not be zero")
	}
	if target.FlashLength == 0 {
		return nil, errors.New("flashplan: flash length must not be zero")
	}
	if target.FlashLength%target.PageSize != 0 {
		return nil, errors.Errorf("flashplan: flash length %d is not a multiple of the page size %d",
			target.FlashLength, target.PageSize)
	}
	reserved := uint64(target.ReservedPages) * uint64(target.PageSize)
	if reserved >= uint64(target.FlashLength) {
		return nil, errors.Errorf(
			"flashplan: %d reserved pages of %d bytes leave no code region in %d bytes of flash",
			target.ReservedPages, target.PageSize, target.FlashLength)
	}

	boundary := target.FlashOrigin + target.FlashLength - uint32(reserved)
	return &Plan{
		FlashOrigin:   target.FlashOrigin,
		FlashLength:   target.FlashLength,
		PageSize:      target.PageSize,
		ReservedPages: target.ReservedPages,
		RAM: Region{
			Start: target.RamOrigin,
			End:   target.RamOrigin + target.RamLength,
		},
		AssertOverlap: target.AssertOverlap,
		Code: Region{
			Start: target.FlashOrigin,
			End:   boundary,
		},
		Storage: Region{
			Start: boundary,
			End:   target.FlashOrigin + target.FlashLength,
		},
	}, nil
}

// String renders the plan the way the plan command prints it.
func (p *Plan) String() string {
	return fmt.Sprintf("code %s (%d bytes), storage %s (%d pages, %d bytes)",
		p.Code, p.Code.Size(), p.Storage, p.ReservedPages, p.Storage.Size())
}
