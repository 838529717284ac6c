// Package eeprom implements the flash-based EEPROM emulation used by the
// power-feed controller firmware: 16-bit values keyed by 16-bit tags,
// stored as append-only items across two or more flash pages.
//
// Each item occupies one 32-bit word, tag in the low half-word and value in
// the high half-word. Word 0 of a page holds the page status; exactly one
// page carries the active marker. Writes append to the active page; when it
// fills up, the newest value of every tag is rescued to the next page, the
// next page becomes active and the old one is erased.
package eeprom

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/feedctl/go-flashplan/flash"
)

const (
	activePageMarker uint16 = 0xABCD
	erasedItem       uint32 = 0xFFFFFFFF

	// Each item is a 16-bit tag plus a 16-bit value.
	itemSize uint32 = 4

	// The most significant tag bit is reserved for future use.
	reservedTagMask uint16 = 0x8000
)

var (
	// ErrNoActivePage is returned when no page carries the active marker.
	// Init establishes one.
	ErrNoActivePage = errors.New("eeprom: no active page")

	// ErrFull is returned when a write does not fit even after compaction.
	ErrFull = errors.New("eeprom: too many variables")

	// ErrReservedTag is returned for tags with the reserved bit set.
	ErrReservedTag = errors.New("eeprom: tag uses the reserved bit")
)

// Store is an EEPROM controller over the first pageCount pages of a flash
// device.
type Store struct {
	dev       flash.Device
	pageItems uint32
	pageCount uint32
}

// Open returns a store over the first pageCount pages of dev. At least two
// pages are required so that a full page can always be rescued to an empty
// one.
func Open(dev flash.Device, pageCount uint32) (*Store, error) {
	if pageCount < 2 {
		return nil, errors.Errorf("eeprom: page count must be at least 2, got %d", pageCount)
	}
	pageSize := dev.PageSize()
	if pageSize == 0 || pageSize%itemSize != 0 {
		return nil, errors.Errorf("eeprom: invalid page size %d", pageSize)
	}
	if pageCount*pageSize > dev.Size() {
		return nil, errors.Errorf("eeprom: %d pages of %d bytes exceed device size %d",
			pageCount, pageSize, dev.Size())
	}
	return &Store{
		dev:       dev,
		pageItems: pageSize / itemSize,
		pageCount: pageCount,
	}, nil
}

// Init checks that the store is in a consistent state and fixes it
// otherwise: every non-active dirty page is erased, and the first page is
// marked active when no active page exists.
func (s *Store) Init() error {
	active, ok, err := s.findActive()
	if err != nil {
		return err
	}
	for page := uint32(0); page < s.pageCount; page++ {
		if ok && page == active {
			continue
		}
		if err := s.erasePageIfDirty(page); err != nil {
			return err
		}
	}
	if !ok {
		return s.setPageStatus(0, activePageMarker)
	}
	return nil
}

// Erase removes all stored values and marks the first page active.
func (s *Store) Erase() error {
	for page := uint32(0); page < s.pageCount; page++ {
		if err := s.dev.ErasePage(page * s.dev.PageSize()); err != nil {
			return err
		}
	}
	return s.setPageStatus(0, activePageMarker)
}

// Read returns the latest value written for tag. ok is false when the tag
// was never written.
func (s *Store) Read(tag uint16) (value uint16, ok bool, err error) {
	if tag&reservedTagMask != 0 {
		return 0, false, errors.WithStack(ErrReservedTag)
	}
	page, found, err := s.findActive()
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, errors.WithStack(ErrNoActivePage)
	}
	return s.search(page, s.pageItems, tag)
}

// Write stores a value for tag, compacting to the next page first when the
// active page is full.
func (s *Store) Write(tag, value uint16) error {
	if tag&reservedTagMask != 0 {
		return errors.WithStack(ErrReservedTag)
	}
	page, found, err := s.findActive()
	if err != nil {
		return err
	}
	if !found {
		return errors.WithStack(ErrNoActivePage)
	}
	page, err = s.rescueIfFull(page)
	if err != nil {
		return err
	}
	for item := uint32(1); item < s.pageItems; item++ {
		raw, err := s.readItem(page, item)
		if err != nil {
			return err
		}
		if raw == erasedItem {
			return s.programItem(page, item, tag, value)
		}
	}
	return errors.WithStack(ErrFull)
}

// rescueIfFull copies the newest value of every tag from a full page to the
// next one, marks it active and erases the source. A page is full when its
// last item slot has been programmed.
func (s *Store) rescueIfFull(srcPage uint32) (uint32, error) {
	last, err := s.readItem(srcPage, s.pageItems-1)
	if err != nil {
		return 0, err
	}
	if last == erasedItem {
		return srcPage, nil
	}

	tgtPage := srcPage + 1
	if tgtPage == s.pageCount {
		tgtPage = 0
	}
	tgtPos := uint32(1) // skip the page status item

	// Scan the source backwards so the newest value of each tag wins.
	for item := s.pageItems - 1; item >= 1; item-- {
		tag, value, err := s.readItemTuple(srcPage, item)
		if err != nil {
			return 0, err
		}
		if tag == 0xFFFF {
			continue
		}
		_, seen, err := s.search(tgtPage, tgtPos, tag)
		if err != nil {
			return 0, err
		}
		if seen {
			continue
		}
		if err := s.programItem(tgtPage, tgtPos, tag, value); err != nil {
			return 0, err
		}
		tgtPos++
	}

	if err := s.setPageStatus(tgtPage, activePageMarker); err != nil {
		return 0, err
	}
	if err := s.erasePageIfDirty(srcPage); err != nil {
		return 0, err
	}
	return tgtPage, nil
}

func (s *Store) search(page, maxItem uint32, tag uint16) (uint16, bool, error) {
	for item := maxItem - 1; item >= 1; item-- {
		t, value, err := s.readItemTuple(page, item)
		if err != nil {
			return 0, false, err
		}
		if t == tag {
			return value, true, nil
		}
	}
	return 0, false, nil
}

func (s *Store) findActive() (uint32, bool, error) {
	for page := uint32(0); page < s.pageCount; page++ {
		status, err := s.pageStatus(page)
		if err != nil {
			return 0, false, err
		}
		if status == activePageMarker {
			return page, true, nil
		}
	}
	return 0, false, nil
}

func (s *Store) pageStatus(page uint32) (uint16, error) {
	b := make([]byte, 2)
	if _, err := s.dev.ReadAt(b, int64(s.pageOffset(page))); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *Store) setPageStatus(page uint32, status uint16) error {
	return s.dev.ProgramHalfWord(s.pageOffset(page), status)
}

func (s *Store) pageOffset(page uint32) uint32 {
	return s.itemOffset(page, 0)
}

func (s *Store) itemOffset(page, item uint32) uint32 {
	return page*s.dev.PageSize() + item*itemSize
}

func (s *Store) readItem(page, item uint32) (uint32, error) {
	b := make([]byte, itemSize)
	if _, err := s.dev.ReadAt(b, int64(s.itemOffset(page, item))); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (s *Store) readItemTuple(page, item uint32) (tag, value uint16, err error) {
	raw, err := s.readItem(page, item)
	if err != nil {
		return 0, 0, err
	}
	return uint16(raw & 0xFFFF), uint16(raw >> 16), nil
}

// programItem writes the value half-word before the tag, so a write torn
// between the two leaves an unknown tag rather than a corrupted value.
func (s *Store) programItem(page, pos uint32, tag, value uint16) error {
	off := s.itemOffset(page, pos)
	if err := s.dev.ProgramHalfWord(off+2, value); err != nil {
		return err
	}
	return s.dev.ProgramHalfWord(off, tag)
}

func (s *Store) erasePageIfDirty(page uint32) error {
	dirty, err := s.isPageDirty(page)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	return s.dev.ErasePage(s.pageOffset(page))
}

func (s *Store) isPageDirty(page uint32) (bool, error) {
	for item := uint32(0); item < s.pageItems; item++ {
		raw, err := s.readItem(page, item)
		if err != nil {
			return false, err
		}
		if raw != erasedItem {
			return true, nil
		}
	}
	return false, nil
}
