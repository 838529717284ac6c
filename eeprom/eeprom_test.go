package eeprom

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/feedctl/go-flashplan/flash/memflash"
)

// 64-byte pages keep the compaction tests small: 16 items per page, one of
// which is the status marker.
const testPageSize = 64

func newStore(t *testing.T, pageCount uint32) (*Store, *memflash.Device) {
	t.Helper()

	dev := memflash.New(pageCount*testPageSize, testPageSize)
	store, err := Open(dev, pageCount)
	require.NoError(t, err)
	require.NoError(t, store.Init())
	return store, dev
}

func TestOpenValidation(t *testing.T) {
	requireT := require.New(t)

	dev := memflash.New(4*testPageSize, testPageSize)

	_, err := Open(dev, 1)
	requireT.Error(err)

	_, err = Open(dev, 5)
	requireT.Error(err)

	_, err = Open(dev, 4)
	requireT.NoError(err)
}

func TestWriteRead(t *testing.T) {
	requireT := require.New(t)

	store, _ := newStore(t, 2)
	requireT.NoError(store.Write(1, 0xDEAD))
	requireT.NoError(store.Write(2, 0xBEEF))

	v, ok, err := store.Read(1)
	requireT.NoError(err)
	requireT.True(ok)
	requireT.EqualValues(0xDEAD, v)

	v, ok, err = store.Read(2)
	requireT.NoError(err)
	requireT.True(ok)
	requireT.EqualValues(0xBEEF, v)

	_, ok, err = store.Read(3)
	requireT.NoError(err)
	requireT.False(ok)
}

func TestUpdateReturnsLatest(t *testing.T) {
	requireT := require.New(t)

	store, _ := newStore(t, 2)
	for i := uint16(0); i < 5; i++ {
		requireT.NoError(store.Write(7, 100+i))
	}

	v, ok, err := store.Read(7)
	requireT.NoError(err)
	requireT.True(ok)
	requireT.EqualValues(104, v)
}

func TestReservedTag(t *testing.T) {
	requireT := require.New(t)

	store, _ := newStore(t, 2)
	requireT.True(errors.Is(store.Write(0x8000, 1), ErrReservedTag))

	_, _, err := store.Read(0xFFFF)
	requireT.True(errors.Is(err, ErrReservedTag))
}

func TestCompaction(t *testing.T) {
	requireT := require.New(t)

	store, _ := newStore(t, 2)

	// 15 usable slots per page. Fill the active page with updates of three
	// tags, then keep writing across the compaction boundary.
	for i := uint16(0); i < 40; i++ {
		tag := uint16(1 + i%3)
		requireT.NoError(store.Write(tag, 1000+i))
	}

	// Latest value of each tag survives every rescue.
	want := map[uint16]uint16{1: 1039, 2: 1037, 3: 1038}
	for tag, expected := range want {
		v, ok, err := store.Read(tag)
		requireT.NoError(err)
		requireT.True(ok)
		requireT.Equal(expected, v)
	}
}

func TestCompactionWrapsToFirstPage(t *testing.T) {
	requireT := require.New(t)

	store, _ := newStore(t, 2)

	// Two full page generations move the active page back to page 0.
	for i := uint16(0); i < 31; i++ {
		requireT.NoError(store.Write(1, i))
	}

	page, ok, err := store.findActive()
	requireT.NoError(err)
	requireT.True(ok)
	requireT.EqualValues(0, page)

	v, ok, err := store.Read(1)
	requireT.NoError(err)
	requireT.True(ok)
	requireT.EqualValues(30, v)
}

func TestFullStore(t *testing.T) {
	requireT := require.New(t)

	store, _ := newStore(t, 2)

	// 15 distinct tags fill a page exactly; compaction cannot drop any of
	// them, so the 16th distinct tag has nowhere to go.
	for tag := uint16(1); tag <= 15; tag++ {
		requireT.NoError(store.Write(tag, tag))
	}
	requireT.True(errors.Is(store.Write(16, 16), ErrFull))
}

func TestErase(t *testing.T) {
	requireT := require.New(t)

	store, _ := newStore(t, 3)
	requireT.NoError(store.Write(1, 42))
	requireT.NoError(store.Erase())

	_, ok, err := store.Read(1)
	requireT.NoError(err)
	requireT.False(ok)

	requireT.NoError(store.Write(1, 43))
	v, ok, err := store.Read(1)
	requireT.NoError(err)
	requireT.True(ok)
	requireT.EqualValues(43, v)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	requireT := require.New(t)

	store, dev := newStore(t, 2)
	requireT.NoError(store.Write(1, 0xCAFE))

	reopened, err := Open(dev, 2)
	requireT.NoError(err)
	requireT.NoError(reopened.Init())

	v, ok, err := reopened.Read(1)
	requireT.NoError(err)
	requireT.True(ok)
	requireT.EqualValues(0xCAFE, v)
}

func TestInitErasesOrphanedPages(t *testing.T) {
	requireT := require.New(t)

	dev := memflash.New(2*testPageSize, testPageSize)

	// Garbage on page 1, no active marker anywhere.
	requireT.NoError(dev.ProgramHalfWord(testPageSize+8, 0x1234))

	store, err := Open(dev, 2)
	requireT.NoError(err)
	requireT.NoError(store.Init())

	page, ok, err := store.findActive()
	requireT.NoError(err)
	requireT.True(ok)
	requireT.EqualValues(0, page)

	b := make([]byte, 2)
	_, err = dev.ReadAt(b, testPageSize+8)
	requireT.NoError(err)
	requireT.Equal([]byte{0xFF, 0xFF}, b)
}

func TestReadWithoutInit(t *testing.T) {
	requireT := require.New(t)

	dev := memflash.New(2*testPageSize, testPageSize)
	store, err := Open(dev, 2)
	requireT.NoError(err)

	_, _, err = store.Read(1)
	requireT.True(errors.Is(err, ErrNoActivePage))
}
