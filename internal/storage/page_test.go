package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_Initialize(t *testing.T) {
	p := NewPage()
	p.Initialize()

	assert.Equal(t, uint8(1), p.Version())
	assert.Equal(t, uint16(0), p.NumRecords())
	assert.Equal(t, uint16(PageSize), p.freeSpacePtr())
	assert.Equal(t, uint16(PageSize-HeaderSize), p.FreeSpace())
}

func TestPage_HeaderLayout(t *testing.T) {
	p := NewPage()
	p.Initialize()

	_, err := p.AddRecord([]byte("hello"))
	require.NoError(t, err)

	buf := p.Data()

	// version u8 @0
	assert.Equal(t, byte(1), buf[0])
	// numRecords u16le @1..3
	assert.Equal(t, []byte{0x01, 0x00}, buf[1:3])
	// freeSpacePtr u16le @3..5: 4096-5 = 4091 = 0x0FFB
	assert.Equal(t, []byte{0xfb, 0x0f}, buf[3:5])
	// reserved @5..8
	assert.Equal(t, []byte{0x00, 0x00, 0x00}, buf[5:8])
	// slot 0 @8: offset 4091, length 5
	assert.Equal(t, []byte{0xfb, 0x0f, 0x05, 0x00}, buf[8:12])
	// record bytes at the very end of the page
	assert.Equal(t, []byte("hello"), buf[4091:4096])
}

func TestPage_AddRecord_SlotOrder(t *testing.T) {
	p := NewPage()
	p.Initialize()

	records := [][]byte{
		[]byte("first"),
		[]byte("second record"),
		[]byte(""),
		[]byte("fourth"),
	}
	for i, rec := range records {
		slot, err := p.AddRecord(rec)
		require.NoError(t, err)
		assert.Equal(t, i, slot)
	}

	require.Equal(t, uint16(len(records)), p.NumRecords())
	for i, want := range records {
		s, err := p.Slot(i)
		require.NoError(t, err)
		got, err := p.Record(s)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(want, got), "record %d mismatch", i)
	}
}

func TestPage_AddRecord_NoSpaceLeavesPageUnmodified(t *testing.T) {
	p := NewPage()
	p.Initialize()

	big := []byte(strings.Repeat("x", 2000))
	_, err := p.AddRecord(big)
	require.NoError(t, err)
	_, err = p.AddRecord(big)
	require.NoError(t, err)

	before := make([]byte, PageSize)
	copy(before, p.Data())

	_, err = p.AddRecord(big)
	require.ErrorIs(t, err, ErrNoSpace)
	assert.Equal(t, before, p.Data())
}

func TestPage_Capacity(t *testing.T) {
	// A page taking records of exactly k bytes fits
	// (PageSize - HeaderSize) / (k + SlotSize) of them.
	const k = 100
	want := (PageSize - HeaderSize) / (k + SlotSize)

	p := NewPage()
	p.Initialize()

	rec := []byte(strings.Repeat("a", k))
	n := 0
	for {
		if _, err := p.AddRecord(rec); err != nil {
			require.ErrorIs(t, err, ErrNoSpace)
			break
		}
		n++
	}
	assert.Equal(t, want, n)

	// invariant: HeaderSize + numRecords*SlotSize <= freeSpacePtr <= PageSize
	assert.LessOrEqual(t, uint16(HeaderSize)+p.NumRecords()*SlotSize, p.freeSpacePtr())
	assert.LessOrEqual(t, p.freeSpacePtr(), uint16(PageSize))
}

func TestPage_MaxSingleRecord(t *testing.T) {
	p := NewPage()
	p.Initialize()

	// largest record a page can hold: PageSize - HeaderSize - SlotSize
	max := PageSize - HeaderSize - SlotSize
	slot, err := p.AddRecord([]byte(strings.Repeat("m", max)))
	require.NoError(t, err)
	assert.Equal(t, 0, slot)
	assert.Equal(t, uint16(0), p.FreeSpace())

	p.Initialize()
	_, err = p.AddRecord([]byte(strings.Repeat("m", max+1)))
	require.ErrorIs(t, err, ErrNoSpace)
}

func TestPage_SlotOutOfRange(t *testing.T) {
	p := NewPage()
	p.Initialize()

	_, err := p.Slot(0)
	require.ErrorIs(t, err, ErrBadSlot)

	_, err = p.AddRecord([]byte("x"))
	require.NoError(t, err)

	_, err = p.Slot(1)
	require.ErrorIs(t, err, ErrBadSlot)
	_, err = p.Slot(-1)
	require.ErrorIs(t, err, ErrBadSlot)
}

func TestPage_RecordBoundsChecked(t *testing.T) {
	p := NewPage()
	p.Initialize()

	_, err := p.Record(Slot{Offset: PageSize - 2, Length: 8})
	require.ErrorIs(t, err, ErrCorruption)
}

func TestPage_DebugString(t *testing.T) {
	p := NewPage()
	p.Initialize()
	_, err := p.AddRecord([]byte("peek"))
	require.NoError(t, err)

	out := p.DebugString()
	assert.Contains(t, out, "numRecords=1")
	assert.Contains(t, out, "peek")
}
