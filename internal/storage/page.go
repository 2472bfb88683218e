package storage

import (
	"errors"

	"github.com/lqviet/simpledb/internal/bx"
)

const (
	// PageSize is fixed; every heap file is a whole multiple of it.
	PageSize = 4096

	// HeaderSize covers version(u8) + numRecords(u16) + freeSpacePtr(u16) +
	// 3 reserved bytes.
	HeaderSize = 8

	// SlotSize is one (offset u16, length u16) slot directory entry.
	SlotSize = 4

	pageVersion = 1
)

// Header offsets
const (
	offVersion      = 0
	offNumRecords   = 1
	offFreeSpacePtr = 3
)

var (
	ErrNoSpace    = errors.New("page: not enough free space")
	ErrBadSlot    = errors.New("page: invalid slot")
	ErrCorruption = errors.New("page: corrupt slot or record bounds")
)

// Slot locates one record inside its page.
type Slot struct {
	Offset uint16
	Length uint16
}

// +------------------+ 0
// | Header (8 bytes) |
// | Slots[]          | grows toward the end
// +------------------+
// |   Free space     |
// +------------------+ <-- freeSpacePtr
// |  Record data     | grows from the end toward the header
// +------------------+ PageSize (4096)
//
// All multi-byte header and slot fields are little-endian. Slot i always
// refers to the i-th record inserted; slot indices are stable for the life
// of the page.
type Page struct {
	buf []byte
}

// NewPage allocates a zeroed page buffer. Call Initialize before first use;
// ReadPage overwrites the buffer wholesale.
func NewPage() *Page {
	return &Page{buf: make([]byte, PageSize)}
}

// Initialize resets the header to an empty page: version 1, no records,
// free space pointer at the very end of the buffer.
func (p *Page) Initialize() {
	for i := range p.buf {
		p.buf[i] = 0
	}
	p.buf[offVersion] = pageVersion
	p.setNumRecords(0)
	p.setFreeSpacePtr(PageSize)
}

// Data exposes the raw page image for disk I/O.
func (p *Page) Data() []byte { return p.buf }

func (p *Page) Version() uint8 { return p.buf[offVersion] }

func (p *Page) NumRecords() uint16 {
	return bx.U16At(p.buf, offNumRecords)
}

func (p *Page) setNumRecords(v uint16) {
	bx.PutU16At(p.buf, offNumRecords, v)
}

func (p *Page) freeSpacePtr() uint16 {
	return bx.U16At(p.buf, offFreeSpacePtr)
}

func (p *Page) setFreeSpacePtr(v uint16) {
	bx.PutU16At(p.buf, offFreeSpacePtr, v)
}

// FreeSpace returns the bytes available for one more record plus its slot.
func (p *Page) FreeSpace() uint16 {
	used := uint16(HeaderSize) + p.NumRecords()*SlotSize
	fsp := p.freeSpacePtr()
	if fsp < used {
		return 0
	}
	return fsp - used
}

func slotOff(i int) int {
	return HeaderSize + i*SlotSize
}

// AddRecord appends data to the page and returns the new slot index.
// On ErrNoSpace the page is left unmodified.
func (p *Page) AddRecord(data []byte) (int, error) {
	if len(data)+SlotSize > int(p.FreeSpace()) {
		return -1, ErrNoSpace
	}

	recOff := p.freeSpacePtr() - uint16(len(data))
	copy(p.buf[recOff:], data)

	i := int(p.NumRecords())
	bx.PutU16At(p.buf, slotOff(i), recOff)
	bx.PutU16At(p.buf, slotOff(i)+2, uint16(len(data)))

	p.setNumRecords(uint16(i) + 1)
	p.setFreeSpacePtr(recOff)
	return i, nil
}

// Slot returns the i-th slot directory entry.
func (p *Page) Slot(i int) (Slot, error) {
	if i < 0 || i >= int(p.NumRecords()) {
		return Slot{}, ErrBadSlot
	}
	o := slotOff(i)
	return Slot{
		Offset: bx.U16At(p.buf, o),
		Length: bx.U16At(p.buf, o+2),
	}, nil
}

// Record copies out the bytes the slot points at.
func (p *Page) Record(s Slot) ([]byte, error) {
	start, end := int(s.Offset), int(s.Offset)+int(s.Length)
	if start < int(p.freeSpacePtr()) || end > PageSize || start > end {
		return nil, ErrCorruption
	}
	out := make([]byte, s.Length)
	copy(out, p.buf[start:end])
	return out, nil
}
