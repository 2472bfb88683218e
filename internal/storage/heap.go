package storage

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrPageOutOfRange = errors.New("heap: page id out of range")

	// ErrRecordTooLarge means the record plus its slot cannot fit even a
	// freshly initialized page.
	ErrRecordTooLarge = errors.New("heap: record too large for a page")
)

// TableHeap owns one data file holding an unordered sequence of slotted
// pages. Records are only ever appended; pages, once written, only grow.
type TableHeap struct {
	file File
}

// Open opens (or creates) the heap file at path. The returned heap
// exclusively owns the file handle until Close.
func Open(path string) (*TableHeap, error) {
	f, err := openHeapFile(path)
	if err != nil {
		return nil, err
	}
	return &TableHeap{file: f}, nil
}

// NewTableHeap wraps an already-open File. Used with MemFile in tests.
func NewTableHeap(f File) *TableHeap {
	return &TableHeap{file: f}
}

func (h *TableHeap) Close() error {
	return h.file.Close()
}

// NumPages is derived from the current file size; the file is always a
// whole multiple of PageSize.
func (h *TableHeap) NumPages() (uint32, error) {
	size, err := h.file.Size()
	if err != nil {
		return 0, err
	}
	return uint32(size / PageSize), nil
}

// ReadPage fills p with the page image at pageID.
func (h *TableHeap) ReadPage(pageID uint32, p *Page) error {
	numPages, err := h.NumPages()
	if err != nil {
		return err
	}
	if pageID >= numPages {
		return fmt.Errorf("%w: read page %d of %d", ErrPageOutOfRange, pageID, numPages)
	}

	if _, err := h.file.ReadAt(p.Data(), int64(pageID)*PageSize); err != nil {
		return fmt.Errorf("heap: read page %d: %w", pageID, err)
	}
	return nil
}

// WritePage writes p at pageID and flushes. Writing pageID == NumPages is
// the legal way to append a new page.
func (h *TableHeap) WritePage(pageID uint32, p *Page) error {
	numPages, err := h.NumPages()
	if err != nil {
		return err
	}
	if pageID > numPages {
		return fmt.Errorf("%w: write page %d of %d", ErrPageOutOfRange, pageID, numPages)
	}
	if pageID == numPages {
		slog.Debug("heap: appending new page", "pageID", pageID)
	}

	if _, err := h.file.WriteAt(p.Data(), int64(pageID)*PageSize); err != nil {
		return fmt.Errorf("heap: write page %d: %w", pageID, err)
	}
	return h.file.Sync()
}

// Insert appends recordData to the last page, allocating a fresh page when
// the last one is full. The record is durable once Insert returns nil.
func (h *TableHeap) Insert(recordData []byte) error {
	if len(recordData)+SlotSize > PageSize-HeaderSize {
		return ErrRecordTooLarge
	}

	numPages, err := h.NumPages()
	if err != nil {
		return err
	}

	page := NewPage()
	if numPages > 0 {
		lastPageID := numPages - 1
		if err := h.ReadPage(lastPageID, page); err != nil {
			return err
		}
		_, err := page.AddRecord(recordData)
		if err == nil {
			return h.WritePage(lastPageID, page)
		}
		if !errors.Is(err, ErrNoSpace) {
			return err
		}
	}

	slog.Info("heap: allocating new page for record", "size", len(recordData))
	page.Initialize()
	if _, err := page.AddRecord(recordData); err != nil {
		// cannot happen after the size pre-check
		return fmt.Errorf("heap: add record to fresh page: %w", err)
	}
	return h.WritePage(numPages, page)
}

// Iterator returns a sequential cursor positioned before the first record.
// The iterator borrows the heap: it must not outlive it, and it observes
// records inserted after its creation.
func (h *TableHeap) Iterator() *Iterator {
	return &Iterator{heap: h, page: NewPage()}
}

// Iterator walks every record in page order, slot order. Pages with zero
// records are silently skipped; they are legal anywhere in the file.
type Iterator struct {
	heap    *TableHeap
	page    *Page
	pageID  uint32
	slotNum uint16
}

// Next returns the next record's bytes, or ok=false at end of heap.
// NumPages is re-read on every call so inserts during a scan are observed.
func (it *Iterator) Next() ([]byte, bool, error) {
	for {
		numPages, err := it.heap.NumPages()
		if err != nil {
			return nil, false, err
		}
		if it.pageID >= numPages {
			return nil, false, nil
		}

		if err := it.heap.ReadPage(it.pageID, it.page); err != nil {
			return nil, false, err
		}

		if it.slotNum >= it.page.NumRecords() {
			it.slotNum = 0
			it.pageID++
			continue
		}

		slot, err := it.page.Slot(int(it.slotNum))
		if err != nil {
			return nil, false, err
		}
		data, err := it.page.Record(slot)
		if err != nil {
			return nil, false, err
		}
		it.slotNum++
		return data, true, nil
	}
}
