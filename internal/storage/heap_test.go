package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHeap returns a heap over a real file in a temp directory.
func newTestHeap(t *testing.T) (*TableHeap, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.data")
	h, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h, path
}

func collect(t *testing.T, h *TableHeap) [][]byte {
	t.Helper()

	var out [][]byte
	it := h.Iterator()
	for {
		rec, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, rec)
	}
}

func TestHeap_OpenCreatesEmptyFile(t *testing.T) {
	h, path := newTestHeap(t)

	numPages, err := h.NumPages()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), numPages)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestHeap_InsertAndIterate_InOrder(t *testing.T) {
	h, _ := newTestHeap(t)

	var want [][]byte
	for i := 0; i < 50; i++ {
		rec := []byte(fmt.Sprintf("record-%03d", i))
		require.NoError(t, h.Insert(rec))
		want = append(want, rec)
	}

	assert.Equal(t, want, collect(t, h))
}

func TestHeap_InsertPersisted(t *testing.T) {
	h, path := newTestHeap(t)

	require.NoError(t, h.Insert([]byte("durable")))
	require.NoError(t, h.Close())

	h2, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = h2.Close() }()

	got := collect(t, h2)
	require.Len(t, got, 1)
	assert.Equal(t, []byte("durable"), got[0])
}

func TestHeap_PageSpill_FileGrowsInPageUnits(t *testing.T) {
	h, path := newTestHeap(t)

	// 100-byte records: one page fits (4096-8)/(100+4) = 39 of them.
	rec := []byte(strings.Repeat("r", 100))
	perPage := (PageSize - HeaderSize) / (len(rec) + SlotSize)

	for i := 0; i < perPage; i++ {
		require.NoError(t, h.Insert(rec))
	}
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(PageSize), info.Size())

	// one more record spills to a second page
	require.NoError(t, h.Insert(rec))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2*PageSize), info.Size())

	assert.Len(t, collect(t, h), perPage+1)
}

func TestHeap_RecordTooLarge(t *testing.T) {
	h, path := newTestHeap(t)

	max := PageSize - HeaderSize - SlotSize
	require.NoError(t, h.Insert([]byte(strings.Repeat("x", max))))

	err := h.Insert([]byte(strings.Repeat("x", max+1)))
	require.ErrorIs(t, err, ErrRecordTooLarge)

	// the failed insert must not have grown the file
	info, statErr := os.Stat(path)
	require.NoError(t, statErr)
	assert.Equal(t, int64(PageSize), info.Size())
}

func TestHeap_IteratorSkipsEmptyMiddlePage(t *testing.T) {
	h := NewTableHeap(NewMemFile())

	// page 0: two records
	p := NewPage()
	p.Initialize()
	_, err := p.AddRecord([]byte("a"))
	require.NoError(t, err)
	_, err = p.AddRecord([]byte("b"))
	require.NoError(t, err)
	require.NoError(t, h.WritePage(0, p))

	// page 1: initialized but empty
	p.Initialize()
	require.NoError(t, h.WritePage(1, p))

	// page 2: one record
	p.Initialize()
	_, err = p.AddRecord([]byte("c"))
	require.NoError(t, err)
	require.NoError(t, h.WritePage(2, p))

	got := collect(t, h)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, got)
}

func TestHeap_IteratorObservesMidScanInserts(t *testing.T) {
	h := NewTableHeap(NewMemFile())

	require.NoError(t, h.Insert([]byte("one")))

	it := h.Iterator()
	rec, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("one"), rec)

	// insert while the scan is paused; same page, so the cursor sees it
	require.NoError(t, h.Insert([]byte("two")))

	rec, ok, err = it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("two"), rec)

	_, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHeap_IteratorOnEmptyHeap(t *testing.T) {
	h := NewTableHeap(NewMemFile())

	_, ok, err := h.Iterator().Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHeap_ReadPageOutOfRange(t *testing.T) {
	h := NewTableHeap(NewMemFile())

	p := NewPage()
	err := h.ReadPage(0, p)
	require.ErrorIs(t, err, ErrPageOutOfRange)

	require.NoError(t, h.Insert([]byte("x")))
	require.NoError(t, h.ReadPage(0, p))
	err = h.ReadPage(1, p)
	require.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestHeap_WritePageOutOfRange(t *testing.T) {
	h := NewTableHeap(NewMemFile())

	p := NewPage()
	p.Initialize()

	// appending at NumPages is legal...
	require.NoError(t, h.WritePage(0, p))
	// ...but skipping past the end is not
	err := h.WritePage(2, p)
	require.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestHeap_MemFileFormatMatchesDisk(t *testing.T) {
	mem := NewMemFile()
	h := NewTableHeap(mem)

	require.NoError(t, h.Insert([]byte("hello")))

	img := mem.Bytes()
	require.Len(t, img, PageSize)
	// same header layout the disk path writes
	assert.Equal(t, byte(1), img[0])
	assert.Equal(t, []byte{0x01, 0x00}, img[1:3])
	assert.Equal(t, []byte("hello"), img[PageSize-5:])
}
