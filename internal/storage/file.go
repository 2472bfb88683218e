package storage

import (
	"fmt"
	"os"

	"github.com/dsnet/golib/memfile"
)

// File is the backing store a table heap sits on. The os-backed
// implementation is the production path; the memory-backed one serves tests
// and benchmarks that should not touch disk.
type File interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Size() (int64, error)
	Sync() error
	Close() error
}

type osFile struct {
	f *os.File
}

func (o *osFile) ReadAt(p []byte, off int64) (int, error)  { return o.f.ReadAt(p, off) }
func (o *osFile) WriteAt(p []byte, off int64) (int, error) { return o.f.WriteAt(p, off) }
func (o *osFile) Sync() error                              { return o.f.Sync() }
func (o *osFile) Close() error                             { return o.f.Close() }

func (o *osFile) Size() (int64, error) {
	info, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// openHeapFile opens path read-write, creating it empty when it does not
// exist yet. Two attempts: plain open first, open-or-create second.
func openHeapFile(path string) (File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err == nil {
		return &osFile{f: f}, nil
	}

	f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("heap: could not open or create heap file %s: %w", path, err)
	}
	return &osFile{f: f}, nil
}

// MemFile is a heap file held entirely in memory.
type MemFile struct {
	f *memfile.File
}

// NewMemFile returns an empty memory-backed heap file.
func NewMemFile() *MemFile {
	return &MemFile{f: memfile.New(make([]byte, 0))}
}

func (m *MemFile) ReadAt(p []byte, off int64) (int, error)  { return m.f.ReadAt(p, off) }
func (m *MemFile) WriteAt(p []byte, off int64) (int, error) { return m.f.WriteAt(p, off) }
func (m *MemFile) Size() (int64, error)                     { return int64(len(m.f.Bytes())), nil }
func (m *MemFile) Sync() error                              { return nil }
func (m *MemFile) Close() error                             { return nil }

// Bytes exposes the raw file image for format-level assertions.
func (m *MemFile) Bytes() []byte { return m.f.Bytes() }
