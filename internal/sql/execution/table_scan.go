package execution

import (
	"fmt"
	"path/filepath"

	"github.com/lqviet/simpledb/internal/catalog"
	"github.com/lqviet/simpledb/internal/record"
	"github.com/lqviet/simpledb/internal/storage"
)

// TableScan reads a table's heap file front to back and decodes each
// record into a row. It exclusively owns the heap for its lifetime.
type TableScan struct {
	heap *storage.TableHeap
	iter *storage.Iterator
}

// NewTableScan opens the table's heap file under dataDir. The catalog check
// keeps a scan over an unknown table from creating a stray heap file.
func NewTableScan(tableName string, cat *catalog.Catalog, dataDir string) (*TableScan, error) {
	if !cat.TableExists(tableName) {
		return nil, fmt.Errorf("Table not found in catalog: %s", tableName)
	}

	heap, err := storage.Open(filepath.Join(dataDir, tableName+".data"))
	if err != nil {
		return nil, err
	}
	return &TableScan{heap: heap, iter: heap.Iterator()}, nil
}

func (s *TableScan) Next() (record.Row, bool, error) {
	data, ok, err := s.iter.Next()
	if err != nil || !ok {
		return nil, false, err
	}
	row, err := record.Decode(data)
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// Close releases the heap file handle. The owner of the operator tree
// calls this once iteration is done or abandoned.
func (s *TableScan) Close() error {
	return s.heap.Close()
}
