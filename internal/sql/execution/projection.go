package execution

import (
	"fmt"

	"github.com/lqviet/simpledb/internal/catalog"
	"github.com/lqviet/simpledb/internal/record"
)

// Projection selects columns from child rows by position. An empty column
// list means project all: rows pass through unchanged.
type Projection struct {
	child   Operator
	indices []int
	all     bool
}

// NewProjection resolves each requested column against the table schema.
// Duplicates are allowed and produce repeated columns.
func NewProjection(tableName string, cat *catalog.Catalog, child Operator, columns []string) (*Projection, error) {
	schema, ok := cat.GetSchema(tableName)
	if !ok {
		return nil, fmt.Errorf("Table not found in catalog: %s", tableName)
	}

	if len(columns) == 0 {
		return &Projection{child: child, all: true}, nil
	}

	indices := make([]int, 0, len(columns))
	for _, col := range columns {
		idx := schema.ColumnIndex(col)
		if idx < 0 {
			return nil, fmt.Errorf("Projection column not found in table schema: %s", col)
		}
		indices = append(indices, idx)
	}
	return &Projection{child: child, indices: indices}, nil
}

func (p *Projection) Close() error {
	return CloseOperator(p.child)
}

func (p *Projection) Next() (record.Row, bool, error) {
	row, ok, err := p.child.Next()
	if err != nil || !ok {
		return nil, false, err
	}
	if p.all {
		return row, true, nil
	}

	projected := make(record.Row, 0, len(p.indices))
	for _, idx := range p.indices {
		projected = append(projected, row[idx])
	}
	return projected, true, nil
}
