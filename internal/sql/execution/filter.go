package execution

import (
	"fmt"
	"strconv"

	"github.com/lqviet/simpledb/internal/catalog"
	"github.com/lqviet/simpledb/internal/record"
	"github.com/lqviet/simpledb/internal/sql/parser"
)

// Filter emits only the child rows that satisfy a WHERE clause. Output
// order is child order restricted to matching rows.
type Filter struct {
	child  Operator
	where  parser.WhereClause
	colIdx int
}

// NewFilter resolves the WHERE column against the table schema. For INT
// columns the literal must parse as an integer; that is checked here so a
// bad query fails before any row is pulled.
func NewFilter(tableName string, cat *catalog.Catalog, child Operator, where parser.WhereClause) (*Filter, error) {
	schema, ok := cat.GetSchema(tableName)
	if !ok {
		return nil, fmt.Errorf("Table not found in catalog: %s", tableName)
	}

	idx := schema.ColumnIndex(where.ColumnName)
	if idx < 0 {
		return nil, fmt.Errorf("WHERE clause column %q not found in table %s", where.ColumnName, tableName)
	}

	if schema.ColumnDefinitions[idx].Type == catalog.DatatypeInt {
		if _, err := strconv.Atoi(where.Value); err != nil {
			return nil, fmt.Errorf(
				"WHERE clause value is not a valid integer for column: %s. Expected INT, got '%s'",
				where.ColumnName, where.Value)
		}
	}

	return &Filter{child: child, where: where, colIdx: idx}, nil
}

func (f *Filter) Next() (record.Row, bool, error) {
	for {
		row, ok, err := f.child.Next()
		if err != nil || !ok {
			return nil, false, err
		}
		match, err := evaluate(f.where.Op, row[f.colIdx], f.where.Value)
		if err != nil {
			return nil, false, err
		}
		if match {
			return row, true, nil
		}
	}
}

func (f *Filter) Close() error {
	return CloseOperator(f.child)
}

// TODO: compare INT columns numerically instead of lexicographically
// ("10" < "2" holds today). Needs type information carried through the row
// representation, not just the schema.
func evaluate(op parser.ComparisonOp, lhs, rhs string) (bool, error) {
	switch op {
	case parser.OpEquals:
		return lhs == rhs, nil
	case parser.OpNotEquals:
		return lhs != rhs, nil
	case parser.OpLessThan:
		return lhs < rhs, nil
	case parser.OpLessThanOrEqual:
		return lhs <= rhs, nil
	case parser.OpGreaterThan:
		return lhs > rhs, nil
	case parser.OpGreaterThanOrEqual:
		return lhs >= rhs, nil
	default:
		return false, fmt.Errorf("unsupported comparison operator %v", op)
	}
}
