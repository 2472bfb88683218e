// Package execution implements the pull-based operator pipeline. Each
// operator yields one row per Next call; composing operators is how a
// query plan runs.
package execution

import (
	"io"

	"github.com/lqviet/simpledb/internal/record"
)

// Operator is the uniform interface of every plan node. Next returns the
// next output row, or ok=false at end of stream. Schema and type problems
// surface at operator construction, not here; a non-nil error from Next
// means the underlying storage failed mid-scan.
type Operator interface {
	Next() (row record.Row, ok bool, err error)
}

// CloseOperator releases whatever resources op holds. Interior operators
// forward to their child; the table scan at the bottom owns the heap file.
func CloseOperator(op Operator) error {
	if c, ok := op.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
