// Package planner turns a parsed SELECT into an operator tree.
package planner

import (
	"github.com/lqviet/simpledb/internal/catalog"
	"github.com/lqviet/simpledb/internal/sql/execution"
	"github.com/lqviet/simpledb/internal/sql/parser"
)

// BuildPlan composes the pipeline for a SELECT: a table scan at the
// bottom, a filter when there is a WHERE clause, and always a projection
// on top. Ownership of the returned root transfers to the caller.
//
// TODO: push simple predicates down into the table scan so filtered scans
// skip decode work; the Filter stays for anything the scan cannot evaluate.
func BuildPlan(cmd *parser.SelectCommand, cat *catalog.Catalog, dataDir string) (execution.Operator, error) {
	var op execution.Operator

	scan, err := execution.NewTableScan(cmd.TableName, cat, dataDir)
	if err != nil {
		return nil, err
	}
	op = scan

	if cmd.Where != nil {
		op, err = execution.NewFilter(cmd.TableName, cat, op, *cmd.Where)
		if err != nil {
			_ = scan.Close()
			return nil, err
		}
	}

	op, err = execution.NewProjection(cmd.TableName, cat, op, cmd.Projection)
	if err != nil {
		_ = scan.Close()
		return nil, err
	}
	return op, nil
}
