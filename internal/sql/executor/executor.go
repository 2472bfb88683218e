// Package executor dispatches parsed commands and orchestrates the
// multi-artifact mutations (catalog plus heap files) they imply.
package executor

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lqviet/simpledb/internal/catalog"
	"github.com/lqviet/simpledb/internal/record"
	"github.com/lqviet/simpledb/internal/sql/execution"
	"github.com/lqviet/simpledb/internal/sql/parser"
	"github.com/lqviet/simpledb/internal/sql/planner"
	"github.com/lqviet/simpledb/internal/storage"
)

// Executor runs commands against one catalog and one data directory.
type Executor struct {
	cat     *catalog.Catalog
	dataDir string
}

func New(cat *catalog.Catalog, dataDir string) *Executor {
	return &Executor{cat: cat, dataDir: dataDir}
}

// ExecuteSQL is the top-level entry: SQL text in, result out. Parse errors
// become error results; the caller's loop continues either way.
func (e *Executor) ExecuteSQL(sql string) Result {
	cmd, err := parser.Parse(sql)
	if err != nil {
		return Errorf("ERROR: Invalid SQL syntax: %v", err)
	}
	return e.Execute(cmd)
}

func (e *Executor) Execute(cmd parser.Command) Result {
	switch c := cmd.(type) {
	case *parser.CreateTableCommand:
		return e.execCreateTable(c)
	case *parser.DropTableCommand:
		return e.execDropTable(c)
	case *parser.ShowTablesCommand:
		return e.execShowTables()
	case *parser.InsertCommand:
		return e.execInsert(c)
	case *parser.SelectCommand:
		return e.execSelect(c)
	default:
		return Errorf("ERROR: Unknown or unsupported command.")
	}
}

func (e *Executor) tableDataPath(name string) string {
	return filepath.Join(e.dataDir, name+".data")
}

// execCreateTable updates the catalog first, then creates the empty heap
// file. A failure at the file step rolls the catalog entry back so the two
// artifacts never disagree.
func (e *Executor) execCreateTable(cmd *parser.CreateTableCommand) Result {
	if e.cat.TableExists(cmd.TableName) {
		slog.Error("executor: table already exists in catalog", "table", cmd.TableName)
		return Errorf("ERROR: Table %s already exists.", cmd.TableName)
	}

	seen := map[string]bool{}
	for _, col := range cmd.ColumnDefinitions {
		if seen[col.ColumnName] {
			return Errorf("ERROR: Duplicate column '%s' in table '%s'.", col.ColumnName, cmd.TableName)
		}
		seen[col.ColumnName] = true
	}

	schema := catalog.TableSchema{
		TableName:         cmd.TableName,
		ColumnDefinitions: cmd.ColumnDefinitions,
	}
	if err := e.cat.AddTable(schema); err != nil {
		slog.Error("executor: add table to catalog", "table", cmd.TableName, "err", err)
		return Errorf("ERROR: %v. Table creation aborted.", err)
	}
	slog.Info("executor: table added to catalog", "table", cmd.TableName)

	dataPath := e.tableDataPath(cmd.TableName)
	f, err := os.OpenFile(dataPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err == nil {
		err = f.Close()
	}
	if err != nil {
		slog.Error("executor: create data file", "table", cmd.TableName, "path", dataPath, "err", err)
		if rbErr := e.cat.RemoveTable(cmd.TableName); rbErr != nil {
			slog.Error("executor: rollback catalog update", "table", cmd.TableName, "err", rbErr)
		}
		if rmErr := os.Remove(dataPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			slog.Error("executor: remove partial data file", "path", dataPath, "err", rmErr)
		}
		return Errorf("ERROR: %v. Table creation aborted.", err)
	}
	slog.Info("executor: data file created", "table", cmd.TableName, "path", dataPath)

	return OK("OK (Table '%s' created successfully)", cmd.TableName)
}

// execDropTable removes the catalog entry, then unlinks the heap file. A
// missing file is only logged; once the catalog no longer knows the table,
// it is gone from the user's perspective.
func (e *Executor) execDropTable(cmd *parser.DropTableCommand) Result {
	if !e.cat.TableExists(cmd.TableName) {
		return Errorf("ERROR: Table '%s' does not exist.", cmd.TableName)
	}
	slog.Info("executor: dropping table", "table", cmd.TableName)

	if err := e.cat.RemoveTable(cmd.TableName); err != nil {
		return Errorf("ERROR: DROP TABLE failed for table '%s'. Reason: %v", cmd.TableName, err)
	}

	dataPath := e.tableDataPath(cmd.TableName)
	if err := os.Remove(dataPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("executor: data file missing on drop", "table", cmd.TableName, "path", dataPath)
		} else {
			slog.Error("executor: table removed from catalog but data file removal failed; file may be orphaned",
				"table", cmd.TableName, "path", dataPath, "err", err)
			return Errorf("ERROR: DROP TABLE failed for table '%s'. Reason: %v", cmd.TableName, err)
		}
	}

	return OK("OK (Table '%s' dropped successfully)", cmd.TableName)
}

func (e *Executor) execShowTables() Result {
	schemas := e.cat.AllSchemas()

	rs := ResultSet{Headers: []string{"Table Name"}}
	for _, schema := range schemas {
		rs.Rows = append(rs.Rows, record.Row{schema.TableName})
	}
	return WithData(rs)
}

func (e *Executor) execInsert(cmd *parser.InsertCommand) Result {
	schema, ok := e.cat.GetSchema(cmd.TableName)
	if !ok {
		return Errorf("ERROR: Table '%s' does not exist.", cmd.TableName)
	}
	slog.Info("executor: inserting row", "table", cmd.TableName)

	orderedValues, res := orderInsertValues(schema, cmd)
	if res != nil {
		return *res
	}

	// per-column validation against the schema
	for i, colDef := range schema.ColumnDefinitions {
		if colDef.Type != catalog.DatatypeInt {
			continue
		}
		if _, err := strconv.Atoi(orderedValues[i]); err != nil {
			return Errorf("ERROR: Value '%s' for column '%s' is not a valid integer.",
				orderedValues[i], colDef.ColumnName)
		}
	}

	recordData, err := record.Encode(orderedValues)
	if err != nil {
		return Errorf("ERROR: Failed to insert row. The record may be too large for a page.")
	}

	heap, err := storage.Open(e.tableDataPath(cmd.TableName))
	if err != nil {
		return Errorf("ERROR: %v", err)
	}
	defer func() { _ = heap.Close() }()

	if err := heap.Insert(recordData); err != nil {
		if errors.Is(err, storage.ErrRecordTooLarge) {
			return Errorf("ERROR: Failed to insert row. The record may be too large for a page.")
		}
		return Errorf("ERROR: %v", err)
	}
	return OK("1 row inserted.")
}

// orderInsertValues produces the schema-ordered value vector for an INSERT.
// With no column list the values must match the schema exactly; with one,
// each value lands at its column's index and the rest default to "".
func orderInsertValues(schema catalog.TableSchema, cmd *parser.InsertCommand) (record.Row, *Result) {
	numCols := len(schema.ColumnDefinitions)

	if len(cmd.Columns) == 0 {
		if len(cmd.Values) != numCols {
			res := Errorf("ERROR: Number of values does not match number of columns in table '%s'.", cmd.TableName)
			return nil, &res
		}
		return record.Row(cmd.Values), nil
	}

	if len(cmd.Columns) != len(cmd.Values) {
		res := Errorf("ERROR: Number of columns does not match number of values in INSERT command for table '%s'.", cmd.TableName)
		return nil, &res
	}

	ordered := make(record.Row, numCols)
	assigned := make(map[int]bool, len(cmd.Columns))
	for i, col := range cmd.Columns {
		idx := schema.ColumnIndex(col)
		if idx < 0 {
			res := Errorf("ERROR: Column '%s' does not exist in table '%s'.", col, cmd.TableName)
			return nil, &res
		}
		// the parser rejects duplicates; keep the check anyway
		if assigned[idx] {
			res := Errorf("ERROR: Duplicate column '%s' in INSERT command for table '%s'.", col, cmd.TableName)
			return nil, &res
		}
		assigned[idx] = true
		ordered[idx] = cmd.Values[i]
	}
	return ordered, nil
}

func (e *Executor) execSelect(cmd *parser.SelectCommand) Result {
	plan, err := planner.BuildPlan(cmd, e.cat, e.dataDir)
	if err != nil {
		return Errorf("%v", err)
	}
	defer func() { _ = execution.CloseOperator(plan) }()

	var headers []string
	if len(cmd.Projection) == 0 {
		schema, _ := e.cat.GetSchema(cmd.TableName)
		headers = schema.ColumnNames()
	} else {
		headers = cmd.Projection
	}

	rs := ResultSet{Headers: headers}
	for {
		row, ok, err := plan.Next()
		if err != nil {
			return Errorf("%v", err)
		}
		if !ok {
			break
		}
		rs.Rows = append(rs.Rows, row)
	}
	return WithData(rs)
}
