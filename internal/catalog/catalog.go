package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const catalogFileName = "catalog.json"

var (
	ErrTableExists = errors.New("catalog: table already exists")
	ErrNoSuchTable = errors.New("catalog: table does not exist")
)

// Catalog mirrors <data_dir>/catalog.json in memory. It is a plain value
// owned by whoever drives the engine; callers must not share it across
// goroutines.
type Catalog struct {
	path    string
	schemas []TableSchema
}

// Open loads the catalog under dataDir. A missing file is an empty catalog;
// an unreadable or structurally invalid file is an error the caller must
// treat as fatal.
func Open(dataDir string) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Initialize(dataDir); err != nil {
		return nil, err
	}
	return c, nil
}

// Initialize points the catalog at dataDir and loads it. Re-initializing
// with the same directory is a no-op; a different directory replaces the
// in-memory state wholesale.
func (c *Catalog) Initialize(dataDir string) error {
	path := filepath.Join(dataDir, catalogFileName)
	if c.path == path {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("catalog: file does not exist, starting empty", "path", path)
			c.path = path
			c.schemas = []TableSchema{}
			return nil
		}
		return fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var schemas []TableSchema
	if err := json.Unmarshal(data, &schemas); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	if schemas == nil {
		schemas = []TableSchema{}
	}

	c.path = path
	c.schemas = schemas
	return nil
}

func (c *Catalog) TableExists(name string) bool {
	return c.indexOf(name) >= 0
}

// AddTable appends the schema and rewrites the catalog file. When the write
// fails the in-memory append is undone so both views stay consistent.
func (c *Catalog) AddTable(schema TableSchema) error {
	if c.TableExists(schema.TableName) {
		return fmt.Errorf("%w: %s", ErrTableExists, schema.TableName)
	}

	c.schemas = append(c.schemas, schema)
	if err := c.save(); err != nil {
		c.schemas = c.schemas[:len(c.schemas)-1]
		return fmt.Errorf("catalog: persist add of %s: %w", schema.TableName, err)
	}
	return nil
}

// RemoveTable removes the schema and rewrites the catalog file. When the
// write fails the removed entry is restored at its original position.
func (c *Catalog) RemoveTable(name string) error {
	i := c.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchTable, name)
	}

	removed := c.schemas[i]
	c.schemas = append(c.schemas[:i], c.schemas[i+1:]...)
	if err := c.save(); err != nil {
		c.schemas = append(c.schemas[:i], append([]TableSchema{removed}, c.schemas[i:]...)...)
		return fmt.Errorf("catalog: persist remove of %s: %w", name, err)
	}
	return nil
}

// GetSchema returns the schema for name, ok=false when absent.
func (c *Catalog) GetSchema(name string) (TableSchema, bool) {
	i := c.indexOf(name)
	if i < 0 {
		return TableSchema{}, false
	}
	return c.schemas[i], true
}

// AllSchemas returns every schema in catalog (insertion) order.
func (c *Catalog) AllSchemas() []TableSchema {
	out := make([]TableSchema, len(c.schemas))
	copy(out, c.schemas)
	return out
}

func (c *Catalog) indexOf(name string) int {
	for i := range c.schemas {
		if c.schemas[i].TableName == name {
			return i
		}
	}
	return -1
}

func (c *Catalog) save() error {
	data, err := json.MarshalIndent(c.schemas, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return err
	}
	slog.Debug("catalog: saved", "path", c.path, "tables", len(c.schemas))
	return nil
}
