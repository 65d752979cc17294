// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to qualified column references (alias.column).
// It defines the table, alias, and column mappings for SQL query construction.
// View names resolve through FieldKey, so "UpdatedAt", "updatedAt" and
// "updated_at" name the same property.
type ProjectionMap struct {
	dialect    Dialect
	schema     string
	table      string
	alias      string
	columns    map[string]string
	keys       map[string]string
	columnList []string
}

// FieldKey folds a property name to its lookup form: lower case with
// underscores removed.
func FieldKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
}

// NewProjectionMap creates a PostgreSQL ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		dialect:    Postgres,
		schema:     schema,
		table:      table,
		alias:      alias,
		columns:    make(map[string]string),
		keys:       make(map[string]string),
		columnList: make([]string, 0),
	}
}

// Project adds a column mapping from database column to view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[viewName] = qualified
	p.keys[FieldKey(viewName)] = viewName
	p.columnList = append(p.columnList, qualified)
	return p
}

// WithDialect returns a copy of the projection that renders SQL for dialect d.
func (p *ProjectionMap) WithDialect(d Dialect, schema string) *ProjectionMap {
	c := *p
	c.dialect = d
	c.schema = schema
	return &c
}

// Dialect returns the SQL dialect of the projection.
func (p *ProjectionMap) Dialect() Dialect {
	return p.dialect
}

// Has reports whether viewName is mapped to a column.
func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.Resolve(viewName)
	return ok
}

// Resolve returns the projected view name that name refers to.
func (p *ProjectionMap) Resolve(name string) (string, bool) {
	if _, ok := p.columns[name]; ok {
		return name, true
	}
	viewName, ok := p.keys[FieldKey(name)]
	return viewName, ok
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the fully qualified table reference with alias (schema.table alias).
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if name, ok := p.Resolve(viewName); ok {
		return p.columns[name]
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

// ColumnList returns all mapped columns as a slice.
func (p *ProjectionMap) ColumnList() []string {
	return p.columnList
}
