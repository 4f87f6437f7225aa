// Package query builds parameterized SQL statements from a projection of a table.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view property names to the columns of one aliased table.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	names      map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		names:  make(map[string]string),
	}
}

// Project adds a column mapping from database column to view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	p.names[viewName] = column
	p.columnList = append(p.columnList, p.qualify(column))
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the qualified table reference with alias (schema.table alias).
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the alias-qualified column for a view property name,
// or the input unchanged if it is not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if name, ok := p.names[viewName]; ok {
		return p.qualify(name)
	}
	return viewName
}

// Name returns the bare column name for a view property name,
// or the input unchanged if it is not mapped.
func (p *ProjectionMap) Name(viewName string) string {
	if name, ok := p.names[viewName]; ok {
		return name
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

func (p *ProjectionMap) qualify(column string) string {
	return p.alias + "." + column
}
