package query

import (
	"fmt"
	"reflect"
	"strings"
)

type condition struct {
	clause string
	args   []any
}

type assignment struct {
	column string
	expr   string
	arg    any
}

// SortField is a single ORDER BY term keyed by view property name.
type SortField struct {
	Field      string
	Descending bool
}

// Builder constructs SQL statements with automatic parameter numbering.
// Conditions apply to SELECT, UPDATE, and DELETE; assignments apply to
// INSERT and UPDATE.
type Builder struct {
	projection        *ProjectionMap
	conditions        []condition
	assignments       []assignment
	orderByFields     []SortField
	defaultSortFields []SortField
}

// NewBuilder creates a Builder for the given projection with optional default sort fields.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:        projection,
		defaultSortFields: defaultSort,
	}
}

// Build returns a SELECT statement with the current conditions and ordering.
func (b *Builder) Build() (string, []any) {
	where, args, _ := b.buildWhere(1)

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.Table(),
		where,
		b.buildOrderBy(),
	)

	return sql, args
}

// BuildSingle returns a SELECT statement for a single record by ID.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.Table(),
		b.projection.Column(idField),
	)
	return sql, []any{id}
}

// BuildInsert returns an INSERT statement for the current assignments that
// returns every projected column of the new row.
func (b *Builder) BuildInsert() (string, []any) {
	cols := make([]string, len(b.assignments))
	vals := make([]string, len(b.assignments))
	args := make([]any, 0, len(b.assignments))

	param := 1
	for i, a := range b.assignments {
		cols[i] = a.column
		if a.expr != "" {
			vals[i] = a.expr
			continue
		}
		vals[i] = fmt.Sprintf("$%d", param)
		args = append(args, a.arg)
		param++
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s.%s AS %s (%s) VALUES (%s) RETURNING %s",
		b.projection.schema,
		b.projection.table,
		b.projection.alias,
		strings.Join(cols, ", "),
		strings.Join(vals, ", "),
		b.projection.Columns(),
	)

	return sql, args
}

// BuildUpdate returns an UPDATE statement applying the current assignments
// to the rows matching the current conditions.
// Returns an empty statement when there are no assignments.
func (b *Builder) BuildUpdate() (string, []any) {
	if len(b.assignments) == 0 {
		return "", nil
	}

	sets := make([]string, len(b.assignments))
	args := make([]any, 0, len(b.assignments))

	param := 1
	for i, a := range b.assignments {
		if a.expr != "" {
			sets[i] = fmt.Sprintf("%s = %s", a.column, a.expr)
			continue
		}
		sets[i] = fmt.Sprintf("%s = $%d", a.column, param)
		args = append(args, a.arg)
		param++
	}

	where, whereArgs, _ := b.buildWhere(param)
	args = append(args, whereArgs...)

	sql := fmt.Sprintf(
		"UPDATE %s SET %s%s",
		b.projection.Table(),
		strings.Join(sets, ", "),
		where,
	)

	return sql, args
}

// BuildDelete returns a DELETE statement for the rows matching the current
// conditions, returning the given view fields of each deleted row.
func (b *Builder) BuildDelete(returning ...string) (string, []any) {
	where, args, _ := b.buildWhere(1)

	sql := fmt.Sprintf("DELETE FROM %s%s", b.projection.Table(), where)

	if len(returning) > 0 {
		cols := make([]string, len(returning))
		for i, f := range returning {
			cols[i] = b.projection.Column(f)
		}
		sql += " RETURNING " + strings.Join(cols, ", ")
	}

	return sql, args
}

// OrderByFields sets the sort order, overriding default sort fields.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.orderByFields = fields
	return b
}

// Set assigns a parameter value to a field. No-op for nil values.
func (b *Builder) Set(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.assignments = append(b.assignments, assignment{
		column: b.projection.Name(field),
		arg:    value,
	})
	return b
}

// SetExpr assigns a literal SQL expression, such as NOW(), to a field.
func (b *Builder) SetExpr(field, expr string) *Builder {
	b.assignments = append(b.assignments, assignment{
		column: b.projection.Name(field),
		expr:   expr,
	})
	return b
}

// WhereEquals adds an equality condition. No-op for nil values.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", b.projection.Column(field)),
		args:   []any{value},
	})
	return b
}

func (b *Builder) buildOrderBy() string {
	fields := b.orderByFields
	if len(fields) == 0 {
		fields = b.defaultSortFields
	}

	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("%s %s", b.projection.Column(f.Field), dir)
	}

	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) buildWhere(startParam int) (string, []any, int) {
	if len(b.conditions) == 0 {
		return "", nil, startParam
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := startParam

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, paramIdx
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}

	return false
}
