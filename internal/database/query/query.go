// Package query builds parametrized SQL statements from column lists.
// It produces text only; binding values is left to the caller.
package query

import (
	"fmt"
	"strings"
)

// DefaultMarker prefixes named placeholders.
const DefaultMarker = ":"

// InsertData describes one INSERT: a table and its columns. Every column
// becomes a placeholder of the same name.
type InsertData struct {
	Table   string
	Columns []string
}

func NewInsert(table string) *InsertData {
	return &InsertData{Table: table}
}

func (d *InsertData) SetColumns(columns ...string) *InsertData {
	d.Columns = append([]string(nil), columns...)
	return d
}

// Condition is a single column equality against the placeholder of the
// same name.
type Condition struct {
	Column string
}

// UpdateData describes one UPDATE keyed by a single condition.
type UpdateData struct {
	InsertData
	Condition Condition
}

func NewUpdate(table string) *UpdateData {
	return &UpdateData{InsertData: InsertData{Table: table}}
}

func (d *UpdateData) SetColumns(columns ...string) *UpdateData {
	d.InsertData.SetColumns(columns...)
	return d
}

func (d *UpdateData) SetCondition(column string) *UpdateData {
	d.Condition = Condition{Column: column}
	return d
}

// Constructor renders statements using Marker for placeholders.
type Constructor struct {
	Marker string
	// FindTableFormat replaces the generic table lookup when set. Its single
	// %s receives the quoted table name.
	FindTableFormat string
}

func New(marker string) Constructor {
	return Constructor{Marker: marker}
}

func (c Constructor) marker() string {
	if c.Marker == "" {
		return DefaultMarker
	}
	return c.Marker
}

// Param returns the placeholder for column.
func (c Constructor) Param(column string) string {
	return c.marker() + column
}

// Insert renders INSERT INTO T(c1,c2) VALUES(:c1,:c2).
func (c Constructor) Insert(d *InsertData) string {
	params := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		params[i] = c.Param(col)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.Table)
	b.WriteString("(")
	b.WriteString(strings.Join(d.Columns, ","))
	b.WriteString(") VALUES(")
	b.WriteString(strings.Join(params, ","))
	b.WriteString(")")
	return b.String()
}

// Update renders UPDATE T SET c1=:c1,c2=:c2 WHERE k=:k.
func (c Constructor) Update(d *UpdateData) string {
	sets := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		sets[i] = col + "=" + c.Param(col)
	}

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(d.Table)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(sets, ","))
	if d.Condition.Column != "" {
		b.WriteString(" WHERE ")
		b.WriteString(d.Condition.Column)
		b.WriteString("=")
		b.WriteString(c.Param(d.Condition.Column))
	}
	return b.String()
}

// Create renders CREATE TABLE name(columns);.
func (c Constructor) Create(name, columns string) string {
	return "CREATE TABLE " + name + "(" + columns + ");"
}

// FindTable renders a query yielding one row when table name exists.
func (c Constructor) FindTable(name string) string {
	quoted := "'" + strings.ReplaceAll(name, "'", "''") + "'"
	if c.FindTableFormat != "" {
		return fmt.Sprintf(c.FindTableFormat, quoted)
	}
	return "SHOW TABLES LIKE " + quoted + ";"
}
