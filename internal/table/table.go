// Package table loads two-dimensional labeled tables (CSV, TSV, XLSX) into memory.
package table

import (
	"fmt"
	"strings"
)

// Options controls how a table file is read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension (',' or '\t').
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// XLSX sheet selection. SheetName wins over SheetIndex (1-based).
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for reading classification tables.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Table is an in-memory table: a header row plus string cells.
type Table struct {
	Name    string
	header  []string
	index   map[string]int
	records [][]string
	opt     Options
}

// New builds a table from a header and records. Short records are padded.
func New(name string, header []string, records [][]string, opt Options) *Table {
	t := &Table{Name: name, index: make(map[string]int, len(header)), opt: opt}
	t.header = make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	t.records = make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(header))
		copy(row, rec)
		t.records = append(t.records, row)
	}
	return t
}

// FromRecords is a convenience constructor for in-memory tables; the first record is the header.
func FromRecords(name string, records ...[]string) *Table {
	if len(records) == 0 {
		return New(name, nil, nil, DefaultOptions())
	}
	return New(name, records[0], records[1:], DefaultOptions())
}

// Columns returns the header names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.records) }

// String returns the trimmed cell at row for column. Unknown columns yield "".
func (t *Table) String(row int, column string) string {
	j, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.records) {
		return ""
	}
	return strings.TrimSpace(t.records[row][j])
}

// Float parses the cell at row for column as a number. Empty cells are 0.
func (t *Table) Float(row int, column string) (float64, error) {
	if !t.HasColumn(column) {
		return 0, fmt.Errorf("column %q not found", column)
	}
	v := t.String(row, column)
	if v == "" {
		return 0, nil
	}
	x, ok := ParseNumber(v, t.opt)
	if !ok {
		return 0, fmt.Errorf("row %d column %q: %q is not a number", row+1, column, v)
	}
	return x, nil
}
