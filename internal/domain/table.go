package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for table loading and column access.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("No columns to parse from file")
	ErrRaggedRow         = errors.New("row has more fields than the header")
	ErrInvalidEncoding   = errors.New("'utf-8' codec error")
	ErrColumnNotFound    = errors.New("column not found")
	ErrDuplicateColumn   = errors.New("duplicate column header")
	ErrTypeMismatch      = errors.New("value does not match type")
	ErrUnsupportedType   = errors.New("unsupported data type")
)

// Cell is one value of a loaded table.
type Cell struct {
	Value string
	Null  bool
}

// Table is a fully loaded tabular file: a header and its data rows.
// Every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]Cell
}

// Columns returns the distinct header names in file order.
func (t *Table) Columns() []string {
	seen := make(map[string]bool, len(t.Header))
	cols := make([]string, 0, len(t.Header))
	for _, h := range t.Header {
		if seen[h] {
			continue
		}
		seen[h] = true
		cols = append(cols, h)
	}
	return cols
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns the cells of the named column, one per data row.
func (t *Table) Column(name string) ([]Cell, error) {
	idx := -1
	for i, h := range t.Header {
		if h != name {
			continue
		}
		if idx >= 0 {
			return nil, fmt.Errorf("%w: %q appears at positions %d and %d", ErrDuplicateColumn, name, idx+1, i+1)
		}
		idx = i
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	cells := make([]Cell, len(t.Rows))
	for r, row := range t.Rows {
		if idx >= len(row) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", LineForRow(r), len(row), len(t.Header))
		}
		cells[r] = row[idx]
	}
	return cells, nil
}
