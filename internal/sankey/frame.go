// Package sankey turns categorical classification tables into Sankey flow data:
// per-stage group summaries with an "Others" bucket, labeled flow records between
// adjacent stages, and a naturally ordered node/edge graph with colors.
package sankey

import (
	"fmt"
	"strconv"
)

// Source is a two-dimensional labeled table with named columns.
type Source interface {
	Columns() []string
	HasColumn(name string) bool
	Len() int
	String(row int, column string) string
	Float(row int, column string) (float64, error)
}

const (
	ratioLow  = 99.5
	ratioHigh = 100.5
)

// Frame is a source table with its value column parsed and each row's share of
// the column total (in percent) attached.
type Frame struct {
	src         Source
	valueColumn string
	ids         []string
	values      []float64
	ratios      []float64
}

// NewFrame computes the whole-table ratio for every row of src and validates that
// the ratios add up to 100 (within [99.5, 100.5]). Row IDs come from idColumn when
// the table has it, otherwise from the 0-based row position.
func NewFrame(src Source, valueColumn, idColumn string) (*Frame, error) {
	if err := requireColumns(src, MissingColumn{Role: "value_column", Name: valueColumn}); err != nil {
		return nil, err
	}
	values, err := columnValues(src, valueColumn)
	if err != nil {
		return nil, err
	}
	f := &Frame{
		src:         src,
		valueColumn: valueColumn,
		ids:         make([]string, src.Len()),
		values:      values,
		ratios:      make([]float64, src.Len()),
	}
	useID := idColumn != "" && src.HasColumn(idColumn)
	var total float64
	for i, v := range values {
		total += v
		if useID {
			f.ids[i] = src.String(i, idColumn)
		} else {
			f.ids[i] = strconv.Itoa(i)
		}
	}
	var sum float64
	for i, v := range values {
		f.ratios[i] = 100 * v / total
		sum += f.ratios[i]
	}
	// NaN (zero total) fails both comparisons.
	if !(sum >= ratioLow && sum <= ratioHigh) {
		return nil, &RatioIntegrityError{Column: valueColumn, Sum: sum}
	}
	return f, nil
}

// Source returns the underlying table.
func (f *Frame) Source() Source { return f.src }

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.values) }

// RowID returns the identifier of row i.
func (f *Frame) RowID(i int) string { return f.ids[i] }

// Ratio returns row i's percent share of the whole-table value total.
func (f *Frame) Ratio(i int) float64 { return f.ratios[i] }

// column returns the parsed numbers of column, reusing the frame's value column.
func (f *Frame) column(name string) ([]float64, error) {
	if name == f.valueColumn {
		return f.values, nil
	}
	return columnValues(f.src, name)
}

func columnValues(src Source, column string) ([]float64, error) {
	out := make([]float64, src.Len())
	for i := range out {
		v, err := src.Float(i, column)
		if err != nil {
			return nil, fmt.Errorf("value column: %w", err)
		}
		out[i] = v
	}
	return out, nil
}
