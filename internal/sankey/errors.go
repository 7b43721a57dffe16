package sankey

import (
	"fmt"
	"strings"
)

// MissingColumn names one required column absent from a table.
type MissingColumn struct {
	Role string // e.g. "start_column"; may be empty
	Name string
}

// MissingColumnError lists every required column absent from the input table.
type MissingColumnError struct {
	Columns []MissingColumn
}

func (e *MissingColumnError) Error() string {
	lines := make([]string, 0, len(e.Columns))
	for _, c := range e.Columns {
		if c.Role != "" {
			lines = append(lines, fmt.Sprintf("%s: column %q not found in the input table", c.Role, c.Name))
		} else {
			lines = append(lines, fmt.Sprintf("column %q not found in the input table", c.Name))
		}
	}
	return strings.Join(lines, "\n")
}

// Names returns the missing column names in the order they were checked.
func (e *MissingColumnError) Names() []string {
	out := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		out[i] = c.Name
	}
	return out
}

// RatioIntegrityError indicates the per-row ratios do not add up to 100 within tolerance.
// It usually means a non-positive or non-numeric value column.
type RatioIntegrityError struct {
	Column string
	Sum    float64
}

func (e *RatioIntegrityError) Error() string {
	return fmt.Sprintf("sum of ratio for column %q is not 100, but %g", e.Column, e.Sum)
}

// InvalidColorConfigError indicates a color map table without the label/color columns.
type InvalidColorConfigError struct {
	Missing []string
}

func (e *InvalidColorConfigError) Error() string {
	return fmt.Sprintf("color configuration should have columns 'label' and 'color' (missing: %s)", strings.Join(e.Missing, ", "))
}

// requireColumns reports every wanted column that src lacks in one error.
func requireColumns(src Source, want ...MissingColumn) error {
	var missing []MissingColumn
	for _, c := range want {
		if !src.HasColumn(c.Name) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}
	return nil
}
