package sankey

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GroupedColumns names the columns of a grouped flow table.
type GroupedColumns struct {
	Source string
	Target string
	Value  string
}

// DefaultGroupedColumns matches the header written by WriteGroupedCSV.
func DefaultGroupedColumns() GroupedColumns {
	return GroupedColumns{Source: "source_label", Target: "target_label", Value: "value"}
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// WriteGroupedCSV writes grouped flow records with an index column.
func WriteGroupedCSV(w io.Writer, flows []GroupedFlowRecord) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"index", "source_label", "target_label", "value", "ratio"})
	for _, f := range flows {
		_ = cw.Write([]string{strconv.Itoa(f.Index), f.SourceLabel, f.TargetLabel, formatFloat(f.Value), formatFloat(f.Ratio)})
	}
	cw.Flush()
	return cw.Error()
}

// WriteFlowsCSV writes per-row flow records.
func WriteFlowsCSV(w io.Writer, flows []FlowRecord) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"index", "key", "row_id", "source_label", "target_label", "source_node", "target_node", "value", "row_ratio", "ratio"})
	for _, f := range flows {
		_ = cw.Write([]string{
			strconv.Itoa(f.Index), f.Key, f.RowID, f.SourceLabel, f.TargetLabel, f.SourceNode, f.TargetNode,
			formatFloat(f.Value), formatFloat(f.RowRatio), formatFloat(f.Ratio),
		})
	}
	cw.Flush()
	return cw.Error()
}

// ReadGroupedCSV loads grouped flow records from a table whose label and value
// columns are named by cols. A "ratio" column is read when present.
func ReadGroupedCSV(r io.Reader, cols GroupedColumns) ([]GroupedFlowRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &MissingColumnError{Columns: []MissingColumn{
				{Role: "source_col", Name: cols.Source}, {Role: "target_col", Name: cols.Target}, {Role: "value_col", Name: cols.Value},
			}}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(header)
	var missing []MissingColumn
	for _, c := range []MissingColumn{{Role: "source_col", Name: cols.Source}, {Role: "target_col", Name: cols.Target}, {Role: "value_col", Name: cols.Value}} {
		if _, ok := idx[c.Name]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}
	ratioIdx, hasRatio := idx["ratio"]

	var out []GroupedFlowRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		g := GroupedFlowRecord{
			Index:       len(out),
			SourceLabel: field(rec, idx[cols.Source]),
			TargetLabel: field(rec, idx[cols.Target]),
		}
		if g.Value, err = parseField(rec, idx[cols.Value]); err != nil {
			return nil, fmt.Errorf("row %d %s: %w", line, cols.Value, err)
		}
		if hasRatio {
			if g.Ratio, err = parseField(rec, ratioIdx); err != nil {
				return nil, fmt.Errorf("row %d ratio: %w", line, err)
			}
		}
		out = append(out, g)
	}
	return out, nil
}

// WriteLinkJSON writes g with the keys node, source, target and value.
func WriteLinkJSON(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode link json: %w", err)
	}
	return nil
}

// ReadLinkJSON decodes and validates a link graph.
func ReadLinkJSON(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode link json: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// WriteColorCSV writes a color map with the columns label and color.
func WriteColorCSV(w io.Writer, c ColorAssignment) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"label", "color"})
	for i, l := range c.Labels {
		_ = cw.Write([]string{l, c.Colors[i]})
	}
	cw.Flush()
	return cw.Error()
}

// ReadColorConfig reads a label/color table. An empty input yields no entries;
// a header without label or color is an *InvalidColorConfigError.
func ReadColorConfig(r io.Reader) ([]NodeColor, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read color config: %w", err)
	}
	idx := headerIndex(header)
	var missing []string
	for _, name := range []string{"label", "color"} {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &InvalidColorConfigError{Missing: missing}
	}
	var out []NodeColor
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read color config: %w", err)
		}
		out = append(out, NodeColor{Label: field(rec, idx["label"]), Color: field(rec, idx["color"])})
	}
	return out, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	return idx
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func parseField(rec []string, i int) (float64, error) {
	s := field(rec, i)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
