package sankey

import (
	"golang.org/x/sync/errgroup"
)

// Columns names the table columns a dataset is built from.
type Columns struct {
	Start string `json:"start"`
	Mid   string `json:"mid"`
	End   string `json:"end"`
	Value string `json:"value"`
	// RowID is optional; rows are numbered by position when the table lacks it.
	RowID string `json:"row_id,omitempty"`
}

// Stages returns the stage columns in flow order.
func (c Columns) Stages() [3]string { return [3]string{c.Start, c.Mid, c.End} }

// Thresholds maps a stage column name to its Others threshold in percent.
type Thresholds map[string]float64

// For returns the threshold configured for column, or DefaultThreshold.
func (t Thresholds) For(column string) float64 {
	if v, ok := t[column]; ok {
		return v
	}
	return DefaultThreshold
}

// Dataset is the result of one pipeline run.
type Dataset struct {
	Columns Columns
	// Stages holds the start, mid and end summaries in that order.
	Stages  [3]*StageSummary
	Grouped []GroupedFlowRecord
	Flows   []FlowRecord
}

// Graph builds the Sankey link graph of the grouped flows.
func (d *Dataset) Graph() *Graph { return BuildGraph(d.Grouped) }

// BuildDataset runs the whole preparation: column validation, whole-table ratios,
// per-stage summaries, start→mid and mid→end flow mapping, and concatenation of
// both stage pairs with fresh positional indices. Any validation error aborts the
// run without a partial result.
func BuildDataset(src Source, cols Columns, thresholds Thresholds) (*Dataset, error) {
	err := requireColumns(src,
		MissingColumn{Role: "start_column", Name: cols.Start},
		MissingColumn{Role: "mid_column", Name: cols.Mid},
		MissingColumn{Role: "end_column", Name: cols.End},
		MissingColumn{Role: "value_column", Name: cols.Value},
	)
	if err != nil {
		return nil, err
	}
	frame, err := NewFrame(src, cols.Value, cols.RowID)
	if err != nil {
		return nil, err
	}

	// Stages are independent; each goroutine writes only its own slot.
	var stages [3]*StageSummary
	var g errgroup.Group
	for i, col := range cols.Stages() {
		i, col := i, col
		g.Go(func() error {
			s, err := Summarize(frame, col, cols.Value, thresholds.For(col))
			if err != nil {
				return err
			}
			stages[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	smFlows, smGrouped, err := MapFlows(frame, cols.Start, cols.Mid, cols.Value, stages[0], stages[1])
	if err != nil {
		return nil, err
	}
	meFlows, meGrouped, err := MapFlows(frame, cols.Mid, cols.End, cols.Value, stages[1], stages[2])
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Columns: cols,
		Stages:  stages,
		Flows:   append(smFlows, meFlows...),
		Grouped: append(smGrouped, meGrouped...),
	}
	for i := range ds.Flows {
		ds.Flows[i].Index = i
	}
	for i := range ds.Grouped {
		ds.Grouped[i].Index = i
	}
	return ds, nil
}
