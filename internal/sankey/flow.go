package sankey

import (
	"fmt"
	"sort"
)

// FlowRecord maps one table row onto a labeled edge between two stages.
type FlowRecord struct {
	Index       int     `json:"index"`
	Key         string  `json:"key"`
	RowID       string  `json:"row_id"`
	SourceLabel string  `json:"source_label"`
	TargetLabel string  `json:"target_label"`
	SourceNode  string  `json:"source_node"`
	TargetNode  string  `json:"target_node"`
	Value       float64 `json:"value"`
	// RowRatio is the row's share of the whole table; Ratio its share of this stage pair.
	RowRatio float64 `json:"row_ratio"`
	Ratio    float64 `json:"ratio"`
}

// GroupedFlowRecord is the sum of all flow records sharing a label pair.
type GroupedFlowRecord struct {
	Index       int     `json:"index"`
	SourceLabel string  `json:"source_label"`
	TargetLabel string  `json:"target_label"`
	Value       float64 `json:"value"`
	Ratio       float64 `json:"ratio"`
}

// MapFlows labels every row of f with its source and target group labels and
// returns the per-row records plus the records grouped by label pair, sorted by
// (source label, target label). Record keys use a counter local to this call.
func MapFlows(f *Frame, sourceColumn, targetColumn, valueColumn string, source, target *StageSummary) ([]FlowRecord, []GroupedFlowRecord, error) {
	err := requireColumns(f.src,
		MissingColumn{Role: "source_column", Name: sourceColumn},
		MissingColumn{Role: "target_column", Name: targetColumn},
		MissingColumn{Role: "value_column", Name: valueColumn},
	)
	if err != nil {
		return nil, nil, err
	}
	values, err := f.column(valueColumn)
	if err != nil {
		return nil, nil, err
	}

	flows := make([]FlowRecord, 0, f.Len())
	var total float64
	counter := 0
	for i := 0; i < f.Len(); i++ {
		srcNode := f.src.String(i, sourceColumn)
		tgtNode := f.src.String(i, targetColumn)
		srcLabel := source.Lookup(srcNode).Label
		tgtLabel := target.Lookup(tgtNode).Label
		counter++
		flows = append(flows, FlowRecord{
			Index:       len(flows),
			Key:         fmt.Sprintf("%s_%s_%d", srcLabel, tgtLabel, counter),
			RowID:       f.ids[i],
			SourceLabel: srcLabel,
			TargetLabel: tgtLabel,
			SourceNode:  srcNode,
			TargetNode:  tgtNode,
			Value:       values[i],
			RowRatio:    f.ratios[i],
		})
		total += values[i]
	}
	for i := range flows {
		if total != 0 {
			flows[i].Ratio = 100 * flows[i].Value / total
		}
	}
	return flows, groupFlows(flows), nil
}

type labelPair struct{ source, target string }

func groupFlows(flows []FlowRecord) []GroupedFlowRecord {
	sums := map[labelPair]*GroupedFlowRecord{}
	var pairs []labelPair
	for _, fr := range flows {
		k := labelPair{fr.SourceLabel, fr.TargetLabel}
		g := sums[k]
		if g == nil {
			g = &GroupedFlowRecord{SourceLabel: fr.SourceLabel, TargetLabel: fr.TargetLabel}
			sums[k] = g
			pairs = append(pairs, k)
		}
		g.Value += fr.Value
		g.Ratio += fr.Ratio
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].source != pairs[j].source {
			return pairs[i].source < pairs[j].source
		}
		return pairs[i].target < pairs[j].target
	})
	out := make([]GroupedFlowRecord, len(pairs))
	for i, k := range pairs {
		out[i] = *sums[k]
		out[i].Index = i
	}
	return out
}
