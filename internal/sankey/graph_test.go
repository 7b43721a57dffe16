package sankey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortNatural(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"percent labels", []string{"A (2%)", "A (10%)", "A (1%)"}, []string{"A (1%)", "A (2%)", "A (10%)"}},
		{"groups", []string{"Group 10", "Group 2", "Group 1"}, []string{"Group 1", "Group 2", "Group 10"}},
		{"mixed prefixes", []string{"TG 52:2", "PC 36:1", "PC 34:1"}, []string{"PC 34:1", "PC 36:1", "TG 52:2"}},
		{"decimals", []string{"Cer (9.5%)", "Cer (10.0%)"}, []string{"Cer (9.5%)", "Cer (10.0%)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]string(nil), tt.in...)
			SortNatural(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildGraphDedupsAndIndexes(t *testing.T) {
	flows := []GroupedFlowRecord{
		{SourceLabel: "Group 10 (5.0%)", TargetLabel: "B (50.0%)", Value: 5},
		{SourceLabel: "Group 2 (95.0%)", TargetLabel: "B (50.0%)", Value: 45},
		{SourceLabel: "Group 2 (95.0%)", TargetLabel: "A (50.0%)", Value: 50},
		{SourceLabel: "B (50.0%)", TargetLabel: "Group 2 (95.0%)", Value: 1},
	}
	g := BuildGraph(flows)

	assert.Equal(t, []string{"A (50.0%)", "B (50.0%)", "Group 2 (95.0%)", "Group 10 (5.0%)"}, g.Nodes)
	assert.Equal(t, []int{3, 2, 2, 1}, g.Source)
	assert.Equal(t, []int{1, 1, 0, 2}, g.Target)
	assert.Equal(t, []float64{5, 45, 50, 1}, g.Value)
	require.NoError(t, g.Validate())

	edges := g.Edges()
	require.Len(t, edges, 4)
	assert.Equal(t, Edge{Source: 2, Target: 0, Value: 50}, edges[2])
}

func TestBuildGraphFromDataset(t *testing.T) {
	ds, err := BuildDataset(lipidTable(), lipidColumns(), nil)
	require.NoError(t, err)
	g := ds.Graph()

	assert.Equal(t, []string{
		"Cer (9.5%)", "GL (25.0%)", "GP (65.0%)", "Others (0.5%)", "PC (45.0%)", "PC-diacyl (40.0%)",
		"PC-ether (5.0%)", "PE (20.0%)", "PE-diacyl (20.0%)", "SP (10.0%)", "TG (25.0%)",
	}, g.Nodes)
	require.Len(t, g.Source, len(ds.Grouped))
	require.NoError(t, g.Validate())
	for i, fl := range ds.Grouped {
		assert.Equal(t, fl.SourceLabel, g.Nodes[g.Source[i]])
		assert.Equal(t, fl.TargetLabel, g.Nodes[g.Target[i]])
	}
}

func TestBuildGraphEmpty(t *testing.T) {
	g := BuildGraph(nil)
	assert.Empty(t, g.Nodes)
	assert.NotNil(t, g.Nodes)
	assert.Empty(t, g.Source)
	assert.NoError(t, g.Validate())
}

func TestGraphValidate(t *testing.T) {
	g := &Graph{Nodes: []string{"a", "b"}, Source: []int{0}, Target: []int{2}, Value: []float64{1}}
	assert.ErrorContains(t, g.Validate(), "outside")

	g = &Graph{Nodes: []string{"a", "a"}}
	assert.ErrorContains(t, g.Validate(), "duplicate node")

	g = &Graph{Nodes: []string{"a"}, Source: []int{0}, Target: []int{0, 0}, Value: []float64{1}}
	assert.ErrorContains(t, g.Validate(), "lengths differ")
}
