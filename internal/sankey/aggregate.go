package sankey

import (
	"fmt"
	"sort"
)

// OthersKey is the group key of the synthetic bucket for small groups.
const OthersKey = "Others"

// DefaultThreshold is the Others threshold (percent) used for stages without an explicit one.
const DefaultThreshold = 1.0

// GroupSummary is the aggregate of one category within a stage column.
type GroupSummary struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Ratio float64 `json:"ratio"`
	Label string  `json:"label"`
}

// StageSummary holds the groups of one stage column. Groups at or above the
// threshold are kept individually; everything else is merged into Others.
type StageSummary struct {
	Column    string
	Threshold float64
	Groups    []GroupSummary // ascending by Key, Others excluded
	Others    GroupSummary
	byKey     map[string]int
}

// Lookup returns the summary a category value maps to: its own group when it
// was kept, otherwise the Others bucket.
func (s *StageSummary) Lookup(category string) GroupSummary {
	if i, ok := s.byKey[category]; ok {
		return s.Groups[i]
	}
	return s.Others
}

// All returns the kept groups followed by Others.
func (s *StageSummary) All() []GroupSummary {
	out := make([]GroupSummary, 0, len(s.Groups)+1)
	out = append(out, s.Groups...)
	return append(out, s.Others)
}

// Summarize groups the rows of f by groupColumn, summing valueColumn and the
// whole-table ratio per category. Categories whose summed ratio is below
// threshold, blank categories and a literal "Others" category all land in the
// Others bucket, which is present even when empty.
func Summarize(f *Frame, groupColumn, valueColumn string, threshold float64) (*StageSummary, error) {
	err := requireColumns(f.src,
		MissingColumn{Role: "group_column", Name: groupColumn},
		MissingColumn{Role: "value_column", Name: valueColumn},
	)
	if err != nil {
		return nil, err
	}
	values, err := f.column(valueColumn)
	if err != nil {
		return nil, err
	}

	type acc struct{ value, ratio float64 }
	groups := map[string]*acc{}
	var keys []string
	others := &acc{}
	for i := 0; i < f.Len(); i++ {
		key := f.src.String(i, groupColumn)
		if key == "" || key == OthersKey {
			others.value += values[i]
			others.ratio += f.ratios[i]
			continue
		}
		g := groups[key]
		if g == nil {
			g = &acc{}
			groups[key] = g
			keys = append(keys, key)
		}
		g.value += values[i]
		g.ratio += f.ratios[i]
	}
	sort.Strings(keys)

	s := &StageSummary{Column: groupColumn, Threshold: threshold, byKey: map[string]int{}}
	for _, k := range keys {
		g := groups[k]
		if g.ratio >= threshold {
			s.byKey[k] = len(s.Groups)
			s.Groups = append(s.Groups, newGroupSummary(k, g.value, g.ratio))
			continue
		}
		others.value += g.value
		others.ratio += g.ratio
	}
	s.Others = newGroupSummary(OthersKey, others.value, others.ratio)
	return s, nil
}

func newGroupSummary(key string, value, ratio float64) GroupSummary {
	return GroupSummary{Key: key, Value: value, Ratio: ratio, Label: fmt.Sprintf("%s (%.1f%%)", key, ratio)}
}
