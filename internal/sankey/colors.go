package sankey

import (
	"fmt"
)

// NeutralColor is used when palette colors cannot or should not be assigned.
const NeutralColor = "grey"

// MaxPaletteNodes is the node count from which palette coloring is disabled.
const MaxPaletteNodes = 100

// plotlyPalette is Plotly's default qualitative palette.
var plotlyPalette = [...]string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Palette returns a copy of the qualitative palette used by AssignColors.
func Palette() []string {
	out := make([]string, len(plotlyPalette))
	copy(out, plotlyPalette[:])
	return out
}

// NodeColor is one row of a color map.
type NodeColor struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// ColorAssignment pairs every node label with a color, in node order.
type ColorAssignment struct {
	Labels   []string
	Colors   []string
	Warnings []string
}

// Map returns the assignment as label → color.
func (c ColorAssignment) Map() map[string]string {
	m := make(map[string]string, len(c.Labels))
	for i, l := range c.Labels {
		m[l] = c.Colors[i]
	}
	return m
}

// Pairs returns the assignment as color map rows.
func (c ColorAssignment) Pairs() []NodeColor {
	out := make([]NodeColor, len(c.Labels))
	for i, l := range c.Labels {
		out[i] = NodeColor{Label: l, Color: c.Colors[i]}
	}
	return out
}

// AssignColors colors nodes cyclically from the qualitative palette by position.
// With MaxPaletteNodes or more nodes every node gets NeutralColor and a warning
// is attached.
func AssignColors(nodes []string) ColorAssignment {
	c := ColorAssignment{Labels: append([]string(nil), nodes...), Colors: make([]string, len(nodes))}
	if len(nodes) >= MaxPaletteNodes {
		for i := range c.Colors {
			c.Colors[i] = NeutralColor
		}
		c.Warnings = append(c.Warnings, fmt.Sprintf(
			"cannot assign colors to %d nodes automatically (limit %d); all nodes use %s, supply a color map to assign colors manually",
			len(nodes), MaxPaletteNodes, NeutralColor))
		return c
	}
	for i := range nodes {
		c.Colors[i] = plotlyPalette[i%len(plotlyPalette)]
	}
	return c
}

// ApplyColorConfig colors nodes from an explicit color map. Labels the map does
// not mention get NeutralColor. An empty map falls back to AssignColors.
func ApplyColorConfig(nodes []string, cfg []NodeColor) ColorAssignment {
	if len(cfg) == 0 {
		return AssignColors(nodes)
	}
	byLabel := make(map[string]string, len(cfg))
	for _, nc := range cfg {
		byLabel[nc.Label] = nc.Color
	}
	c := ColorAssignment{Labels: append([]string(nil), nodes...), Colors: make([]string, len(nodes))}
	var unknown int
	for i, n := range nodes {
		if col, ok := byLabel[n]; ok {
			c.Colors[i] = col
			continue
		}
		c.Colors[i] = NeutralColor
		unknown++
	}
	if unknown > 0 {
		c.Warnings = append(c.Warnings, fmt.Sprintf("%d node(s) not in the color map use %s", unknown, NeutralColor))
	}
	return c
}
