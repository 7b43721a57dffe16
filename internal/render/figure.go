// Package render turns a Sankey link graph into a plotly figure and writes it as
// figure JSON and a standalone HTML page that draws it with plotly.js.
package render

import (
	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
)

// Options controls the rendered figure.
type Options struct {
	Title     string
	Width     int
	Height    int
	Thickness int
}

// DefaultOptions is a 1600x1000 plot with 100px nodes.
func DefaultOptions() Options {
	return Options{Title: "Plot", Width: 1600, Height: 1000, Thickness: 100}
}

// Figure is the plotly figure document.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one sankey trace of a Figure.
type Trace struct {
	Type        string `json:"type"`
	Arrangement string `json:"arrangement"`
	Node        Node   `json:"node"`
	Link        Link   `json:"link"`
}

// Node holds the node labels and colors of a trace.
type Node struct {
	Label     []string `json:"label"`
	Color     []string `json:"color"`
	Pad       int      `json:"pad"`
	Thickness int      `json:"thickness"`
}

// Link holds the parallel source, target and value arrays of a trace.
type Link struct {
	Source []int     `json:"source"`
	Target []int     `json:"target"`
	Value  []float64 `json:"value"`
}

// Layout sets the figure title, font and size.
type Layout struct {
	Title  Title `json:"title"`
	Font   Font  `json:"font"`
	Width  int   `json:"width,omitempty"`
	Height int   `json:"height,omitempty"`
}

// Title is the figure title.
type Title struct {
	Text string `json:"text"`
}

// Font sets the figure font size.
type Font struct {
	Size int `json:"size"`
}

// NewFigure builds a snap-arranged Sankey trace from g. Nodes without an entry
// in colors are drawn in sankey.NeutralColor.
func NewFigure(g *sankey.Graph, colors map[string]string, opt Options) Figure {
	nodeColors := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		if c, ok := colors[n]; ok && c != "" {
			nodeColors[i] = c
		} else {
			nodeColors[i] = sankey.NeutralColor
		}
	}
	return Figure{
		Data: []Trace{{
			Type:        "sankey",
			Arrangement: "snap",
			Node: Node{
				Label:     append([]string(nil), g.Nodes...),
				Color:     nodeColors,
				Pad:       15,
				Thickness: opt.Thickness,
			},
			Link: Link{
				Source: append([]int(nil), g.Source...),
				Target: append([]int(nil), g.Target...),
				Value:  append([]float64(nil), g.Value...),
			},
		}},
		Layout: Layout{
			Title:  Title{Text: opt.Title},
			Font:   Font{Size: 10},
			Width:  opt.Width,
			Height: opt.Height,
		},
	}
}
