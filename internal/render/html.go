package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
	"github.com/KaramelBytes/lipidflow-cli/internal/utils"
)

// PlotlyCDN is the plotly.js bundle referenced by generated pages.
const PlotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="{{.Script}}"></script>
  <style>
    body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; }
    #sankey { margin: 0 auto; }
  </style>
</head>
<body>
  <div id="sankey"></div>
  <script>
    const fig = {{.Figure}};
    Plotly.newPlot("sankey", fig.data, fig.layout, {responsive: true});
  </script>
</body>
</html>
`

var page = template.Must(template.New("sankey").Parse(pageTemplate))

// WriteHTML renders fig as a standalone page.
func WriteHTML(w io.Writer, fig Figure) error {
	title := "Sankey"
	if fig.Layout.Title.Text != "" {
		title = fig.Layout.Title.Text
	}
	// html/template JSON-encodes the figure inside the <script> block.
	return page.Execute(w, struct {
		Title  string
		Script string
		Figure Figure
	}{title, PlotlyCDN, fig})
}

// Artifacts lists the files written for one plot.
type Artifacts struct {
	FigureJSON string
	HTML       string
}

// Plot writes <outputBase>.json (the figure) and <outputBase>.html.
func Plot(g *sankey.Graph, colors map[string]string, outputBase string, opt Options) (Artifacts, error) {
	if err := g.Validate(); err != nil {
		return Artifacts{}, err
	}
	return writeFigure(NewFigure(g, colors, opt), outputBase, true)
}

// Reload reads a figure JSON written by Plot and regenerates <outputBase>.html.
func Reload(figurePath, outputBase string) (Artifacts, error) {
	b, err := os.ReadFile(figurePath)
	if err != nil {
		return Artifacts{}, fmt.Errorf("read figure: %w", err)
	}
	var fig Figure
	if err := json.Unmarshal(b, &fig); err != nil {
		return Artifacts{}, fmt.Errorf("decode figure: %w", err)
	}
	if len(fig.Data) == 0 {
		return Artifacts{}, fmt.Errorf("figure %s has no traces", figurePath)
	}
	return writeFigure(fig, outputBase, false)
}

func writeFigure(fig Figure, outputBase string, withJSON bool) (Artifacts, error) {
	var a Artifacts
	if withJSON {
		b, err := utils.PrettyJSON(fig)
		if err != nil {
			return a, err
		}
		a.FigureJSON = outputBase + ".json"
		if err := utils.SafeWriteFile(a.FigureJSON, b); err != nil {
			return a, fmt.Errorf("write figure json: %w", err)
		}
	}
	a.HTML = outputBase + ".html"
	if err := utils.WriteFileFunc(a.HTML, func(w io.Writer) error { return WriteHTML(w, fig) }); err != nil {
		return a, fmt.Errorf("write html: %w", err)
	}
	return a, nil
}
