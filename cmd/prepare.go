package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	cfgpkg "github.com/KaramelBytes/lipidflow-cli/internal/config"
	"github.com/KaramelBytes/lipidflow-cli/internal/render"
	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
	"github.com/KaramelBytes/lipidflow-cli/internal/store"
	"github.com/KaramelBytes/lipidflow-cli/internal/table"
	"github.com/spf13/cobra"
)

var (
	prepStart      string
	prepMid        string
	prepEnd        string
	prepValue      string
	prepID         string
	prepThresholds map[string]string
	prepOutDir     string
	prepName       string
	prepDelimiter  string
	prepDecimal    string
	prepSheetName  string
	prepSheetIndex int
	prepMaxRows    int
	prepColors     string
	prepPlot       bool
	prepSave       bool
	prepWidth      int
	prepHeight     int
	prepThickness  int
	prepTitle      string
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <file>",
	Short: "Aggregate a classification table into Sankey flows, link graph and colors",
	Long: `Reads a CSV/TSV/XLSX classification table, summarizes the start, mid and end
columns (groups below the threshold fold into "Others"), maps start→mid and mid→end
flows, and writes:

  <name>_sankey.csv   grouped flows (source_label, target_label, value, ratio)
  <name>_mapped.csv   per-row flow records
  <name>_link.json    Sankey link graph {node, source, target, value}
  <name>_colors.csv   node colors (label, color)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		c, err := loadedConfig()
		if err != nil {
			return err
		}

		delim := prepDelimiter
		if delim == "" {
			delim = c.Delimiter
		}
		opt, err := tableOptions(delim, prepDecimal, prepSheetName, prepSheetIndex)
		if err != nil {
			return err
		}
		opt.MaxRows = prepMaxRows
		tbl, err := table.Load(input, opt)
		if err != nil {
			return err
		}
		logger.Debug("table loaded", "path", input, "rows", tbl.Len(), "columns", len(tbl.Columns()))

		cols := sankey.Columns{Start: prepStart, Mid: prepMid, End: prepEnd, Value: prepValue, RowID: prepID}
		th, err := stageThresholds(c, cols, prepThresholds)
		if err != nil {
			return err
		}
		ds, err := sankey.BuildDataset(tbl, cols, th)
		if err != nil {
			return err
		}
		for _, s := range ds.Stages {
			logger.Debug("stage summarized", "column", s.Column, "threshold", s.Threshold, "groups", len(s.Groups), "others", s.Others.Value)
		}

		graph := ds.Graph()
		colors := resolveColors(graph.Nodes, prepColors)
		printWarnings(colors.Warnings)

		outDir := prepOutDir
		if outDir == "" {
			outDir = c.OutputDir
		}
		name := prepName
		if name == "" {
			name = baseName(input)
		}
		prefix := filepath.Join(outDir, name)

		if err := writeArtifact(prefix+"_sankey.csv", func(w io.Writer) error { return sankey.WriteGroupedCSV(w, ds.Grouped) }); err != nil {
			return err
		}
		if err := writeArtifact(prefix+"_mapped.csv", func(w io.Writer) error { return sankey.WriteFlowsCSV(w, ds.Flows) }); err != nil {
			return err
		}
		if err := writeArtifact(prefix+"_link.json", func(w io.Writer) error { return sankey.WriteLinkJSON(w, graph) }); err != nil {
			return err
		}
		if err := writeArtifact(prefix+"_colors.csv", func(w io.Writer) error { return sankey.WriteColorCSV(w, colors) }); err != nil {
			return err
		}

		if prepPlot {
			ropt := renderOptions(c, prepWidth, prepHeight, prepThickness, prepTitle)
			a, err := render.Plot(graph, colors.Map(), prefix+"_sankey", ropt)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s\n✓ Wrote %s\n", a.FigureJSON, a.HTML)
		}

		if prepSave {
			db, err := store.Open(c.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			id, err := db.SaveRun(cmd.Context(), store.RunFromDataset(name, input, ds, th, colors))
			if err != nil {
				return err
			}
			logger.Info("run saved", "id", id, "db", c.DBPath)
			fmt.Printf("✓ Saved run %s\n", id)
		}

		fmt.Printf("✓ %d nodes, %d grouped flows, %d flow records\n", len(graph.Nodes), len(ds.Grouped), len(ds.Flows))
		return nil
	},
}

// renderOptions overlays non-zero flag values on the configured plot size.
func renderOptions(c *cfgpkg.Global, width, height, thickness int, title string) render.Options {
	opt := render.DefaultOptions()
	if c != nil {
		if c.Width > 0 {
			opt.Width = c.Width
		}
		if c.Height > 0 {
			opt.Height = c.Height
		}
		if c.Thickness > 0 {
			opt.Thickness = c.Thickness
		}
	}
	if width > 0 {
		opt.Width = width
	}
	if height > 0 {
		opt.Height = height
	}
	if thickness > 0 {
		opt.Thickness = thickness
	}
	if title != "" {
		opt.Title = title
	}
	return opt
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	f := prepareCmd.Flags()
	f.StringVar(&prepStart, "start", "", "start stage column (e.g. Category)")
	f.StringVar(&prepMid, "mid", "", "mid stage column (e.g. Main class)")
	f.StringVar(&prepEnd, "end", "", "end stage column (e.g. Sub class)")
	f.StringVar(&prepValue, "value", "", "numeric value column (e.g. abundance)")
	f.StringVar(&prepID, "id", "", "optional row identifier column (row position if absent)")
	f.StringToStringVar(&prepThresholds, "threshold", nil, "Others threshold in percent per column, e.g. --threshold 'Main class=2'")
	f.StringVarP(&prepOutDir, "out-dir", "o", "", "output directory (default from config output_dir)")
	f.StringVar(&prepName, "name", "", "artifact name prefix (default: input file name)")
	f.StringVar(&prepDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (by extension if omitted)")
	f.StringVar(&prepDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	f.StringVar(&prepSheetName, "sheet-name", "", "XLSX: sheet name to read")
	f.IntVar(&prepSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	f.IntVar(&prepMaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	f.StringVar(&prepColors, "colors", "", "color map CSV with label,color columns")
	f.BoolVar(&prepPlot, "plot", false, "also write <name>_sankey.json and <name>_sankey.html")
	f.BoolVar(&prepSave, "save", false, "store the run in the run history database")
	f.IntVar(&prepWidth, "width", 0, "plot width in px (default from config)")
	f.IntVar(&prepHeight, "height", 0, "plot height in px (default from config)")
	f.IntVar(&prepThickness, "thickness", 0, "node thickness in px (default from config)")
	f.StringVar(&prepTitle, "title", "", "plot title")
	for _, name := range []string{"start", "mid", "end", "value"} {
		_ = prepareCmd.MarkFlagRequired(name)
	}
}
