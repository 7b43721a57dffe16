package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/lipidflow-cli/internal/render"
	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
	"github.com/spf13/cobra"
)

var (
	graphSourceCol string
	graphTargetCol string
	graphValueCol  string
	graphOut       string
	graphColors    string
	graphPlot      bool
)

var graphCmd = &cobra.Command{
	Use:   "graph <grouped.csv>",
	Short: "Build the Sankey link graph and colors from a grouped flow table",
	Long: `Reads a grouped flow table (for example the <name>_sankey.csv written by prepare, or
any CSV with source/target/value columns) and writes <out>_link.json and <out>_colors.csv.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open grouped flows: %w", err)
		}
		defer f.Close()
		flows, err := sankey.ReadGroupedCSV(f, sankey.GroupedColumns{
			Source: graphSourceCol,
			Target: graphTargetCol,
			Value:  graphValueCol,
		})
		if err != nil {
			return err
		}

		g := sankey.BuildGraph(flows)
		colors := resolveColors(g.Nodes, graphColors)
		printWarnings(colors.Warnings)

		prefix := graphOut
		if prefix == "" {
			prefix = filepath.Join(filepath.Dir(input), strings.TrimSuffix(baseName(input), "_sankey"))
		}
		if err := writeArtifact(prefix+"_link.json", func(w io.Writer) error { return sankey.WriteLinkJSON(w, g) }); err != nil {
			return err
		}
		if err := writeArtifact(prefix+"_colors.csv", func(w io.Writer) error { return sankey.WriteColorCSV(w, colors) }); err != nil {
			return err
		}
		if graphPlot {
			c, _ := loadedConfig()
			a, err := render.Plot(g, colors.Map(), prefix+"_sankey", renderOptions(c, 0, 0, 0, ""))
			if err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s\n✓ Wrote %s\n", a.FigureJSON, a.HTML)
		}
		fmt.Printf("✓ %d nodes, %d links\n", len(g.Nodes), len(g.Source))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	d := sankey.DefaultGroupedColumns()
	graphCmd.Flags().StringVar(&graphSourceCol, "source-col", d.Source, "source label column")
	graphCmd.Flags().StringVar(&graphTargetCol, "target-col", d.Target, "target label column")
	graphCmd.Flags().StringVar(&graphValueCol, "value-col", d.Value, "flow value column")
	graphCmd.Flags().StringVarP(&graphOut, "out", "o", "", "output prefix (default: next to the input)")
	graphCmd.Flags().StringVar(&graphColors, "colors", "", "color map CSV with label,color columns")
	graphCmd.Flags().BoolVar(&graphPlot, "plot", false, "also write <out>_sankey.json and <out>_sankey.html")
}
