package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/lipidflow-cli/internal/render"
	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
	"github.com/spf13/cobra"
)

var (
	plotColors    string
	plotOut       string
	plotWidth     int
	plotHeight    int
	plotThickness int
	plotTitle     string
)

var plotCmd = &cobra.Command{
	Use:   "plot <link.json>",
	Short: "Render a link graph as plotly figure JSON and an HTML page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open link json: %w", err)
		}
		defer f.Close()
		g, err := sankey.ReadLinkJSON(f)
		if err != nil {
			return err
		}

		colors := resolveColors(g.Nodes, plotColors)
		printWarnings(colors.Warnings)

		out := plotOut
		if out == "" {
			out = filepath.Join(filepath.Dir(input), strings.TrimSuffix(baseName(input), "_link")+"_sankey")
		}
		c, _ := loadedConfig()
		a, err := render.Plot(g, colors.Map(), out, renderOptions(c, plotWidth, plotHeight, plotThickness, plotTitle))
		if err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n✓ Wrote %s\n", a.FigureJSON, a.HTML)
		return nil
	},
}

var reloadOut string

var reloadCmd = &cobra.Command{
	Use:   "reload <figure.json>",
	Short: "Regenerate the HTML page from a saved figure JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		out := reloadOut
		if out == "" {
			out = strings.TrimSuffix(input, filepath.Ext(input))
		}
		a, err := render.Reload(input, out)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", a.HTML)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plotColors, "colors", "", "color map CSV with label,color columns (palette if omitted)")
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "", "output path without extension")
	plotCmd.Flags().IntVar(&plotWidth, "width", 0, "plot width in px (default from config)")
	plotCmd.Flags().IntVar(&plotHeight, "height", 0, "plot height in px (default from config)")
	plotCmd.Flags().IntVar(&plotThickness, "thickness", 0, "node thickness in px (default from config)")
	plotCmd.Flags().StringVar(&plotTitle, "title", "", "plot title")

	rootCmd.AddCommand(reloadCmd)
	reloadCmd.Flags().StringVarP(&reloadOut, "out", "o", "", "output path without extension (default: next to the figure)")
}
