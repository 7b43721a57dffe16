package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/lipidflow-cli/internal/config"
	"github.com/KaramelBytes/lipidflow-cli/internal/sankey"
	"github.com/KaramelBytes/lipidflow-cli/internal/table"
	"github.com/KaramelBytes/lipidflow-cli/internal/utils"
)

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab", `\t`:
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s (use ','|';'|'|'|'tab')", s)
	}
}

func parseDecimal(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	case "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", s)
	}
}

// stageThresholds layers the Others thresholds: the config default for every
// stage, then config stage_thresholds, then --threshold column=percent flags.
// Config keys are matched case-insensitively since viper lower-cases map keys.
// A threshold of 0 keeps every group; negative values are rejected.
func stageThresholds(c *cfgpkg.Global, cols sankey.Columns, flags map[string]string) (sankey.Thresholds, error) {
	if c != nil {
		if c.DefaultThreshold < 0 {
			return nil, fmt.Errorf("invalid default_threshold: %g", c.DefaultThreshold)
		}
		for k, v := range c.StageThresholds {
			if v < 0 {
				return nil, fmt.Errorf("invalid stage_thresholds for %q: %g", k, v)
			}
		}
	}
	th := sankey.Thresholds{}
	for _, col := range cols.Stages() {
		th[col] = sankey.DefaultThreshold
		if c == nil {
			continue
		}
		th[col] = c.DefaultThreshold
		for k, v := range c.StageThresholds {
			if strings.EqualFold(k, col) {
				th[col] = v
			}
		}
	}
	for col, raw := range flags {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid --threshold for %q: %s", col, raw)
		}
		th[col] = v
	}
	return th, nil
}

// resolveColors applies a color config file when given. An unreadable or
// malformed file is reported and the palette is used instead.
func resolveColors(nodes []string, path string) sankey.ColorAssignment {
	if path == "" {
		return sankey.AssignColors(nodes)
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Debug("color config unavailable, using palette", "path", path, "err", err)
		fmt.Fprintf(os.Stderr, "⚠ Warning: cannot open color config %s: %v (using palette)\n", path, err)
		return sankey.AssignColors(nodes)
	}
	defer f.Close()
	cfgColors, err := sankey.ReadColorConfig(f)
	if err != nil {
		var invalid *sankey.InvalidColorConfigError
		if errors.As(err, &invalid) {
			logger.Debug("invalid color config, using palette", "path", path, "missing", invalid.Missing)
		}
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v (using palette)\n", err)
		return sankey.AssignColors(nodes)
	}
	return sankey.ApplyColorConfig(nodes, cfgColors)
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		logger.Debug("pipeline warning", "msg", w)
		fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
	}
}

// baseName strips directory and extension: data/lipids.xlsx -> lipids.
func baseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

func writeArtifact(path string, write func(io.Writer) error) error {
	if err := utils.WriteFileFunc(path, write); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %s\n", path)
	return nil
}

func tableOptions(delimiter, decimal, sheetName string, sheetIndex int) (table.Options, error) {
	opt := table.DefaultOptions()
	d, err := parseDelimiter(delimiter)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d
	dec, err := parseDecimal(decimal)
	if err != nil {
		return opt, err
	}
	opt.DecimalSeparator = dec
	opt.SheetName = sheetName
	if sheetIndex > 0 {
		opt.SheetIndex = sheetIndex
	}
	return opt, nil
}
