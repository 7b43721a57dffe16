package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/lipidflow-cli/internal/config"
	"github.com/KaramelBytes/lipidflow-cli/internal/logging"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set LipidFlow configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("default_threshold: %g\n", cfg.DefaultThreshold)
		if len(cfg.StageThresholds) > 0 {
			keys := make([]string, 0, len(cfg.StageThresholds))
			for k := range cfg.StageThresholds {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Println("stage_thresholds:")
			for _, k := range keys {
				fmt.Printf("  %s: %g\n", k, cfg.StageThresholds[k])
			}
		}
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		fmt.Printf("db_path: %s\n", cfg.DBPath)
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Printf("width: %d\n", cfg.Width)
		fmt.Printf("height: %d\n", cfg.Height)
		fmt.Printf("thickness: %d\n", cfg.Thickness)
		fmt.Printf("serve_addr: %s\n", cfg.ServeAddr)
		fmt.Printf("cors_origins: %s\n", strings.Join(cfg.CORSOrigins, ","))
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		if cfg.LogFile != "" {
			fmt.Printf("log_file: %s\n", cfg.LogFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk. Stage thresholds use the key
stage_thresholds.<column>, e.g. lipidflow config set "stage_thresholds.Main class" 2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	if col, ok := strings.CutPrefix(key, "stage_thresholds."); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid threshold for %s: %v", col, val)
		}
		if c.StageThresholds == nil {
			c.StageThresholds = map[string]float64{}
		}
		c.StageThresholds[col] = f
		return nil
	}
	switch key {
	case "default_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for default_threshold: %v", val)
		}
		c.DefaultThreshold = f
	case "output_dir":
		c.OutputDir = val
	case "db_path":
		c.DBPath = val
	case "delimiter":
		if _, err := parseDelimiter(val); err != nil {
			return err
		}
		c.Delimiter = val
	case "width", "height", "thickness":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "width":
			c.Width = i
		case "height":
			c.Height = i
		default:
			c.Thickness = i
		}
	case "serve_addr":
		c.ServeAddr = val
	case "cors_origins":
		var origins []string
		for _, o := range strings.Split(val, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	case "log_level":
		if _, err := logging.ParseLevel(val); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(val)
	case "log_file":
		c.LogFile = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
