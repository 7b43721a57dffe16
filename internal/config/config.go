package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Others threshold (percent) for stages without an entry in StageThresholds.
	DefaultThreshold float64            `mapstructure:"default_threshold" yaml:"default_threshold"`
	StageThresholds  map[string]float64 `mapstructure:"stage_thresholds" yaml:"stage_thresholds"`
	OutputDir        string             `mapstructure:"output_dir" yaml:"output_dir"`
	DBPath           string             `mapstructure:"db_path" yaml:"db_path"`
	Delimiter        string             `mapstructure:"delimiter" yaml:"delimiter"`

	// Rendering
	Width     int `mapstructure:"width" yaml:"width"`
	Height    int `mapstructure:"height" yaml:"height"`
	Thickness int `mapstructure:"thickness" yaml:"thickness"`

	// Server
	ServeAddr   string   `mapstructure:"serve_addr" yaml:"serve_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
}

// Dir returns ~/.lipidflow.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".lipidflow"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.lipidflow/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env (LIPIDFLOW_*, also read from ./.env) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LIPIDFLOW")
	v.AutomaticEnv()

	v.SetDefault("default_threshold", 1.0)
	v.SetDefault("stage_thresholds", map[string]float64{})
	v.SetDefault("output_dir", ".")
	v.SetDefault("db_path", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("width", 1600)
	v.SetDefault("height", 1000)
	v.SetDefault("thickness", 100)
	v.SetDefault("serve_addr", "127.0.0.1:8001")
	v.SetDefault("cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, "runs.db")
	}
	if c.StageThresholds == nil {
		c.StageThresholds = map[string]float64{}
	}
	return &c, nil
}
