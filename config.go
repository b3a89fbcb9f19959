package rcflp

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"
)

// Config is the record the tools hand to the core. It is assembled from
// defaults, an optional config file, RCFLP_* environment variables and
// finally the command line flags.
type Config struct {
	InstancePaths []string `mapstructure:"input"`
	Format        int      `mapstructure:"type"`
	Epsilon       float64  `mapstructure:"epsilon"`
	SeedStart     int      `mapstructure:"seed"`
	Quantity      int      `mapstructure:"quantity"`
	SolutionPaths []string `mapstructure:"solution"`
	OutputPath    string   `mapstructure:"output"`
	ScenarioDir   string   `mapstructure:"scenario-dir"`
	SummaryPath   string   `mapstructure:"summary"`
	SupportPath   string   `mapstructure:"support-set"`
	SingleSource  bool     `mapstructure:"single-source"`
	CacheSize     int      `mapstructure:"cache-size"`
	LogLevel      string   `mapstructure:"log-level"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("type", int(FormatORLibrary))
	v.SetDefault("epsilon", 0.0)
	v.SetDefault("seed", 0)
	v.SetDefault("quantity", 1)
	v.SetDefault("output", "evaluation.csv")
	v.SetDefault("scenario-dir", "scenarios")
	v.SetDefault("summary", "")
	v.SetDefault("support-set", "")
	v.SetDefault("single-source", false)
	v.SetDefault("cache-size", 64)
	v.SetDefault("log-level", "info")
	v.SetEnvPrefix("RCFLP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the configuration file at path (any format viper
// understands). An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %s: %w", path, err.Error(), ErrIO)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %s: %w", path, err.Error(), ErrFormat)
	}
	return cfg, nil
}

func (cfg *Config) InstanceFormat() (Format, error) {
	return ParseFormat(cfg.Format)
}

// Validate checks the fields every tool relies on.
func (cfg *Config) Validate() error {
	if len(cfg.InstancePaths) == 0 {
		return fmt.Errorf("no instance file given: %w", ErrFormat)
	}
	if _, err := cfg.InstanceFormat(); err != nil {
		return err
	}
	if cfg.Epsilon < 0 || math.IsNaN(cfg.Epsilon) || math.IsInf(cfg.Epsilon, 0) {
		return fmt.Errorf("epsilon %v: %w", cfg.Epsilon, ErrInvalidEpsilon)
	}
	if cfg.Quantity < 0 {
		return fmt.Errorf("negative scenario quantity %d: %w", cfg.Quantity, ErrFormat)
	}
	if cfg.CacheSize <= 0 {
		return fmt.Errorf("cache size %d must be positive: %w", cfg.CacheSize, ErrFormat)
	}
	return nil
}
