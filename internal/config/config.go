package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/utkarsh5026/seqpar/compare"
	"github.com/utkarsh5026/seqpar/internal/logger"
	"github.com/utkarsh5026/seqpar/internal/tracing"
	"github.com/utkarsh5026/seqpar/report"
	"github.com/utkarsh5026/seqpar/task"
)

// EnvPrefix prefixes every environment override, e.g. SEQPAR_LOG_LEVEL.
const EnvPrefix = "SEQPAR"

// Config holds the full CLI configuration
type Config struct {
	// Tasks, when non-empty, replaces the preset.
	Tasks     []task.Descriptor `mapstructure:"tasks"`
	Preset    string            `mapstructure:"preset"`
	Parallel  ParallelConfig    `mapstructure:"parallel"`
	Simulator SimulatorConfig   `mapstructure:"simulator"`
	Output    OutputConfig      `mapstructure:"output"`
	Activity  ActivityConfig    `mapstructure:"activity"`
	Log       logger.Config     `mapstructure:"log"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Tracing   tracing.Config    `mapstructure:"tracing"`
}

type ParallelConfig struct {
	Concurrency int     `mapstructure:"concurrency"` // 0 = one worker per task
	RateLimit   float64 `mapstructure:"rate_limit"`  // tasks started per second, 0 = unlimited
	Burst       int     `mapstructure:"burst"`
}

type SimulatorConfig struct {
	FailTasks   []string `mapstructure:"fail_tasks"`
	FailureRate float64  `mapstructure:"failure_rate"`
	Seed        uint64   `mapstructure:"seed"`
}

type OutputConfig struct {
	Format     string `mapstructure:"format"` // table, json, yaml
	Iterations int    `mapstructure:"iterations"`
	Progress   bool   `mapstructure:"progress"`
}

type ActivityConfig struct {
	UserID      int     `mapstructure:"user_id"`
	LatencyMs   int64   `mapstructure:"latency_ms"`
	FailureRate float64 `mapstructure:"failure_rate"`
}

type MetricsConfig struct {
	// Addr serves /metrics while the command runs; empty disables it.
	Addr string `mapstructure:"addr"`
	// Textfile receives a dump of all metrics once the command finishes.
	Textfile string `mapstructure:"textfile"`
}

// Load reads configuration from defaults, then the optional file at
// configPath, then SEQPAR_* environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("preset", compare.PresetBasic)

	v.SetDefault("parallel.concurrency", 0)
	v.SetDefault("parallel.rate_limit", 0.0)
	v.SetDefault("parallel.burst", 0)

	v.SetDefault("simulator.fail_tasks", []string{})
	v.SetDefault("simulator.failure_rate", 0.0)
	v.SetDefault("simulator.seed", 1)

	v.SetDefault("output.format", string(report.FormatTable))
	v.SetDefault("output.iterations", 1)
	v.SetDefault("output.progress", false)

	v.SetDefault("activity.user_id", 1)
	v.SetDefault("activity.latency_ms", 1000)
	v.SetDefault("activity.failure_rate", 0.0)

	logDefaults := logger.DefaultConfig()
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.format", logDefaults.Format)
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.file_path", "")
	v.SetDefault("log.max_size", 10) // MB
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 7) // days

	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.textfile", "")

	traceDefaults := tracing.DefaultConfig()
	v.SetDefault("tracing.enabled", traceDefaults.Enabled)
	v.SetDefault("tracing.service_name", traceDefaults.ServiceName)
	v.SetDefault("tracing.service_version", traceDefaults.ServiceVersion)
	v.SetDefault("tracing.endpoint", traceDefaults.Endpoint)
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if len(c.Tasks) == 0 {
		if _, err := compare.Preset(c.Preset); err != nil {
			return err
		}
	}
	if err := task.ValidateAll(c.Tasks); err != nil {
		return err
	}
	if c.Parallel.Concurrency < 0 {
		return fmt.Errorf("parallel.concurrency must be non-negative")
	}
	if c.Parallel.RateLimit < 0 {
		return fmt.Errorf("parallel.rate_limit must be non-negative")
	}
	if c.Parallel.RateLimit > 0 && c.Parallel.Burst <= 0 {
		return fmt.Errorf("parallel.burst must be positive when parallel.rate_limit is set")
	}
	if c.Simulator.FailureRate < 0 || c.Simulator.FailureRate > 1 {
		return fmt.Errorf("simulator.failure_rate must be between 0 and 1")
	}
	if _, err := report.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Output.Iterations < 1 {
		return fmt.Errorf("output.iterations must be at least 1")
	}
	if c.Activity.LatencyMs < 0 {
		return fmt.Errorf("activity.latency_ms must be non-negative")
	}
	if c.Activity.FailureRate < 0 || c.Activity.FailureRate > 1 {
		return fmt.Errorf("activity.failure_rate must be between 0 and 1")
	}
	return nil
}

// Descriptors returns the configured task list, falling back to the preset.
func (c *Config) Descriptors() ([]task.Descriptor, error) {
	if len(c.Tasks) > 0 {
		return c.Tasks, nil
	}
	return compare.Preset(c.Preset)
}
