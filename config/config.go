package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the resource loading subsystem recognises.
type Config struct {
	Textures  TexturesConfig  `mapstructure:"textures"`
	Resources ResourcesConfig `mapstructure:"resources"`
}

// TexturesConfig controls texture loading behaviour.
type TexturesConfig struct {
	// Enabled gates texture container expansion. When false, containers are
	// discarded silently and no texture handles are produced.
	Enabled bool `mapstructure:"enabled"`
}

// ResourcesConfig controls the loading pipeline itself.
type ResourcesConfig struct {
	// StrictResourceChecking turns GPU descriptor exhaustion into a fatal
	// Job error instead of a dropped request.
	StrictResourceChecking bool `mapstructure:"strict_resource_checking"`

	// JobSchedulerWidth bounds how many Job completion orchestrations run
	// in parallel.
	JobSchedulerWidth int `mapstructure:"job_scheduler_width" validate:"gte=1,lte=64"`

	// PipelinePortParallelism bounds the worker count of each pipeline port.
	PipelinePortParallelism int `mapstructure:"pipeline_port_parallelism" validate:"gte=1,lte=64"`
}

// Load reads configuration from multiple sources with priority:
// 1. Environment variables (MAPSTUDIO_ prefix, highest priority)
// 2. Config file (config.yaml)
// 3. Defaults (lowest priority)
//
// Parameters:
//   - configPath: explicit config file path, or "" to search the defaults
//
// Returns:
//   - *Config: the loaded and validated configuration
//   - error: error if reading, unmarshalling, or validation fails
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing).
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("MAPSTUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults registered on viper itself so that an unset boolean is
	// distinguishable from an explicit false in the config file.
	v.SetDefault("textures.enabled", true)
	v.SetDefault("resources.strict_resource_checking", false)
	v.SetDefault("resources.job_scheduler_width", 4)
	v.SetDefault("resources.pipeline_port_parallelism", 6)

	// Config file not found is fine; env vars and defaults still apply.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration or returns the default config on error.
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the subsystem defaults without touching disk.
func Default() *Config {
	return &Config{
		Textures: TexturesConfig{Enabled: true},
		Resources: ResourcesConfig{
			StrictResourceChecking:  false,
			JobSchedulerWidth:       4,
			PipelinePortParallelism: 6,
		},
	}
}
