package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/amazon-ion/ion-hash-test-driver/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the driver configuration using Viper. The result is cached;
// use Reset to force a reload (tests, watch mode).
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(errors.ErrConfig, err.Error())
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.NewConfigError("failed to read config file %s: %v", configPath, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError("failed to unmarshal config from %s: %v", configPath, err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetConfigName("driver")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".ion-hash-test-driver"))
	}

	SetDefaults(v)
	BindEnvVars(v)

	// A missing config file is fine: defaults plus env vars still describe
	// a runnable driver, provided a registry exists on disk.
	_ = v.ReadInConfig()

	viperInstance = v
	return viperInstance
}

// validate rejects configurations that would make the run's inputs
// undefined. Config failures are fatal and abort before any invocation.
func (c *Config) validate() error {
	if c.Corpus.Root == "" {
		return errors.NewConfigError("corpus.root must be set")
	}
	if len(c.Driver.Algorithms) == 0 {
		return errors.NewConfigError("driver.algorithms must name at least one algorithm")
	}
	for _, alg := range c.Driver.Algorithms {
		if !IsKnownAlgorithm(alg) {
			return errors.WithHintf(
				errors.NewConfigError("unknown algorithm %q", alg),
				"known algorithms: %v", KnownAlgorithms)
		}
	}
	if c.Driver.SpawnPerSecond < 0 {
		return errors.NewConfigError("driver.spawn_per_second must be >= 0")
	}
	return nil
}

// IsKnownAlgorithm reports whether name is in the closed algorithm set.
func IsKnownAlgorithm(name string) bool {
	for _, alg := range KnownAlgorithms {
		if alg == name {
			return true
		}
	}
	return false
}
