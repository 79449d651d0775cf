package config

import (
	"github.com/spf13/viper"
)

// Default values for driver scheduling.
const (
	DefaultWorkers        = 4
	DefaultTimeoutSeconds = 60
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Corpus defaults
	v.SetDefault("corpus.root", "build/tests")

	// Driver defaults
	v.SetDefault("driver.algorithms", []string{"md5"})
	v.SetDefault("driver.workers", DefaultWorkers)
	v.SetDefault("driver.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("driver.spawn_per_second", 0) // unlimited

	// Registry defaults
	v.SetDefault("registry.dir", "implementations")

	// Results defaults
	v.SetDefault("results.file", "ion-test-driver-results.json")
}

// BindEnvVars explicitly binds configuration to environment variables so CI
// can override paths without editing the config file.
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("corpus.root", "ION_HASH_TEST_CORPUS")
	v.BindEnv("registry.dir", "ION_HASH_TEST_REGISTRY")
	v.BindEnv("results.file", "ION_HASH_TEST_RESULTS")
}
