package config

import (
	"fmt"
	"time"
)

// Config is the run-wide driver configuration. It is loaded once before a
// run and treated as immutable by the loader, runner and aggregator.
type Config struct {
	Corpus   CorpusConfig   `mapstructure:"corpus"`
	Driver   DriverConfig   `mapstructure:"driver"`
	Registry RegistryConfig `mapstructure:"registry"`
	Results  ResultsConfig  `mapstructure:"results"`

	// Implementations holds inline descriptor tables keyed by name,
	// merged with descriptor files found under Registry.Dir.
	Implementations map[string]ImplementationConfig `mapstructure:"implementations"`
}

// CorpusConfig locates the test-data artifacts.
type CorpusConfig struct {
	Root string `mapstructure:"root"` // root directory of .ion / .10n test files
}

// DriverConfig controls scheduling of implementation invocations.
type DriverConfig struct {
	Algorithms     []string `mapstructure:"algorithms"`       // digest algorithms to compare
	Workers        int      `mapstructure:"workers"`          // concurrent invocations
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`  // per-invocation bound
	SpawnPerSecond int      `mapstructure:"spawn_per_second"` // child-process launch rate (0 = unlimited)
}

// RegistryConfig locates per-implementation descriptor files.
type RegistryConfig struct {
	Dir string `mapstructure:"dir"` // directory of <name>.toml descriptor files
}

// ResultsConfig controls report output.
type ResultsConfig struct {
	File string `mapstructure:"file"` // path of the JSON results file ("" = stdout only)
}

// ImplementationConfig is an inline implementation descriptor. Command is a
// shell-quoted string; {algorithm} and {file} placeholders substitute in
// place, otherwise both are appended as trailing arguments.
type ImplementationConfig struct {
	Command    string   `mapstructure:"command"`
	Algorithms []string `mapstructure:"algorithms"`
}

// KnownAlgorithms is the closed set of digest-function names the driver and
// its corpus understand. Individual implementations may support any subset.
var KnownAlgorithms = []string{"md5", "sha1", "sha256", "sha512"}

// Timeout returns the per-invocation execution bound.
func (c *Config) Timeout() time.Duration {
	if c.Driver.TimeoutSeconds <= 0 {
		return time.Duration(DefaultTimeoutSeconds) * time.Second
	}
	return time.Duration(c.Driver.TimeoutSeconds) * time.Second
}

// WorkerCount returns the configured pool size, falling back to the default
// when unset.
func (c *Config) WorkerCount() int {
	if c.Driver.Workers <= 0 {
		return DefaultWorkers
	}
	return c.Driver.Workers
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Corpus: %s, Algorithms: %v, Workers: %d, Timeout: %s}",
		c.Corpus.Root, c.Driver.Algorithms, c.WorkerCount(), c.Timeout())
}
