// Package registry loads the closed set of implementation descriptors the
// driver tests against. Descriptors come from inline [implementations.*]
// tables in the driver config and from <name>.toml files in the registry
// directory; both are resolved once at startup and read-only thereafter.
package registry

import (
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/amazon-ion/ion-hash-test-driver/config"
	"github.com/amazon-ion/ion-hash-test-driver/errors"
)

// Placeholders recognized inside a descriptor's command template.
const (
	PlaceholderAlgorithm = "{algorithm}"
	PlaceholderFile      = "{file}"
)

// Descriptor describes one hash implementation under test. Identity is the
// Name, which must be unique across the registry.
type Descriptor struct {
	// Name identifies the implementation in reports and logs.
	Name string

	// Command is the argv template. Elements may contain {algorithm} and
	// {file} placeholders; if no element does, both are appended as the
	// final two arguments, matching the driver CLI protocol
	// `<command> <algorithm> <filename>`.
	Command []string

	// Algorithms is the set of digest-function names this implementation
	// supports. The driver never invokes it for an unsupported algorithm.
	Algorithms []string
}

// Supports reports whether the descriptor claims support for algorithm.
func (d *Descriptor) Supports(algorithm string) bool {
	for _, alg := range d.Algorithms {
		if alg == algorithm {
			return true
		}
	}
	return false
}

// Argv synthesizes the concrete command line for one invocation by
// substituting algorithm and file into the command template.
func (d *Descriptor) Argv(algorithm, file string) []string {
	argv := make([]string, 0, len(d.Command)+2)
	substituted := false
	for _, arg := range d.Command {
		if strings.Contains(arg, PlaceholderAlgorithm) || strings.Contains(arg, PlaceholderFile) {
			substituted = true
		}
		arg = strings.ReplaceAll(arg, PlaceholderAlgorithm, algorithm)
		arg = strings.ReplaceAll(arg, PlaceholderFile, file)
		argv = append(argv, arg)
	}
	if !substituted {
		argv = append(argv, algorithm, file)
	}
	return argv
}

// Load resolves all implementation descriptors: inline config tables merged
// with descriptor files under cfg.Registry.Dir. The result is sorted by
// name. Validation failures are fatal config errors.
func Load(cfg *config.Config) ([]Descriptor, error) {
	byName := make(map[string]Descriptor)

	for name, impl := range cfg.Implementations {
		desc, err := build(name, impl.Command, impl.Algorithms)
		if err != nil {
			return nil, err
		}
		byName[name] = desc
	}

	fileDescs, err := discover(cfg.Registry.Dir)
	if err != nil {
		return nil, err
	}
	for _, desc := range fileDescs {
		if _, exists := byName[desc.Name]; exists {
			return nil, errors.NewConfigError(
				"implementation %q defined both inline and in the registry directory", desc.Name)
		}
		byName[desc.Name] = desc
	}

	if len(byName) == 0 {
		return nil, errors.WithHint(
			errors.NewConfigError("no implementations registered"),
			"add [implementations.<name>] tables to driver.toml or descriptor files to the registry directory")
	}

	descriptors := make([]Descriptor, 0, len(byName))
	for _, desc := range byName {
		descriptors = append(descriptors, desc)
	}
	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Name < descriptors[j].Name })
	return descriptors, nil
}

// build validates one descriptor and splits its shell-quoted command string
// into the argv template.
func build(name, command string, algorithms []string) (Descriptor, error) {
	if name == "" {
		return Descriptor{}, errors.NewConfigError("implementation with empty name")
	}
	if strings.TrimSpace(command) == "" {
		return Descriptor{}, errors.NewConfigError("implementation %q has no command", name)
	}

	argv, err := shellquote.Split(command)
	if err != nil {
		return Descriptor{}, errors.NewConfigError(
			"implementation %q has an unparsable command %q: %v", name, command, err)
	}

	if len(algorithms) == 0 {
		return Descriptor{}, errors.NewConfigError("implementation %q supports no algorithms", name)
	}
	seen := make(map[string]bool, len(algorithms))
	for _, alg := range algorithms {
		if !config.IsKnownAlgorithm(alg) {
			return Descriptor{}, errors.WithHintf(
				errors.NewConfigError("implementation %q claims unknown algorithm %q", name, alg),
				"known algorithms: %v", config.KnownAlgorithms)
		}
		if seen[alg] {
			return Descriptor{}, errors.NewConfigError(
				"implementation %q lists algorithm %q twice", name, alg)
		}
		seen[alg] = true
	}

	return Descriptor{Name: name, Command: argv, Algorithms: algorithms}, nil
}
