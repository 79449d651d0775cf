package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/amazon-ion/ion-hash-test-driver/errors"
	"github.com/amazon-ion/ion-hash-test-driver/logger"
)

// descriptorFile is the on-disk shape of one <name>.toml registry entry.
type descriptorFile struct {
	// Name overrides the filename-derived implementation name.
	Name string `toml:"name"`

	// Command is the shell-quoted invocation template.
	Command string `toml:"command"`

	// Algorithms lists the digest functions the implementation supports.
	Algorithms []string `toml:"algorithms"`
}

// discover scans dir for *.toml descriptor files. A missing directory is
// not an error: inline config tables may be the only source of
// implementations. An unreadable or malformed file is fatal.
func discover(dir string) ([]Descriptor, error) {
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debugw("Registry directory absent, using inline implementations only", "dir", dir)
			return nil, nil
		}
		return nil, errors.NewConfigError("registry directory %s unreadable: %v", dir, err)
	}

	var descriptors []Descriptor
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewConfigError("descriptor %s unreadable: %v", path, err)
		}

		var df descriptorFile
		if err := toml.Unmarshal(data, &df); err != nil {
			return nil, errors.NewConfigError("descriptor %s malformed: %v", path, err)
		}

		// Default the name from the filename, like plugin discovery does.
		if df.Name == "" {
			df.Name = strings.TrimSuffix(entry.Name(), ".toml")
		}

		desc, err := build(df.Name, df.Command, df.Algorithms)
		if err != nil {
			return nil, errors.Wrapf(err, "descriptor %s", path)
		}
		descriptors = append(descriptors, desc)

		logger.Debugw("Discovered implementation descriptor",
			"name", desc.Name,
			"path", path,
			"algorithms", desc.Algorithms)
	}

	return descriptors, nil
}
