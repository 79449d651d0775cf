package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazon-ion/ion-hash-test-driver/config"
	"github.com/amazon-ion/ion-hash-test-driver/errors"
)

func TestArgvAppendsWhenNoPlaceholders(t *testing.T) {
	desc := Descriptor{
		Name:       "ion-hash-python",
		Command:    []string{"python", "tools/ion-hash-wrapper"},
		Algorithms: []string{"md5"},
	}

	argv := desc.Argv("md5", "build/tests/ion_hash_tests.ion")
	assert.Equal(t, []string{"python", "tools/ion-hash-wrapper", "md5", "build/tests/ion_hash_tests.ion"}, argv)
}

func TestArgvSubstitutesPlaceholders(t *testing.T) {
	desc := Descriptor{
		Name:       "ion-hash-java",
		Command:    []string{"java", "-jar", "driver.jar", "--digest={algorithm}", "{file}"},
		Algorithms: []string{"sha256"},
	}

	argv := desc.Argv("sha256", "tests.10n")
	assert.Equal(t, []string{"java", "-jar", "driver.jar", "--digest=sha256", "tests.10n"}, argv)
}

func TestSupports(t *testing.T) {
	desc := Descriptor{Name: "x", Algorithms: []string{"md5", "sha1"}}
	assert.True(t, desc.Supports("md5"))
	assert.False(t, desc.Supports("sha512"))
}

func TestLoadInline(t *testing.T) {
	cfg := &config.Config{
		Implementations: map[string]config.ImplementationConfig{
			"ion-hash-js": {
				Command:    "node cli.js {algorithm} {file}",
				Algorithms: []string{"md5"},
			},
			"ion-hash-python": {
				Command:    "python -m ionhash.cli",
				Algorithms: []string{"md5", "sha256"},
			},
		},
	}

	descs, err := Load(cfg)
	require.NoError(t, err)
	require.Len(t, descs, 2)

	// Sorted by name.
	assert.Equal(t, "ion-hash-js", descs[0].Name)
	assert.Equal(t, "ion-hash-python", descs[1].Name)
	assert.Equal(t, []string{"python", "-m", "ionhash.cli"}, descs[1].Command)
}

func TestLoadRegistryDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ion-hash-go.toml"), []byte(`
command = "ion-hash-cli {algorithm} {file}"
algorithms = ["md5", "sha512"]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not a descriptor"), 0o644))

	cfg := &config.Config{Registry: config.RegistryConfig{Dir: dir}}

	descs, err := Load(cfg)
	require.NoError(t, err)
	require.Len(t, descs, 1)

	// Name defaults from the filename.
	assert.Equal(t, "ion-hash-go", descs[0].Name)
	assert.Equal(t, []string{"md5", "sha512"}, descs[0].Algorithms)
}

func TestLoadDuplicateName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ion-hash-js.toml"), []byte(`
command = "node cli.js"
algorithms = ["md5"]
`), 0o644))

	cfg := &config.Config{
		Registry: config.RegistryConfig{Dir: dir},
		Implementations: map[string]config.ImplementationConfig{
			"ion-hash-js": {Command: "node other.js", Algorithms: []string{"md5"}},
		},
	}

	_, err := Load(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "ion-hash-js")
}

func TestLoadEmptyRegistry(t *testing.T) {
	_, err := Load(&config.Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestLoadRejectsUnknownAlgorithm(t *testing.T) {
	cfg := &config.Config{
		Implementations: map[string]config.ImplementationConfig{
			"bad": {Command: "bad-cli", Algorithms: []string{"md5", "whirlpool"}},
		},
	}

	_, err := Load(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whirlpool")
}

func TestLoadRejectsUnparsableCommand(t *testing.T) {
	cfg := &config.Config{
		Implementations: map[string]config.ImplementationConfig{
			"bad": {Command: `broken "quote`, Algorithms: []string{"md5"}},
		},
	}

	_, err := Load(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestLoadMalformedDescriptorFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("command = ["), 0o644))

	cfg := &config.Config{Registry: config.RegistryConfig{Dir: dir}}

	_, err := Load(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}
