package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazon-ion/ion-hash-test-driver/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "driver.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
[corpus]
root = "testdata/corpus"

[driver]
algorithms = ["md5", "sha256"]
workers = 2
timeout_seconds = 10

[registry]
dir = "impls"

[implementations.ion-hash-python]
command = "python tools/ion-hash-wrapper {algorithm} {file}"
algorithms = ["md5", "sha256"]
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "testdata/corpus", cfg.Corpus.Root)
	assert.Equal(t, []string{"md5", "sha256"}, cfg.Driver.Algorithms)
	assert.Equal(t, 2, cfg.WorkerCount())
	assert.Equal(t, "10s", cfg.Timeout().String())
	assert.Equal(t, "impls", cfg.Registry.Dir)

	impl, ok := cfg.Implementations["ion-hash-python"]
	require.True(t, ok)
	assert.Contains(t, impl.Command, "{algorithm}")
	assert.Equal(t, []string{"md5", "sha256"}, impl.Algorithms)
}

func TestLoadFromFileDefaults(t *testing.T) {
	path := writeConfig(t, `
[corpus]
root = "testdata/corpus"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"md5"}, cfg.Driver.Algorithms)
	assert.Equal(t, DefaultWorkers, cfg.WorkerCount())
	assert.Equal(t, DefaultTimeoutSeconds, int(cfg.Timeout().Seconds()))
	assert.Equal(t, "ion-test-driver-results.json", cfg.Results.File)
}

func TestLoadFromFileUnknownAlgorithm(t *testing.T) {
	path := writeConfig(t, `
[corpus]
root = "testdata/corpus"

[driver]
algorithms = ["md5", "crc32"]
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "crc32")
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfig))
}

func TestTimeoutFallback(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultTimeoutSeconds, int(cfg.Timeout().Seconds()))
	assert.Equal(t, DefaultWorkers, cfg.WorkerCount())
}

func TestReset(t *testing.T) {
	Reset()
	assert.Nil(t, globalConfig)
	assert.Nil(t, viperInstance)
}
