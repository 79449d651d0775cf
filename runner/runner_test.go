package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amazon-ion/ion-hash-test-driver/corpus"
	"github.com/amazon-ion/ion-hash-test-driver/registry"
)

func testFile(t *testing.T, lines string) corpus.TestFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tests.ion")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return corpus.TestFile{Path: path, Encoding: corpus.EncodingText}
}

func shellDescriptor(name, script string) registry.Descriptor {
	// The script still receives <algorithm> <file> as trailing args.
	return registry.Descriptor{
		Name:       name,
		Command:    []string{"sh", "-c", script, name},
		Algorithms: []string{"md5"},
	}
}

func TestRunSuccess(t *testing.T) {
	file := testFile(t, "1\n2\n")
	desc := shellDescriptor("fake", `printf '2a 2a f7\nde ad\n'`)

	r := New(10 * time.Second)
	outcome := r.Run(context.Background(), desc, file, "md5", 2)

	require.Equal(t, StatusSuccess, outcome.Status, "stderr: %s reason: %s", outcome.Stderr, outcome.Reason)
	require.Len(t, outcome.Digests, 2)
	assert.Equal(t, []byte{0x2a, 0x2a, 0xf7}, []byte(outcome.Digests[0]))
	assert.Equal(t, "fake", outcome.Implementation)
	assert.Equal(t, "md5", outcome.Algorithm)
	assert.True(t, outcome.OK())
}

func TestRunReceivesAlgorithmAndFile(t *testing.T) {
	file := testFile(t, "1\n")
	// Echo the CLI-protocol args back as the digest line only if they
	// arrived in the expected positions.
	desc := shellDescriptor("fake", `if [ "$1" = md5 ] && [ -f "$2" ]; then printf 'aa\n'; else exit 3; fi`)

	r := New(10 * time.Second)
	outcome := r.Run(context.Background(), desc, file, "md5", 1)

	assert.Equal(t, StatusSuccess, outcome.Status, "stderr: %s", outcome.Stderr)
}

func TestRunProcessError(t *testing.T) {
	file := testFile(t, "1\n")
	desc := shellDescriptor("broken", `echo boom >&2; exit 7`)

	r := New(10 * time.Second)
	outcome := r.Run(context.Background(), desc, file, "md5", 1)

	assert.Equal(t, StatusProcessError, outcome.Status)
	assert.Equal(t, 7, outcome.ExitCode)
	assert.Contains(t, outcome.Stderr, "boom")
	assert.Nil(t, outcome.Digests)
}

func TestRunStartFailure(t *testing.T) {
	file := testFile(t, "1\n")
	desc := registry.Descriptor{
		Name:       "absent",
		Command:    []string{"/nonexistent/binary"},
		Algorithms: []string{"md5"},
	}

	r := New(10 * time.Second)
	outcome := r.Run(context.Background(), desc, file, "md5", 1)

	assert.Equal(t, StatusProcessError, outcome.Status)
	assert.Equal(t, -1, outcome.ExitCode)
}

func TestRunParseErrorNotPartial(t *testing.T) {
	file := testFile(t, "1\n2\n")
	// Exit zero but only one of two digest lines.
	desc := shellDescriptor("short", `printf 'aa\n'`)

	r := New(10 * time.Second)
	outcome := r.Run(context.Background(), desc, file, "md5", 2)

	assert.Equal(t, StatusParseError, outcome.Status)
	assert.Contains(t, outcome.Reason, "expected 2 digest lines")
	assert.Nil(t, outcome.Digests)
}

func TestRunNonZeroExitTrumpsGoodStdout(t *testing.T) {
	file := testFile(t, "1\n")
	desc := shellDescriptor("liar", `printf 'aa\n'; exit 1`)

	r := New(10 * time.Second)
	outcome := r.Run(context.Background(), desc, file, "md5", 1)

	assert.Equal(t, StatusProcessError, outcome.Status)
	assert.Nil(t, outcome.Digests)
}

func TestRunTimeout(t *testing.T) {
	file := testFile(t, "1\n")
	desc := shellDescriptor("hang", `sleep 30`)

	r := New(200 * time.Millisecond)
	start := time.Now()
	outcome := r.Run(context.Background(), desc, file, "md5", 1)

	assert.Equal(t, StatusTimeout, outcome.Status)
	assert.Less(t, time.Since(start), 5*time.Second, "timeout must not wait for the child's natural exit")
}

func TestRunCancellation(t *testing.T) {
	file := testFile(t, "1\n")
	desc := shellDescriptor("hang", `sleep 30`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	r := New(time.Minute)
	outcome := r.Run(ctx, desc, file, "md5", 1)

	assert.Equal(t, StatusTimeout, outcome.Status)
	assert.Equal(t, "run cancelled", outcome.Reason)
}
