// Package corpus discovers test-data files and enumerates the ordered
// top-level values each file contains. It never interprets value content:
// the driver only needs to know how many digests to expect back from an
// implementation, and where each value's raw bytes sit in the file.
package corpus

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amazon-ion/ion-hash-test-driver/errors"
	"github.com/amazon-ion/ion-hash-test-driver/logger"
)

// Test file suffixes for the two serializations of the corpus data model.
const (
	SuffixText   = ".ion"
	SuffixBinary = ".10n"
)

// Encoding distinguishes the two serializations of a test file.
type Encoding int

const (
	EncodingText Encoding = iota
	EncodingBinary
)

func (e Encoding) String() string {
	if e == EncodingBinary {
		return "binary"
	}
	return "text"
}

// TestFile represents one discovered input artifact. Immutable once
// discovered.
type TestFile struct {
	// Path is the file location, relative to the discovery root's parent
	// working directory (it is handed verbatim to implementations).
	Path string

	// Encoding is derived from the file suffix.
	Encoding Encoding
}

// Discover walks root for test-data files, sorted by path. An unreadable
// root or a root with no recognizable artifacts is a fatal DiscoveryError:
// the run's inputs are undefined and no invocations happen.
func Discover(root string) ([]TestFile, error) {
	var files []TestFile

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case strings.HasSuffix(path, SuffixText):
			files = append(files, TestFile{Path: path, Encoding: EncodingText})
		case strings.HasSuffix(path, SuffixBinary):
			files = append(files, TestFile{Path: path, Encoding: EncodingBinary})
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewDiscoveryError("cannot read test data root %s: %v", root, err)
	}
	if len(files) == 0 {
		return nil, errors.WithHint(
			errors.NewDiscoveryError("no test files under %s", root),
			"test files must end in .ion (text) or .10n (binary)")
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	logger.Infow("Discovered test corpus", "root", root, "files", len(files))
	return files, nil
}
