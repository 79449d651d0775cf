package report

import (
	"encoding/json"
	"os"

	"github.com/amazon-ion/ion-hash-test-driver/errors"
	"github.com/amazon-ion/ion-hash-test-driver/logger"
)

// WriteJSON writes the report to path as indented JSON for downstream
// tooling. Field order and group ordering are deterministic, so repeated
// runs over identical outcomes produce byte-identical files.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write results file %s", path)
	}

	logger.Infow("Results written", "path", path, "pairs", r.Summary.Pairs)
	return nil
}
