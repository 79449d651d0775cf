// Package report defines the result data structure of one driver run. The
// Report is assembled once by the aggregator, is immutable afterwards, and
// carries no behavior beyond construction and read access; rendering lives
// in separate files so the model stays a pure data product.
package report

import "sort"

// ConsistencyGroup collects the implementations that produced one exact
// digest sequence for a (file, algorithm) pair.
type ConsistencyGroup struct {
	// Fingerprint is the canonical key of the digest sequence: one
	// hex-encoded digest per line, in file order. Structural equality of
	// sequences is equality of fingerprints.
	Fingerprint string `json:"fingerprint"`

	// Implementations are the member names, ascending.
	Implementations []string `json:"implementations"`
}

// InvocationError describes one non-Success outcome.
type InvocationError struct {
	Kind     string `json:"kind"` // process_error | parse_error | timeout
	ExitCode int    `json:"exit_code,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// PairResult is the comparison result for one (file, algorithm) pair.
type PairResult struct {
	File      string `json:"file"`
	Encoding  string `json:"encoding"`
	Algorithm string `json:"algorithm"`

	// Values is the number of top-level values in the file, i.e. the
	// digest count every implementation had to produce.
	Values int `json:"values"`

	// Candidates are the implementations supporting the algorithm,
	// ascending. Implementations outside this set were never invoked.
	Candidates []string `json:"candidates"`

	// Groups partition the successful candidates by digest sequence.
	// Groups are ordered by their lexically smallest member so reports are
	// byte-identical across runs regardless of completion order.
	Groups []ConsistencyGroup `json:"groups"`

	// Errors maps implementation name to failure detail for every
	// candidate that did not produce a Success outcome.
	Errors map[string]InvocationError `json:"errors,omitempty"`

	// Inconsistent is set when more than one group exists, when every
	// candidate failed, or when no implementation supported the algorithm
	// at all.
	Inconsistent bool `json:"inconsistent"`
}

// Summary aggregates counters over all pairs.
type Summary struct {
	Files        int `json:"files"`
	Pairs        int `json:"pairs"`
	Consistent   int `json:"consistent"`
	Inconsistent int `json:"inconsistent"`
	Invocations  int `json:"invocations"`
	Errors       int `json:"errors"`
}

// Report is the top-level result of one run. Pairs are ordered by file
// path, then algorithm.
type Report struct {
	Pairs   []PairResult `json:"pairs"`
	Summary Summary      `json:"summary"`
}

// InconsistentPairs lists every pair flagged inconsistent, in report
// order. Recomputed on each call by a single pass; the Report is immutable
// so there is nothing to cache.
func (r *Report) InconsistentPairs() []PairResult {
	var pairs []PairResult
	for _, pair := range r.Pairs {
		if pair.Inconsistent {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// ImplementationsWithErrors lists every implementation that produced at
// least one error across the run, ascending. Single pass, recomputed.
func (r *Report) ImplementationsWithErrors() []string {
	seen := make(map[string]bool)
	for _, pair := range r.Pairs {
		for name := range pair.Errors {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Consistent reports whether the whole run is free of inconsistent pairs.
func (r *Report) Consistent() bool {
	return r.Summary.Inconsistent == 0
}
