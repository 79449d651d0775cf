// Package aggregate schedules the full cross product of implementation
// invocations over a bounded worker pool and folds the outcomes into a
// consistency report. The work set is fixed up front; results are collected
// in completion order and the final report ordering is deterministic
// regardless of scheduling.
package aggregate

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/amazon-ion/ion-hash-test-driver/config"
	"github.com/amazon-ion/ion-hash-test-driver/corpus"
	"github.com/amazon-ion/ion-hash-test-driver/errors"
	"github.com/amazon-ion/ion-hash-test-driver/logger"
	"github.com/amazon-ion/ion-hash-test-driver/registry"
	"github.com/amazon-ion/ion-hash-test-driver/report"
	"github.com/amazon-ion/ion-hash-test-driver/runner"
)

// Invoker runs one implementation against one test file for one algorithm.
// Satisfied by *runner.Runner; tests substitute a fake.
type Invoker interface {
	Run(ctx context.Context, desc registry.Descriptor, file corpus.TestFile, algorithm string, expectedValues int) runner.Outcome
}

// Pool fans (implementation, file, algorithm) triples out to a bounded set
// of workers and aggregates their outcomes.
type Pool struct {
	cfg     *config.Config
	invoker Invoker
	limiter *rate.Limiter // nil = unlimited spawn rate
}

// New creates a Pool from the run configuration.
func New(cfg *config.Config, invoker Invoker) *Pool {
	var limiter *rate.Limiter
	if cfg.Driver.SpawnPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Driver.SpawnPerSecond), 1)
	}
	return &Pool{cfg: cfg, invoker: invoker, limiter: limiter}
}

// invocation is one scheduled Runner call.
type invocation struct {
	desc      registry.Descriptor
	file      corpus.TestFile
	algorithm string
	expected  int
}

// pairKey identifies one (file, algorithm) comparison unit.
type pairKey struct {
	file      string
	algorithm string
}

// Aggregate runs every scheduled invocation and assembles the report.
//
// Either all scheduled invocations complete (successfully or not) and a
// Report is produced, or the context is cancelled and no Report is emitted.
func (p *Pool) Aggregate(ctx context.Context, descs []registry.Descriptor, files []corpus.TestFile) (*report.Report, error) {
	// Enumerate top-level values once per file; the count is the digest
	// line count every invocation against that file must satisfy.
	valueCounts := make(map[string]int, len(files))
	for _, file := range files {
		spans, err := file.Values()
		if err != nil {
			return nil, err
		}
		valueCounts[file.Path] = len(spans)
	}

	warnResourcePressure(p.cfg.WorkerCount())

	invocations := p.schedule(descs, files, valueCounts)
	logger.Infow("Scheduling invocations",
		"invocations", len(invocations),
		"workers", p.cfg.WorkerCount(),
		"implementations", len(descs),
		"files", len(files),
		"algorithms", p.cfg.Driver.Algorithms)

	outcomes, err := p.runAll(ctx, invocations)
	if err != nil {
		return nil, err
	}

	return p.assemble(descs, files, valueCounts, outcomes), nil
}

// schedule builds the fixed work set: files x algorithms x implementations,
// filtered by algorithm support. The Runner never sees an unsupported
// algorithm.
func (p *Pool) schedule(descs []registry.Descriptor, files []corpus.TestFile, valueCounts map[string]int) []invocation {
	var invocations []invocation
	for _, file := range files {
		for _, algorithm := range p.cfg.Driver.Algorithms {
			for _, desc := range descs {
				if !desc.Supports(algorithm) {
					continue
				}
				invocations = append(invocations, invocation{
					desc:      desc,
					file:      file,
					algorithm: algorithm,
					expected:  valueCounts[file.Path],
				})
			}
		}
	}
	return invocations
}

// runAll executes the work set over the worker pool. Completion order is
// irrelevant; cancellation stops the feed, lets in-flight invocations be
// terminated, and suppresses the report entirely.
func (p *Pool) runAll(ctx context.Context, invocations []invocation) ([]runner.Outcome, error) {
	work := make(chan invocation)
	results := make(chan runner.Outcome, len(invocations))

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.WorkerCount(); i++ {
		wg.Add(1)
		go p.worker(ctx, work, results, &wg)
	}

	go func() {
		defer close(work)
		for _, inv := range invocations {
			select {
			case <-ctx.Done():
				return
			case work <- inv:
			}
		}
	}()

	wg.Wait()
	close(results)

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrRunCancelled, err.Error())
	}

	outcomes := make([]runner.Outcome, 0, len(invocations))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (p *Pool) worker(ctx context.Context, work <-chan invocation, results chan<- runner.Outcome, wg *sync.WaitGroup) {
	defer wg.Done()
	for inv := range work {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return // cancelled while throttled
			}
		}
		results <- p.invoker.Run(ctx, inv.desc, inv.file, inv.algorithm, inv.expected)
	}
}

// assemble folds outcomes into the report. Pairs are ordered by file path
// then algorithm; group membership and group order follow ascending
// implementation names, so the report is byte-identical across runs.
func (p *Pool) assemble(descs []registry.Descriptor, files []corpus.TestFile, valueCounts map[string]int, outcomes []runner.Outcome) *report.Report {
	byPair := make(map[pairKey]map[string]runner.Outcome)
	for _, outcome := range outcomes {
		key := pairKey{file: outcome.File, algorithm: outcome.Algorithm}
		if byPair[key] == nil {
			byPair[key] = make(map[string]runner.Outcome)
		}
		byPair[key][outcome.Implementation] = outcome
	}

	algorithms := append([]string(nil), p.cfg.Driver.Algorithms...)
	sort.Strings(algorithms)

	rep := &report.Report{}
	rep.Summary.Files = len(files)
	rep.Summary.Invocations = len(outcomes)

	for _, file := range files {
		for _, algorithm := range algorithms {
			pair := p.assemblePair(descs, file, algorithm, valueCounts[file.Path],
				byPair[pairKey{file: file.Path, algorithm: algorithm}])
			rep.Pairs = append(rep.Pairs, pair)

			rep.Summary.Pairs++
			if pair.Inconsistent {
				rep.Summary.Inconsistent++
			} else {
				rep.Summary.Consistent++
			}
			rep.Summary.Errors += len(pair.Errors)
		}
	}
	return rep
}

func (p *Pool) assemblePair(descs []registry.Descriptor, file corpus.TestFile, algorithm string, values int, outcomes map[string]runner.Outcome) report.PairResult {
	pair := report.PairResult{
		File:      file.Path,
		Encoding:  file.Encoding.String(),
		Algorithm: algorithm,
		Values:    values,
	}

	// descs arrive sorted by name, so candidates are ascending and groups
	// come out ordered by their lexically smallest member.
	groupIndex := make(map[string]int)
	for _, desc := range descs {
		if !desc.Supports(algorithm) {
			continue
		}
		pair.Candidates = append(pair.Candidates, desc.Name)

		outcome, ok := outcomes[desc.Name]
		if !ok {
			// Scheduled but never ran; only possible on cancellation,
			// which suppresses assembly entirely.
			continue
		}

		if outcome.OK() {
			fingerprint := outcome.Digests.Fingerprint()
			idx, exists := groupIndex[fingerprint]
			if !exists {
				idx = len(pair.Groups)
				groupIndex[fingerprint] = idx
				pair.Groups = append(pair.Groups, report.ConsistencyGroup{Fingerprint: fingerprint})
			}
			pair.Groups[idx].Implementations = append(pair.Groups[idx].Implementations, desc.Name)
			continue
		}

		if pair.Errors == nil {
			pair.Errors = make(map[string]report.InvocationError)
		}
		pair.Errors[desc.Name] = report.InvocationError{
			Kind:     outcome.Status.String(),
			ExitCode: outcome.ExitCode,
			Stderr:   outcome.Stderr,
			Reason:   outcome.Reason,
		}
	}

	// Exactly one group means agreement. Anything else is reportable:
	// disagreement, total failure, or an algorithm nobody supports.
	pair.Inconsistent = len(pair.Groups) != 1
	return pair
}
