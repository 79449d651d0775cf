// Package runner executes one implementation against one test file for one
// algorithm and classifies the result. Each call owns its child process and
// captured buffers exclusively; calls share no mutable state and are safe
// to run concurrently.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"time"

	"github.com/amazon-ion/ion-hash-test-driver/corpus"
	"github.com/amazon-ion/ion-hash-test-driver/logger"
	"github.com/amazon-ion/ion-hash-test-driver/registry"
)

// Runner spawns implementation child processes with a bounded execution
// timeout. The zero value is not usable; construct with New.
type Runner struct {
	timeout time.Duration
}

// New creates a Runner with the given per-invocation timeout.
func New(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run invokes desc against file for algorithm and parses stdout into a
// digest sequence of exactly expectedValues entries.
//
// The caller is responsible for support filtering: Run assumes
// desc.Supports(algorithm) already holds. The child is placed in its own
// process group so the whole tree is killed on timeout or run
// cancellation; the process is always reaped before Run returns.
func (r *Runner) Run(ctx context.Context, desc registry.Descriptor, file corpus.TestFile, algorithm string, expectedValues int) Outcome {
	outcome := Outcome{
		Implementation: desc.Name,
		File:           file.Path,
		Algorithm:      algorithm,
	}

	argv := desc.Argv(algorithm, file.Path)
	logger.Debugw("Invoking implementation",
		"implementation", desc.Name,
		"algorithm", algorithm,
		"file", file.Path,
		"argv", argv)

	invocationCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		outcome.Status = StatusProcessError
		outcome.ExitCode = -1
		outcome.Stderr = err.Error()
		return outcome
	}

	// Wait in a goroutine so timeout and run-level cancellation can kill
	// the whole process group, not just the direct child.
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case <-invocationCtx.Done():
		syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		<-done // reap

		outcome.Status = StatusTimeout
		outcome.Reason = "exceeded " + r.timeout.String()
		if ctx.Err() != nil {
			// Run-level cancellation rather than a hung implementation.
			// The aggregator discards all outcomes on cancellation, but
			// classify honestly for logging.
			outcome.Reason = "run cancelled"
		}
		outcome.Stderr = stderr.String()
		return outcome
	case waitErr = <-done:
	}

	if waitErr != nil {
		outcome.Status = StatusProcessError
		outcome.ExitCode = -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			outcome.ExitCode = exitErr.ExitCode()
		}
		outcome.Stderr = stderr.String()
		return outcome
	}

	digests, err := parseDigests(stdout.String(), expectedValues)
	if err != nil {
		outcome.Status = StatusParseError
		outcome.Reason = err.Error()
		outcome.Stderr = stderr.String()
		return outcome
	}

	outcome.Status = StatusSuccess
	outcome.Digests = digests
	return outcome
}
