package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amazon-ion/ion-hash-test-driver/aggregate"
	"github.com/amazon-ion/ion-hash-test-driver/config"
	"github.com/amazon-ion/ion-hash-test-driver/corpus"
	"github.com/amazon-ion/ion-hash-test-driver/errors"
	"github.com/amazon-ion/ion-hash-test-driver/logger"
	"github.com/amazon-ion/ion-hash-test-driver/registry"
	"github.com/amazon-ion/ion-hash-test-driver/report"
	"github.com/amazon-ion/ion-hash-test-driver/runner"
)

// RunCmd runs the consistency suite
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cross-implementation consistency suite",
	Long: `Run every registered implementation against every discovered test file
for every configured algorithm, then print the consistency report and
write it as JSON.

With --watch the driver stays resident and reruns the suite whenever
test data under the corpus root changes.`,
	RunE: runSuite,
}

func init() {
	RunCmd.Flags().StringP("output", "o", "", "Path for the JSON report (overrides results.file)")
	RunCmd.Flags().Int("workers", 0, "Worker pool size (overrides driver.workers)")
	RunCmd.Flags().Int("timeout", 0, "Per-invocation timeout in seconds (overrides driver.timeout_seconds)")
	RunCmd.Flags().StringSliceP("algorithm", "a", nil, "Algorithm to test, repeatable (overrides driver.algorithms)")
	RunCmd.Flags().Bool("watch", false, "Stay resident and rerun when the corpus changes")
	RunCmd.Flags().Bool("strict", true, "Exit non-zero when any pair is inconsistent")
}

func runSuite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOverrides(cmd, cfg); err != nil {
		return err
	}

	descs, err := registry.Load(cfg)
	if err != nil {
		return err
	}

	files, err := corpus.Discover(cfg.Corpus.Root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := aggregate.New(cfg, runner.New(cfg.Timeout()))

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = cfg.Results.File
	}

	rep, err := executeSuite(ctx, pool, descs, files, outputPath)
	if err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		return watchCorpus(ctx, cfg, pool, descs, outputPath)
	}

	strict, _ := cmd.Flags().GetBool("strict")
	if strict && !rep.Consistent() {
		return errors.Newf("strict mode: %d inconsistent pairs", len(rep.InconsistentPairs()))
	}
	return nil
}

// executeSuite runs one full pass: aggregate, render, persist.
func executeSuite(ctx context.Context, pool *aggregate.Pool, descs []registry.Descriptor, files []corpus.TestFile, outputPath string) (*report.Report, error) {
	rep, err := pool.Aggregate(ctx, descs, files)
	if err != nil {
		return nil, err
	}

	rep.Render()

	if err := rep.WriteJSON(outputPath); err != nil {
		return nil, err
	}
	return rep, nil
}

// watchCorpus blocks until interrupted, rerunning the suite whenever test
// data changes. Strict mode does not apply while watching; inconsistencies
// are reported and the watcher keeps going.
func watchCorpus(ctx context.Context, cfg *config.Config, pool *aggregate.Pool, descs []registry.Descriptor, outputPath string) error {
	watcher, err := corpus.NewWatcher(cfg.Corpus.Root)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	watcher.OnChange(func(files []corpus.TestFile) error {
		_, err := executeSuite(ctx, pool, descs, files, outputPath)
		if errors.Is(err, errors.ErrRunCancelled) {
			return nil // shutting down
		}
		return err
	})
	watcher.Start()

	logger.Infow("Watching corpus for changes",
		"root", cfg.Corpus.Root)
	<-ctx.Done()

	logger.Info("Watch mode stopped")
	return nil
}

// loadConfig resolves the --config flag against the default search path.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// applyOverrides folds command-line overrides into the loaded config.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Driver.Workers = workers
	}
	if timeout, _ := cmd.Flags().GetInt("timeout"); timeout > 0 {
		cfg.Driver.TimeoutSeconds = timeout
	}

	algorithms, _ := cmd.Flags().GetStringSlice("algorithm")
	if len(algorithms) > 0 {
		for _, algorithm := range algorithms {
			if !config.IsKnownAlgorithm(algorithm) {
				return errors.Wrapf(errors.ErrConfig, "unknown algorithm %q (known: %v)",
					algorithm, config.KnownAlgorithms)
			}
		}
		cfg.Driver.Algorithms = algorithms
	}
	return nil
}
