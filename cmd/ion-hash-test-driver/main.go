package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amazon-ion/ion-hash-test-driver/cmd/ion-hash-test-driver/commands"
	"github.com/amazon-ion/ion-hash-test-driver/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ion-hash-test-driver",
	Short: "Cross-implementation Ion hash consistency driver",
	Long: `ion-hash-test-driver runs multiple Ion hash implementations against a
shared corpus of test data and reports where their digests disagree.

Each implementation is an external executable speaking a fixed protocol:
it is invoked with an algorithm name and a test file, and prints one line
of hex digest tokens per top-level value. The driver fans the full
(implementation, file, algorithm) cross product out over a worker pool
and groups implementations by the exact digest sequences they produce.

Available commands:
  run     - Run the consistency suite and write the report
  list    - List registered implementations
  version - Show version information

Examples:
  ion-hash-test-driver run                      # Run with driver.toml config
  ion-hash-test-driver run -a md5 -a sha256     # Override algorithms
  ion-hash-test-driver run --watch              # Rerun on corpus changes
  ion-hash-test-driver list                     # Show registered implementations`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Emit structured JSON logs instead of console output")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a driver config file (default: driver.toml)")

	rootCmd.AddCommand(commands.RunCmd)
	rootCmd.AddCommand(commands.ListCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
