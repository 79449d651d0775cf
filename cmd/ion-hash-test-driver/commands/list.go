package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/amazon-ion/ion-hash-test-driver/registry"
)

// ListCmd lists the registered implementations
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered implementations",
	Long: `List every implementation the driver would invoke: inline entries from
the config file plus TOML descriptors discovered in the registry
directory, with the command template and supported algorithms of each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		descs, err := registry.Load(cfg)
		if err != nil {
			return err
		}

		rows := pterm.TableData{{"NAME", "COMMAND", "ALGORITHMS"}}
		for _, desc := range descs {
			rows = append(rows, []string{
				desc.Name,
				strings.Join(desc.Command, " "),
				strings.Join(desc.Algorithms, ", "),
			})
		}

		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		pterm.Info.Printfln("%d implementations registered", len(descs))
		return nil
	},
}
