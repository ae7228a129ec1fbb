package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-flowforge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or export the effective configuration",
}

// configWriteCmd saves the merged configuration so it can be edited
var configWriteCmd = &cobra.Command{
	Use:     "write <path>",
	Short:   "Write the effective configuration to a file",
	Example: "  flowforge config write ~/.config/flowforge/flowforge.yaml",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveConfig(&config.Instance, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", args[0])
		return nil
	},
}

// configShowCmd prints where settings came from
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration file in use and key settings",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		source := config.ConfigFile
		if source == "" {
			source = "(defaults and environment)"
		}
		fmt.Fprintf(out, "config file:      %s\n", source)
		fmt.Fprintf(out, "workflows file:   %s\n", config.Instance.Workflows.File)
		fmt.Fprintf(out, "pool size:        %d\n", config.Instance.Engine.PoolSize)
		fmt.Fprintf(out, "plugin manifest:  %s\n", config.Instance.Plugins.Manifest)
		fmt.Fprintf(out, "plugin roots:     %v\n", config.Instance.Plugins.SearchRoots)
		fmt.Fprintf(out, "backup dir:       %s\n", config.Instance.Actions.BackupDir)
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
