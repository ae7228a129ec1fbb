package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-flowforge/internal/logger"
)

var runAll bool

// runCmd runs one workflow by name, or every workflow with --all
var runCmd = &cobra.Command{
	Use:     "run <workflow>",
	Aliases: []string{"r"},
	Short:   "Run a workflow by name",
	Example: `  flowforge run nightly-backup
  flowforge r nightly-backup
  flowforge run --all`,
	Args: func(cmd *cobra.Command, args []string) error {
		if runAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine(cmd)
		if err != nil {
			return err
		}

		if runAll {
			fmt.Fprintf(cmd.OutOrStdout(), "Running %d workflows (pool size %d)\n", len(eng.Names()), eng.PoolSize())
			eng.RunAll()
			logger.LogInfo("Engine exited after running all workflows", nil)
			return nil
		}

		name := args[0]
		fmt.Fprintf(cmd.OutOrStdout(), "Running workflow: %s\n", name)
		if err := eng.RunByName(name); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(fmt.Sprintf("Workflow '%s' not found.", name)))
			return err
		}
		logger.LogInfo("Engine exited after running workflow", map[string]interface{}{"workflow": name})
		return nil
	},
}

// listCmd prints the loaded workflows and, with --plugins, the action types
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printWorkflows(out, eng.Names())

		showPlugins, _ := cmd.Flags().GetBool("plugins")
		if showPlugins {
			return printActionTypes(out)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runAll, "all", false, "run every workflow concurrently")
	listCmd.Flags().Bool("plugins", false, "also list known action types and plugin search roots")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
}
