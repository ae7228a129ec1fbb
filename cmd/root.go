package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-flowforge/internal/config"
	"github.com/deploymenttheory/go-flowforge/internal/engine"
	"github.com/deploymenttheory/go-flowforge/internal/logger"
	ferrors "github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/pkg/tooling"
)

var (
	cfgFile       string
	workflowsFile string
	pluginDirs    []string
	poolSize      int
)

// rootCmd represents the base CLI command
var rootCmd = &cobra.Command{
	Use:   "flowforge",
	Short: "Run rule-gated automation workflows",
	Long: `flowforge loads workflow definitions from config/workflows.json, checks
each workflow's rule against the host (disk, cpu, memory, files, time of day)
and runs its actions through builtin or plugin handlers.

Without a subcommand it starts the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		logFormat, _ := cmd.Flags().GetString("log-format")

		options := tooling.InitOptions{ConfigFile: cfgFile}
		if cmd.Flags().Changed("debug") {
			options.Debug = debug
		}
		if cmd.Flags().Changed("log-format") {
			options.LogFormat = logFormat
		}
		if err := tooling.Initialize(options); err != nil {
			return err
		}

		// CLI flags override config settings
		if workflowsFile != "" {
			config.Instance.Workflows.File = workflowsFile
		}
		if len(pluginDirs) > 0 {
			config.Instance.Plugins.SearchRoots = pluginDirs
		}
		if cmd.Flags().Changed("pool-size") {
			config.Instance.Engine.PoolSize = poolSize
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.LogError("Command execution failed", err, nil)
	}
	_ = tooling.Shutdown()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is flowforge.yaml in standard locations)")
	rootCmd.PersistentFlags().StringVarP(&workflowsFile, "workflows", "w", "", "workflow document (default is config/workflows.json)")
	rootCmd.PersistentFlags().StringSliceVar(&pluginDirs, "plugins-dir", nil, "directories searched for plugin files")
	rootCmd.PersistentFlags().IntVar(&poolSize, "pool-size", engine.DefaultPoolSize, "workflows run concurrently by run --all")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "human", "Log format: json or human")

	rootCmd.AddCommand(versionCmd)
}

// openEngine builds the engine and loads the workflow document. A missing
// document is fatal; a document that cannot be read leaves the engine empty.
func openEngine(cmd *cobra.Command) (*engine.Engine, error) {
	eng, err := tooling.NewEngine(&config.Instance, logger.Logger)
	if err != nil {
		return nil, err
	}
	path, err := tooling.LoadWorkflows(eng, &config.Instance)
	if errors.Is(err, ferrors.ErrConfigFileNotFound) {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("No workflow document found (tried config/workflows.json and parent directories)."))
		fmt.Fprintln(cmd.ErrOrStderr(), "Run from the repository root or pass --workflows.")
		return nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Using workflow document: %s\n", path)
	if err != nil {
		logger.LogError("Workflow document could not be loaded", err, map[string]interface{}{"path": path})
	}
	return eng, nil
}

// versionCmd shows the application version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "flowforge v%s\n", tooling.GetVersion())
	},
}
