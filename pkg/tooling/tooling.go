// Package tooling embeds the FlowForge engine: it loads configuration,
// builds the plugin resolver and runner, and locates the workflow document.
package tooling

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/actions"
	"github.com/deploymenttheory/go-flowforge/internal/config"
	"github.com/deploymenttheory/go-flowforge/internal/engine"
	"github.com/deploymenttheory/go-flowforge/internal/logger"
	"github.com/deploymenttheory/go-flowforge/internal/plugin"
	"github.com/deploymenttheory/go-flowforge/internal/rule"
	"github.com/deploymenttheory/go-flowforge/internal/workflow"
)

// Version is the release version, set at build time with -ldflags
var Version = "0.1.0"

// InitOptions contains options for initializing the tooling API
type InitOptions struct {
	ConfigFile  string // Path to configuration file
	Debug       bool   // Enable debug logging
	LogFormat   string // Log format: "human" or "json"
	LogFile     string // Path to log file
	SuppressLog bool   // Suppress all logging
}

var initialized bool

// Initialize loads configuration into config.Instance and installs the
// process logger. Later calls are no-ops.
func Initialize(options InitOptions) error {
	if initialized {
		return nil
	}

	configErr := config.Initialize(options.ConfigFile)

	if options.Debug {
		config.Instance.Debug = true
	}
	if options.LogFormat != "" {
		config.Instance.LogFormat = options.LogFormat
	}
	if options.LogFile != "" {
		config.Instance.LogFile = options.LogFile
	}

	if !options.SuppressLog {
		logConfig := logger.LoggerConfig{
			Debug:     config.Instance.Debug,
			LogFormat: config.Instance.LogFormat,
			LogFile:   config.Instance.LogFile,
		}
		if err := logger.InitLogger(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.LogDebug("Tooling API initialized", map[string]interface{}{
			"config_file": config.ConfigFile,
			"debug":       config.Instance.Debug,
			"log_format":  config.Instance.LogFormat,
		})
		if configErr != nil {
			logger.LogWarn("Configuration initialization warning", map[string]interface{}{
				"error": configErr.Error(),
			})
		}
	}

	initialized = true
	return nil
}

// ActionSettings maps configuration onto the builtin action settings
func ActionSettings(cfg *config.AppConfig) actions.Settings {
	a := cfg.Actions
	return actions.Settings{
		BackupDir: a.BackupDir,
		UploadDir: a.UploadDir,
		SMTP: actions.SMTPSettings{
			Host:     a.SMTP.Host,
			Port:     a.SMTP.Port,
			Username: a.SMTP.Username,
			Password: a.SMTP.Password,
			From:     a.SMTP.From,
		},
		Twilio: actions.TwilioSettings{
			AccountSID: a.Twilio.AccountSID,
			AuthToken:  a.Twilio.AuthToken,
			From:       a.Twilio.From,
			BaseURL:    a.Twilio.BaseURL,
		},
		VirusTotal: actions.VirusTotalSettings{
			APIKey:          a.VirusTotal.APIKey,
			PollingInterval: a.VirusTotal.PollingInterval,
			PollingTimeout:  a.VirusTotal.PollingTimeout,
		},
	}
}

// NewResolver builds the plugin resolver: builtin actions, the optional
// manifest, then the configured search roots
func NewResolver(cfg *config.AppConfig, log *zap.SugaredLogger) (*plugin.Resolver, error) {
	registry := plugin.NewRegistry()
	if err := actions.Register(registry, ActionSettings(cfg), log); err != nil {
		return nil, err
	}

	opts := []plugin.Option{plugin.WithSearchRoots(cfg.Plugins.SearchRoots...)}
	if cfg.Plugins.Manifest != "" {
		manifest, err := plugin.LoadManifest(cfg.Plugins.Manifest)
		if err != nil {
			return nil, err
		}
		opts = append(opts, plugin.WithManifest(manifest))
	}
	return plugin.NewResolver(registry, opts...), nil
}

// NewEngine assembles an empty engine from configuration
func NewEngine(cfg *config.AppConfig, log *zap.SugaredLogger) (*engine.Engine, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	resolver, err := NewResolver(cfg, log)
	if err != nil {
		return nil, err
	}
	runner := workflow.NewRunner(rule.NewEvaluator(), resolver, log)
	return engine.New(runner, log, engine.WithPoolSize(cfg.Engine.PoolSize)), nil
}

// LoadWorkflows locates the workflow document named by configuration, or
// the first default location that exists, and loads it into eng. It returns
// the document path used.
func LoadWorkflows(eng *engine.Engine, cfg *config.AppConfig) (string, error) {
	candidates := cfg.Workflows.SearchPaths
	if len(candidates) == 0 {
		candidates = engine.DefaultDocumentPaths
	}
	path, err := engine.FindDocument(cfg.Workflows.File, candidates)
	if err != nil {
		return "", err
	}
	if _, err := eng.LoadFile(path); err != nil {
		return path, err
	}
	return path, nil
}

// Open initializes the API with default options and returns an engine
// loaded from the configured workflow document
func Open(options InitOptions) (*engine.Engine, error) {
	if err := Initialize(options); err != nil {
		return nil, err
	}
	eng, err := NewEngine(&config.Instance, logger.Logger)
	if err != nil {
		return nil, err
	}
	if _, err := LoadWorkflows(eng, &config.Instance); err != nil {
		return nil, err
	}
	return eng, nil
}

// RunWorkflow opens the engine and runs one workflow by name
func RunWorkflow(options InitOptions, name string) error {
	eng, err := Open(options)
	if err != nil {
		return err
	}
	return eng.RunByName(name)
}

// GetVersion returns the current version of the tooling API
func GetVersion() string {
	return Version
}

// Shutdown flushes the process logger
func Shutdown() error {
	if initialized {
		logger.LogDebug("Tooling API shutting down", nil)
		_ = logger.Sync()
	}
	return nil
}
