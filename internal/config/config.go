package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/osutil"
)

const (
	// AppName is the application name used for config files and directories
	AppName = "flowforge"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "FLOWFORGE"

	// LogDirEnv overrides the directory of the default log file
	LogDirEnv = "FLOWFORGE_LOG_DIR"
)

// AppConfig holds the application configuration
type AppConfig struct {
	// Core settings
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// Workflow document location
	Workflows struct {
		File        string   `mapstructure:"file"`
		SearchPaths []string `mapstructure:"search_paths"`
	} `mapstructure:"workflows"`

	// Execution settings
	Engine struct {
		PoolSize int `mapstructure:"pool_size"`
	} `mapstructure:"engine"`

	// Plugin discovery
	Plugins struct {
		Manifest    string   `mapstructure:"manifest"`
		SearchRoots []string `mapstructure:"search_roots"`
	} `mapstructure:"plugins"`

	// Builtin action settings
	Actions struct {
		BackupDir string `mapstructure:"backup_dir"`
		UploadDir string `mapstructure:"upload_dir"`

		SMTP struct {
			Host     string `mapstructure:"host"`
			Port     int    `mapstructure:"port"`
			Username string `mapstructure:"username"`
			Password string `mapstructure:"password"`
			From     string `mapstructure:"from"`
		} `mapstructure:"smtp"`

		Twilio struct {
			AccountSID string `mapstructure:"account_sid"`
			AuthToken  string `mapstructure:"auth_token"`
			From       string `mapstructure:"from"`
			BaseURL    string `mapstructure:"base_url"`
		} `mapstructure:"twilio"`

		VirusTotal struct {
			APIKey          string        `mapstructure:"api_key"`
			PollingInterval time.Duration `mapstructure:"polling_interval"`
			PollingTimeout  time.Duration `mapstructure:"polling_timeout"`
		} `mapstructure:"virustotal"`
	} `mapstructure:"actions"`
}

// Global variables
var (
	// Global configuration instance
	Instance AppConfig

	// Status indicators
	ConfigLoaded bool
	ConfigFile   string

	// Ensure thread safety
	initOnce sync.Once
)

// legacyEnv maps settings to the bare environment variables older
// deployments export
var legacyEnv = map[string]string{
	"actions.smtp.username":      "SMTP_USER",
	"actions.smtp.password":      "SMTP_PASS",
	"actions.twilio.account_sid": "TWILIO_SID",
	"actions.twilio.auth_token":  "TWILIO_TOKEN",
	"actions.twilio.from":        "TWILIO_FROM",
	"actions.virustotal.api_key": "VT_API_KEY",
}

// Initialize loads the process configuration into Instance once and makes
// sure the working directories exist
func Initialize(cfgFile string) error {
	var err error

	initOnce.Do(func() {
		var cfg *AppConfig
		var used string
		cfg, used, err = load(cfgFile)
		if cfg == nil {
			return
		}
		Instance = *cfg
		ConfigLoaded = used != ""
		ConfigFile = used

		if dirErr := EnsureDirectories(&Instance); dirErr != nil && err == nil {
			err = dirErr
		}
	})

	return err
}

// Load reads configuration without touching the global Instance. An empty
// cfgFile searches the standard locations; finding nothing is not an error.
func Load(cfgFile string) (*AppConfig, error) {
	cfg, _, err := load(cfgFile)
	return cfg, err
}

func load(cfgFile string) (*AppConfig, string, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		_ = v.BindEnv(key, prefixed, env)
	}

	var readErr error
	used := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			readErr = fmt.Errorf("%w: %v", errors.ErrConfigParseError, err)
			if cfgFile != "" && !fsutil.FileExists(cfgFile) {
				readErr = fmt.Errorf("%w: %s", errors.ErrConfigFileNotFound, cfgFile)
			}
		}
	} else {
		used = v.ConfigFileUsed()
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("%w: %v", errors.ErrConfigParseError, err)
	}
	return cfg, used, readErr
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Core settings
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "human")
	v.SetDefault("log_file", filepath.Join(fsutil.GetLogDir(LogDirEnv), "engine.log"))

	// Workflows
	v.SetDefault("workflows.file", "")

	// Engine
	v.SetDefault("engine.pool_size", 4)

	// Plugins
	v.SetDefault("plugins.manifest", "plugins/plugins.yaml")
	v.SetDefault("plugins.search_roots", []string{"plugins", "./plugins", "../plugins"})

	// Actions
	v.SetDefault("actions.backup_dir", "data/backups")
	v.SetDefault("actions.upload_dir", "data/uploads")
	v.SetDefault("actions.smtp.host", "smtp.gmail.com")
	v.SetDefault("actions.smtp.port", 587)
	v.SetDefault("actions.twilio.base_url", "https://api.twilio.com/2010-04-01")
	v.SetDefault("actions.virustotal.polling_interval", 15*time.Second)
	v.SetDefault("actions.virustotal.polling_timeout", 10*time.Minute)
}

// addSearchPaths adds config search paths
func addSearchPaths(v *viper.Viper) {
	// Always check current directory first
	v.AddConfigPath(".")
	v.AddConfigPath("config")

	// In dev mode, only use current directory and the local config directory
	if osutil.IsDevEnvironment() {
		return
	}

	// In CI/Pipeline, only use current directory and the system directory
	if osutil.IsRunningInPipeline() {
		v.AddConfigPath("/etc/" + AppName)
		return
	}

	// Standard operation - add user config directory
	if configDir, err := fsutil.GetConfigDir(AppName); err == nil {
		v.AddConfigPath(configDir)
	}

	// Add system-wide config directory
	if systemConfigDir, err := fsutil.GetSystemConfigDir(AppName); err == nil {
		v.AddConfigPath(systemConfigDir)
	}
}

// EnsureDirectories creates the backup, upload and log directories
func EnsureDirectories(cfg *AppConfig) error {
	dirs := []string{cfg.Actions.BackupDir, cfg.Actions.UploadDir}
	if cfg.LogFile != "" {
		dirs = append(dirs, filepath.Dir(cfg.LogFile))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := fsutil.CreateDirIfNotExists(fsutil.ExpandAndNormalizePath(dir)); err != nil {
			return fmt.Errorf("%w: %s: %v", errors.ErrFileWriteError, dir, err)
		}
	}
	return nil
}

// SaveConfig writes cfg to filePath in the format implied by its extension.
// Credentials are left out.
func SaveConfig(cfg *AppConfig, filePath string) error {
	saveV := viper.New()
	saveV.SetConfigFile(filePath)

	for k, val := range structToMap(cfg) {
		saveV.Set(k, val)
	}

	if err := fsutil.CreateDirIfNotExists(filepath.Dir(filePath)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return saveV.WriteConfig()
}

// structToMap flattens the config into the nested map viper writes
func structToMap(cfg *AppConfig) map[string]interface{} {
	return map[string]interface{}{
		"debug":      cfg.Debug,
		"log_format": cfg.LogFormat,
		"log_file":   cfg.LogFile,
		"workflows": map[string]interface{}{
			"file":         cfg.Workflows.File,
			"search_paths": cfg.Workflows.SearchPaths,
		},
		"engine": map[string]interface{}{
			"pool_size": cfg.Engine.PoolSize,
		},
		"plugins": map[string]interface{}{
			"manifest":     cfg.Plugins.Manifest,
			"search_roots": cfg.Plugins.SearchRoots,
		},
		"actions": map[string]interface{}{
			"backup_dir": cfg.Actions.BackupDir,
			"upload_dir": cfg.Actions.UploadDir,
			"smtp": map[string]interface{}{
				"host": cfg.Actions.SMTP.Host,
				"port": cfg.Actions.SMTP.Port,
				"from": cfg.Actions.SMTP.From,
			},
			"twilio": map[string]interface{}{
				"from":     cfg.Actions.Twilio.From,
				"base_url": cfg.Actions.Twilio.BaseURL,
			},
			"virustotal": map[string]interface{}{
				"polling_interval": cfg.Actions.VirusTotal.PollingInterval.String(),
				"polling_timeout":  cfg.Actions.VirusTotal.PollingTimeout.String(),
			},
		},
	}
}
