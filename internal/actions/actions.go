// Package actions contains the builtin action handlers linked into the
// engine: archiving, downloads, checksums, malware scans, email and SMS.
package actions

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/plugin"
)

// Settings carries the configuration every builtin action may need
type Settings struct {
	BackupDir  string
	UploadDir  string
	SMTP       SMTPSettings
	Twilio     TwilioSettings
	VirusTotal VirusTotalSettings
}

// SMTPSettings configures the Email action
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// TwilioSettings configures the Message action
type TwilioSettings struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
}

// VirusTotalSettings configures the Scan action
type VirusTotalSettings struct {
	APIKey          string
	PollingInterval time.Duration
	PollingTimeout  time.Duration
}

// Register installs every builtin action into reg. Each type gets a factory
// that builds a new handler per step.
func Register(reg *plugin.Registry, settings Settings, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	compress := func() (plugin.Action, error) {
		return &Compress{BackupDir: settings.BackupDir, log: log.With("action", "Compress")}, nil
	}
	email := func() (plugin.Action, error) {
		return NewEmail(settings.SMTP, log.With("action", "Email")), nil
	}
	message := func() (plugin.Action, error) {
		return NewMessage(settings.Twilio, log.With("action", "Message")), nil
	}
	checksum := func() (plugin.Action, error) {
		return &Checksum{log: log.With("action", "Checksum")}, nil
	}
	download := func() (plugin.Action, error) {
		return NewDownload(settings.UploadDir, log.With("action", "Download")), nil
	}
	scan := func() (plugin.Action, error) {
		return &Scan{Settings: settings.VirusTotal, log: log.With("action", "Scan")}, nil
	}

	builtins := []struct {
		names   []string
		factory plugin.Factory
	}{
		{[]string{"Compress", "CompressAction"}, compress},
		{[]string{"Email", "EmailPlugin"}, email},
		{[]string{"Message", "MessagePlugin"}, message},
		{[]string{"Checksum"}, checksum},
		{[]string{"Download"}, download},
		{[]string{"Scan"}, scan},
	}
	for _, b := range builtins {
		for _, name := range b.names {
			if err := reg.Register(name, b.factory); err != nil {
				return err
			}
		}
	}
	return nil
}

// isJSONObject reports whether params looks like a JSON object rather than
// a bare value such as a path
func isJSONObject(params string) bool {
	return strings.HasPrefix(strings.TrimSpace(params), "{")
}

// sleepMinutes waits for a scheduled delivery delay
var sleepMinutes = func(minutes int) {
	if minutes > 0 {
		time.Sleep(time.Duration(minutes) * time.Minute)
	}
}
