package actions

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/jsonutil"
)

// Email defaults
const (
	DefaultSMTPHost     = "smtp.gmail.com"
	DefaultSMTPPort     = 587
	DefaultEmailSubject = "Message from FlowForge"
)

// EmailParams are the JSON parameters of the Email action. Delay is in
// minutes.
type EmailParams struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	Delay     int    `json:"delay"`
}

// sendMailFunc matches smtp.SendMail
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email sends a plain-text message over SMTP with STARTTLS
type Email struct {
	settings SMTPSettings
	send     sendMailFunc
	log      *zap.SugaredLogger
}

// NewEmail creates an Email action, filling in the default relay
func NewEmail(settings SMTPSettings, log *zap.SugaredLogger) *Email {
	if settings.Host == "" {
		settings.Host = DefaultSMTPHost
	}
	if settings.Port == 0 {
		settings.Port = DefaultSMTPPort
	}
	if settings.From == "" {
		settings.From = settings.Username
	}
	return &Email{settings: settings, send: smtp.SendMail, log: log}
}

// Execute sends the message described by params after its delay
func (e *Email) Execute(params string) error {
	var p EmailParams
	if err := jsonutil.Unmarshal(params, &p); err != nil {
		return err
	}
	if p.Recipient == "" || p.Content == "" {
		return fmt.Errorf("%w: email needs recipient and content", errors.ErrInvalidArgument)
	}
	if strings.ContainsAny(p.Subject, "\r\n") || strings.ContainsAny(p.Recipient, "\r\n") {
		return fmt.Errorf("%w: email subject and recipient must be a single line", errors.ErrInvalidArgument)
	}
	if p.Subject == "" {
		p.Subject = DefaultEmailSubject
	}
	if e.settings.Username == "" || e.settings.Password == "" {
		return fmt.Errorf("%w: SMTP_USER and SMTP_PASS must be set", errors.ErrMissingCredentials)
	}

	e.log.Infow("Email scheduled", "recipient", p.Recipient, "delay_minutes", p.Delay)
	sleepMinutes(p.Delay)

	addr := net.JoinHostPort(e.settings.Host, strconv.Itoa(e.settings.Port))
	auth := smtp.PlainAuth("", e.settings.Username, e.settings.Password, e.settings.Host)
	if err := e.send(addr, auth, e.settings.From, []string{p.Recipient}, buildMessage(e.settings.From, p)); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDeliveryFailed, err)
	}
	e.log.Infow("Email sent", "recipient", p.Recipient)
	return nil
}

func buildMessage(from string, p EmailParams) []byte {
	var b strings.Builder
	b.WriteString("To: " + p.Recipient + "\r\n")
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("Subject: " + p.Subject + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(p.Content + "\r\n")
	return []byte(b.String())
}
