package actions

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/jsonutil"
)

// DefaultTwilioBaseURL is the Twilio REST API root
const DefaultTwilioBaseURL = "https://api.twilio.com/2010-04-01"

// MessageParams are the JSON parameters of the Message action. Delay is in
// minutes.
type MessageParams struct {
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
	Delay     int    `json:"delay"`
}

// Message sends an SMS through Twilio
type Message struct {
	settings TwilioSettings
	client   *http.Client
	log      *zap.SugaredLogger
}

// NewMessage creates a Message action with a 30 second HTTP timeout
func NewMessage(settings TwilioSettings, log *zap.SugaredLogger) *Message {
	if settings.BaseURL == "" {
		settings.BaseURL = DefaultTwilioBaseURL
	}
	return &Message{
		settings: settings,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
}

// Execute sends the SMS described by params after its delay
func (m *Message) Execute(params string) error {
	var p MessageParams
	if err := jsonutil.Unmarshal(params, &p); err != nil {
		return err
	}
	if p.Recipient == "" || p.Content == "" {
		return fmt.Errorf("%w: message needs recipient and content", errors.ErrInvalidArgument)
	}
	s := m.settings
	if s.AccountSID == "" || s.AuthToken == "" || s.From == "" {
		return fmt.Errorf("%w: TWILIO_SID, TWILIO_TOKEN and TWILIO_FROM must be set", errors.ErrMissingCredentials)
	}

	m.log.Infow("SMS scheduled", "recipient", p.Recipient, "delay_minutes", p.Delay)
	sleepMinutes(p.Delay)

	form := url.Values{}
	form.Set("From", s.From)
	form.Set("To", p.Recipient)
	form.Set("Body", p.Content)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", strings.TrimRight(s.BaseURL, "/"), url.PathEscape(s.AccountSID))
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.AccountSID, s.AuthToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: twilio returned %s: %s", errors.ErrDeliveryFailed, resp.Status, strings.TrimSpace(string(body)))
	}
	m.log.Infow("SMS sent", "recipient", p.Recipient)
	return nil
}
