package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Mailer sends HTML email through the ZeptoMail HTTP API. A zero-value
// Mailer is disabled; Send then only logs, which keeps password-reset
// responses uniform in environments without mail credentials.
type Mailer struct {
	APIURL string
	APIKey string
	From   string
	Logger zerolog.Logger

	client *http.Client
}

type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HTMLBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

func (m *Mailer) Send(to, toName, subject, body string) error {
	if m.APIURL == "" || m.APIKey == "" || m.From == "" {
		m.Logger.Warn().Str("to", to).Msg("mailer not configured, dropping email")
		return nil
	}

	payload := emailRequest{
		From:     emailAddress{Address: m.From},
		To:       []toRecipient{{Email: emailWithName{Address: to, Name: toName}}},
		Subject:  subject,
		HTMLBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, m.APIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", m.APIKey)

	client := m.client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	m.Logger.Info().Str("to", to).Msg("email sent")
	return nil
}

// SendPasswordReset mails the reset link for a requested password
// reset.
func (m *Mailer) SendPasswordReset(to, username, resetURL string) error {
	body := fmt.Sprintf(
		`<p>Hello %s,</p>
<p>A password reset was requested for your account. Click the link below to choose a new password. The link expires in one hour.</p>
<p><a href="%s">%s</a></p>
<p>If you did not request this, you can ignore this email.</p>`,
		username, resetURL, resetURL,
	)
	return m.Send(to, username, "Password reset request", body)
}
