// Package mail delivers transactional email through the Resend REST API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

// Mailer sends the three transactional messages the auth flows need.
type Mailer interface {
	SendWelcome(ctx context.Context, to string) error
	SendVerificationCode(ctx context.Context, to, code string) error
	SendPasswordReset(ctx context.Context, to, resetPassword string) error
}

// ResendMailer speaks the Resend REST API with a plain HTTP client.
type ResendMailer struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewResendMailer creates a new Resend mailer
func NewResendMailer(apiKey, from string, log *logger.Logger) *ResendMailer {
	return &ResendMailer{
		apiKey:  apiKey,
		from:    from,
		baseURL: "https://api.resend.com",
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log,
	}
}

// WithBaseURL points the mailer at a different API host. Used by tests.
func (m *ResendMailer) WithBaseURL(baseURL string) *ResendMailer {
	m.baseURL = baseURL
	return m
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendWelcome mails the post-signup welcome message
func (m *ResendMailer) SendWelcome(ctx context.Context, to string) error {
	return m.send(ctx, to, "Welcome Message", `
		<p>Welcome to Flowva!</p>
		<p>Your account has been created. You can proceed to sign in.</p>
	`)
}

// SendVerificationCode mails the 6-digit signup code
func (m *ResendMailer) SendVerificationCode(ctx context.Context, to, code string) error {
	return m.send(ctx, to, "Account Verification", `
		<p>Your verification code is:</p>
		<h2>`+code+`</h2>
		<p>The code expires in 5 minutes.</p>
	`)
}

// SendPasswordReset mails the configured reset value
func (m *ResendMailer) SendPasswordReset(ctx context.Context, to, resetPassword string) error {
	return m.send(ctx, to, "Password Reset", `
		<p>Use the password below to sign in, then change it right away:</p>
		<h2>`+resetPassword+`</h2>
	`)
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		m.log.WithFields(map[string]interface{}{
			"status_code": resp.StatusCode,
			"subject":     subject,
		}).Error("Mail provider rejected message")
		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, string(detail))
	}

	m.log.WithField("subject", subject).Debug("Mail sent")
	return nil
}
