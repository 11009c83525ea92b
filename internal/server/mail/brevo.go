package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

// BrevoMailer sends email through the Brevo transactional HTTP API.
type BrevoMailer struct {
	apiKey      string
	senderName  string
	senderEmail string
	endpoint    string
	client      *http.Client
}

func NewBrevoMailer(apiKey, senderName, senderEmail string) *BrevoMailer {
	return &BrevoMailer{
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		endpoint:    defaultBrevoURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// WithEndpoint overrides the API URL. Used in tests.
func (m *BrevoMailer) WithEndpoint(url string) *BrevoMailer {
	m.endpoint = url
	return m
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

func (m *BrevoMailer) Send(ctx context.Context, msg Message) error {

	body, err := json.Marshal(brevoRequest{
		Sender:      brevoAddress{Name: m.senderName, Email: m.senderEmail},
		To:          []brevoAddress{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("error encoding mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building mail request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("error calling mail provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	return nil
}
