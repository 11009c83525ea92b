// Package config handles configuration for the server, including defaults
// and an environment overlay. Secrets are only ever read from the process
// environment; Validate reports the ones that are missing so startup can
// abort instead of serving in a degraded state.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds runtime settings for the wardrobe server.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - SessionSecret: HMAC secret used to sign the session cookie value.
//   - ClientURL: public origin of the frontend; used for CORS and email links.
//   - BrevoAPIKey / EmailFrom / FeedbackEmail: transactional mail settings.
//   - TokenTTL: validity window for verification/reset tokens.
//   - SessionTTL: sliding validity window for sessions.
//   - S3AccessKey / S3SecretKey / S3Bucket / S3Region / S3BaseEndpoint:
//     object storage settings for the image relay.
type Config struct {
	EndpointAddr   string
	DatabaseDSN    string
	SessionSecret  string
	ClientURL      string
	BrevoAPIKey    string
	EmailFrom      string
	FeedbackEmail  string
	TokenTTL       time.Duration
	SessionTTL     time.Duration
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	PublicDir      string
	Production     bool
}

// LoadDefaults populates Config with development defaults. Values without a
// safe default (secrets, DSN, origins) stay empty and fail Validate.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.TokenTTL = 1 * time.Hour
	c.SessionTTL = 14 * 24 * time.Hour
	c.S3Region = "us-east-1"
	c.PublicDir = "public"
}

// LoadConfig builds a Config by applying defaults and then overlaying values
// from the environment.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	return cfg
}

// Validate returns an error naming every required setting that is absent.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_DSN", c.DatabaseDSN},
		{"SESSION_SECRET", c.SessionSecret},
		{"CLIENT_URL", c.ClientURL},
		{"BREVO_API_KEY", c.BrevoAPIKey},
		{"EMAIL_FROM", c.EmailFrom},
		{"S3_ACCESS_KEY", c.S3AccessKey},
		{"S3_SECRET_KEY", c.S3SecretKey},
		{"S3_BUCKET", c.S3Bucket},
		{"S3_BASE_ENDPOINT", c.S3BaseEndpoint},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

// SenderName extracts the display name from EmailFrom, or "" when EmailFrom
// is a plain address.
func (c *Config) SenderName() string {
	from := c.EmailFrom
	if i := strings.Index(from, "<"); i > 0 {
		return strings.TrimSpace(from[:i])
	}
	return ""
}

// SenderAddress extracts the bare address from EmailFrom, which may be either
// a plain address or a display form like `Wardrobe <no-reply@example.com>`.
func (c *Config) SenderAddress() string {
	from := c.EmailFrom
	if i := strings.Index(from, "<"); i >= 0 {
		if j := strings.Index(from[i:], ">"); j > 0 {
			return strings.TrimSpace(from[i+1 : i+j])
		}
	}
	return strings.TrimSpace(from)
}
