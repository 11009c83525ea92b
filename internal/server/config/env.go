package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Only variables
// that are actually set override the current values.
//
// Recognized variables:
//
//	ADDRESS           HTTP bind address (e.g. ":8080")
//	DATABASE_DSN      PostgreSQL DSN
//	SESSION_SECRET    session cookie signing secret
//	CLIENT_URL        public frontend origin
//	BREVO_API_KEY     transactional mail provider key
//	EMAIL_FROM        sender address (plain or "Name <addr>")
//	FEEDBACK_EMAIL    address feedback submissions are forwarded to
//	TOKEN_TTL_MINUTES  verification/reset token validity, minutes
//	SESSION_TTL_HOURS  session validity, hours
//	S3_ACCESS_KEY / S3_SECRET_KEY / S3_BUCKET / S3_REGION / S3_BASE_ENDPOINT
//	PUBLIC_DIR        directory of static frontend files
//	ENV               "production" enables secure cookies
func parseEnv(config *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(&config.EndpointAddr, "ADDRESS")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SessionSecret, "SESSION_SECRET")
	setString(&config.ClientURL, "CLIENT_URL")
	setString(&config.BrevoAPIKey, "BREVO_API_KEY")
	setString(&config.EmailFrom, "EMAIL_FROM")
	setString(&config.FeedbackEmail, "FEEDBACK_EMAIL")
	setString(&config.S3AccessKey, "S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "S3_SECRET_KEY")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	setString(&config.PublicDir, "PUBLIC_DIR")

	if v, ok := os.LookupEnv("TOKEN_TTL_MINUTES"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.TokenTTL = time.Duration(n) * time.Minute
		}
	}

	if v, ok := os.LookupEnv("SESSION_TTL_HOURS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.SessionTTL = time.Duration(n) * time.Hour
		}
	}

	if v, ok := os.LookupEnv("ENV"); ok {
		config.Production = v == "production"
	}
}
