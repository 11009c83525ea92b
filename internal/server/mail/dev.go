package mail

import (
	"context"

	"github.com/avolkov/wardrobe/internal/logging"
)

// DevMailer logs messages instead of delivering them. Useful for local runs
// without a provider key.
type DevMailer struct {
	logger logging.Logger
}

func NewDevMailer(logger logging.Logger) *DevMailer {
	return &DevMailer{logger: logger}
}

func (m *DevMailer) Send(ctx context.Context, msg Message) error {
	m.logger.Info(ctx, "dev mailer: message not delivered",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
