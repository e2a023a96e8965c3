// Package mailer is the outbound email collaborator. Delivery is always
// best-effort: callers fire sends from goroutines and drop errors after
// logging them.
package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Mailer sends a plain-text message to an address.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer logs messages instead of delivering them. Used in development
// and whenever SES is not configured.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.Info("mail (not delivered)", zap.String("to", to), zap.String("subject", subject))
	return nil
}
