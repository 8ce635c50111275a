package notifier

import (
	"context"
	"log/slog"
)

// MockSender logs email instead of delivering it. Used in development
// environments where no SMTP relay is configured.
type MockSender struct {
	logger *slog.Logger
}

// NewMockSender creates a new mock sender.
func NewMockSender(logger *slog.Logger) *MockSender {
	return &MockSender{logger: logger}
}

// Name returns the name of this sender.
func (s *MockSender) Name() string {
	return "mock"
}

// Send logs the email details and always succeeds.
func (s *MockSender) Send(ctx context.Context, email *Email) error {
	s.logger.InfoContext(ctx, "mock sender: email sent",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}
