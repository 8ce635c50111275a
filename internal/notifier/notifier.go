package notifier

import (
	"context"
)

// Email is a rendered message ready to be delivered.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender defines the interface for delivering email to an account holder.
type Sender interface {
	Name() string
	Send(ctx context.Context, email *Email) error
}
