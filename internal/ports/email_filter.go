package ports

import (
	"context"

	"github.com/mikey/email-triage/internal/core"
)

// EmailFilter defines the interface for the inbound transports feeding the classifier
type EmailFilter interface {
	// ProcessEmail classifies an email and returns the result
	ProcessEmail(ctx context.Context, email *core.EmailInput) (*core.EmailResult, error)

	// Start starts the filter service
	Start() error

	// Stop stops the filter service
	Stop() error
}
