package ports

import "context"

// SMSGateway relays text messages to a third-party provider.
type SMSGateway interface {
	// Configured reports whether credentials are present.
	Configured() bool
	// Send returns the provider's raw response body on success.
	Send(ctx context.Context, to, message string) (string, error)
}
