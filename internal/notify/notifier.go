package notify

import "context"

// Notifier delivers the welcome message after a successful signup.
// Implementations can be swapped without touching the signup flow.
type Notifier interface {
	SendWelcome(ctx context.Context, email string, conditions []string) error
}
