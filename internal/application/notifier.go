package application

import "context"

// Notifier delivers a verification code to a user. Delivery is best-effort:
// the registration flow must succeed even when the notifier fails.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, name, code string) error
}
