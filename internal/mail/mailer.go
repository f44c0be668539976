package mail

import "context"

// Mailer sends transactional notifications. Implementations are fire and
// forget from the workflows' perspective: callers log failures and never roll
// back the state transition that triggered the email.
type Mailer interface {
	SendOTP(ctx context.Context, to, code string) error
	SendResendOTP(ctx context.Context, to, code string) error
	SendCommunityPending(ctx context.Context, to, community, user string) error
	SendApplicationPending(ctx context.Context, to, community, user string) error
	SendApplicationAccepted(ctx context.Context, to, community, user string) error
	SendApplicationRejected(ctx context.Context, to, community, user string) error
	SendCommunityInvitation(ctx context.Context, to, community, token string) error
}

// Noop discards every email. Used in tests and when no API key is configured.
type Noop struct{}

func (Noop) SendOTP(context.Context, string, string) error                         { return nil }
func (Noop) SendResendOTP(context.Context, string, string) error                   { return nil }
func (Noop) SendCommunityPending(context.Context, string, string, string) error    { return nil }
func (Noop) SendApplicationPending(context.Context, string, string, string) error  { return nil }
func (Noop) SendApplicationAccepted(context.Context, string, string, string) error { return nil }
func (Noop) SendApplicationRejected(context.Context, string, string, string) error { return nil }
func (Noop) SendCommunityInvitation(context.Context, string, string, string) error { return nil }
