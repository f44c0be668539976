package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendMailer sends templated emails through the Resend API.
type ResendMailer struct {
	client     *resend.Client
	from       string
	appBaseURL string
}

func NewResendMailer(apiKey, from, appBaseURL string) *ResendMailer {
	return &ResendMailer{
		client:     resend.NewClient(apiKey),
		from:       from,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

func (m *ResendMailer) send(ctx context.Context, to, subject, html, text string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}

func (m *ResendMailer) SendOTP(ctx context.Context, to, code string) error {
	return m.send(ctx, to,
		"Your verification code",
		fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires in 10 minutes.</p>", code),
		fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code))
}

func (m *ResendMailer) SendResendOTP(ctx context.Context, to, code string) error {
	return m.send(ctx, to,
		"Your new verification code",
		fmt.Sprintf("<p>Your new verification code is <strong>%s</strong>. It expires in 10 minutes.</p>", code),
		fmt.Sprintf("Your new verification code is %s. It expires in 10 minutes.", code))
}

func (m *ResendMailer) SendCommunityPending(ctx context.Context, to, community, user string) error {
	subject := fmt.Sprintf("Your community %q is pending validation", community)
	return m.send(ctx, to, subject,
		fmt.Sprintf("<p>Hi %s,</p><p>Your community %q was created and is waiting for validation.</p>", user, community),
		fmt.Sprintf("Hi %s, your community %q was created and is waiting for validation.", user, community))
}

func (m *ResendMailer) SendApplicationPending(ctx context.Context, to, community, user string) error {
	subject := fmt.Sprintf("Your application to %q is pending", community)
	return m.send(ctx, to, subject,
		fmt.Sprintf("<p>Hi %s,</p><p>Your application to join %q is waiting for review.</p>", user, community),
		fmt.Sprintf("Hi %s, your application to join %q is waiting for review.", user, community))
}

func (m *ResendMailer) SendApplicationAccepted(ctx context.Context, to, community, user string) error {
	subject := fmt.Sprintf("Welcome to %q!", community)
	return m.send(ctx, to, subject,
		fmt.Sprintf("<p>Hi %s,</p><p>Your application to join %q was accepted. Welcome aboard!</p>", user, community),
		fmt.Sprintf("Hi %s, your application to join %q was accepted.", user, community))
}

func (m *ResendMailer) SendApplicationRejected(ctx context.Context, to, community, user string) error {
	subject := fmt.Sprintf("About your application to %q", community)
	return m.send(ctx, to, subject,
		fmt.Sprintf("<p>Hi %s,</p><p>Your application to join %q was not accepted.</p>", user, community),
		fmt.Sprintf("Hi %s, your application to join %q was not accepted.", user, community))
}

func (m *ResendMailer) SendCommunityInvitation(ctx context.Context, to, community, token string) error {
	link := fmt.Sprintf("%s/communities/invitations/accept?token=%s", m.appBaseURL, token)
	subject := fmt.Sprintf("You are invited to join %q", community)
	return m.send(ctx, to, subject,
		fmt.Sprintf("<p>You have been invited to join %q.</p><p><a href=%q>Accept invitation</a></p><p>The invitation expires in 3 days.</p>", community, link),
		fmt.Sprintf("You have been invited to join %q. Accept it here: %s (expires in 3 days)", community, link))
}
