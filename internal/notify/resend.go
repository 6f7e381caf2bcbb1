package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier sends the welcome mail through Resend.
type ResendNotifier struct {
	emails emailSender
	from   string
	log    *zap.Logger
}

func NewResendNotifier(apiKey, from string, log *zap.Logger) *ResendNotifier {
	client := resend.NewClient(apiKey)
	return &ResendNotifier{emails: client.Emails, from: from, log: log}
}

func (n *ResendNotifier) SendWelcome(ctx context.Context, email string, conditions []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{email},
		Subject: "Welcome aboard",
		Html:    welcomeHTML(conditions),
	}

	sent, err := n.emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	n.log.Info("welcome mail sent", zap.String("id", sent.Id))
	return nil
}

func welcomeHTML(conditions []string) string {
	var items strings.Builder
	for _, c := range conditions {
		items.WriteString("<li>")
		items.WriteString(html.EscapeString(c))
		items.WriteString("</li>")
	}
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">Your account is ready</h2>
			<p>You selected:</p>
			<ul>%s</ul>
			<p style="color: #aaa; font-size: 12px;">
				If you didn't sign up, you can safely ignore this email.
			</p>
		</div>
	`, items.String())
}
