package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) SendAccountApproved(toEmail, toName string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := "Your library account has been approved"
	html := fmt.Sprintf(`
		<h2>Welcome to the library!</h2>
		<p>Hi %s,</p>
		<p>Your account has been approved. You can now log in and reserve books.</p>
	`, toName)
	text := fmt.Sprintf("Hi %s,\n\nYour library account has been approved. You can now log in and reserve books.", toName)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) SendReservationStatus(toEmail, toName, bookTitle, status string) error {
	if !m.enabled {
		return fmt.Errorf("MailerSend not configured")
	}

	subject := fmt.Sprintf("Reservation update: %s", bookTitle)
	html := fmt.Sprintf(`
		<h2>Reservation update</h2>
		<p>Hi %s,</p>
		<p>Your reservation for <strong>%s</strong> is now <strong>%s</strong>.</p>
	`, toName, bookTitle, status)
	text := fmt.Sprintf("Hi %s,\n\nYour reservation for %q is now %s.", toName, bookTitle, status)

	return m.sendEmail(toEmail, toName, subject, text, html)
}

func (m *MailerSendClient) sendEmail(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
