package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
)

type SMTPMailer struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func NewSMTPMailer(host string, port int, from, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		Host: strings.TrimSpace(host),
		Port: port,
		From: strings.TrimSpace(from),
		User: strings.TrimSpace(user),
		Pass: strings.TrimSpace(pass),
	}
}

func (s *SMTPMailer) SendAccountApproved(toEmail, toName string) error {
	subject := "Your library account has been approved"
	text := fmt.Sprintf("Hi %s,\n\nYour library account has been approved. You can now log in and reserve books.", toName)
	html := fmt.Sprintf(`
		<h2>Welcome to the library!</h2>
		<p>Hi %s,</p>
		<p>Your account has been approved. You can now log in and reserve books.</p>
	`, toName)

	return s.sendEmail(toEmail, subject, text, html)
}

func (s *SMTPMailer) SendReservationStatus(toEmail, toName, bookTitle, status string) error {
	subject := fmt.Sprintf("Reservation update: %s", bookTitle)
	text := fmt.Sprintf("Hi %s,\n\nYour reservation for %q is now %s.", toName, bookTitle, status)
	html := fmt.Sprintf(`
		<h2>Reservation update</h2>
		<p>Hi %s,</p>
		<p>Your reservation for <strong>%s</strong> is now <strong>%s</strong>.</p>
	`, toName, bookTitle, status)

	return s.sendEmail(toEmail, subject, text, html)
}

func (s *SMTPMailer) sendEmail(toEmail, subject, text, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	var buf bytes.Buffer
	boundary := "mixed-boundary"

	fmt.Fprintf(&buf, "From: %s\r\n", s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	// Development SMTP (Mailpit): no auth
	if s.User == "" {
		return smtp.SendMail(addr, nil, s.From, []string{toEmail}, buf.Bytes())
	}

	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)
	return smtp.SendMail(addr, auth, s.From, []string{toEmail}, buf.Bytes())
}
