package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// InvitationMail carries everything the invitation notification needs.
type InvitationMail struct {
	To            string
	InviterName   string
	WorkspaceName string
	AcceptLink    string
}

// Mailer dispatches invitation notifications. Delivery failures are surfaced
// to the caller; the invitation row itself is already persisted.
type Mailer interface {
	SendInvitation(mail InvitationMail) error
}

// SMTPMailer sends invitation mail over plain SMTP.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPMailer{
		addr: host + ":" + port,
		auth: auth,
		from: from,
	}
}

// SendInvitation sends the invitation email.
func (m *SMTPMailer) SendInvitation(mail InvitationMail) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %q <%s>\r\n", mail.WorkspaceName, m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", mail.To)
	fmt.Fprintf(&msg, "Subject: You're invited to join %s\r\n", mail.WorkspaceName)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&msg, `<div style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>You're invited!</h2>
  <p><strong>%s</strong> has invited you to join <strong>%s</strong>.</p>
  <p><a href="%s">Accept Invitation</a></p>
  <p style="color: #555;">If you didn't expect this invitation, you can safely ignore this email.</p>
</div>`, mail.InviterName, mail.WorkspaceName, mail.AcceptLink)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{mail.To}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}

	return nil
}

// LogMailer logs the acceptance link instead of delivering mail. Used when
// SMTP is unconfigured and in tests.
type LogMailer struct{}

// SendInvitation logs the invitation instead of sending it.
func (m *LogMailer) SendInvitation(mail InvitationMail) error {
	log.Printf("invitation for %s to workspace %q: %s", mail.To, mail.WorkspaceName, mail.AcceptLink)
	return nil
}
