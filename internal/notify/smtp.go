package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	logx "github.com/sharpchat/server/pkg/logger"
)

// SMTPConfig carries the outbound mail settings.
type SMTPConfig struct {
	Host     string `envconfig:"EMAIL_HOST" required:"true"`
	PortSSL  int    `envconfig:"EMAIL_PORT_SSL" default:"465"`
	From     string `envconfig:"EMAIL_FROM" required:"true"`
	Password string `envconfig:"EMAIL_PASSWORD" required:"true"`
}

// SMTPNotifier sends the handoff email over implicit TLS.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

func (s *SMTPNotifier) Send(ctx context.Context, n Notification) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.PortSSL)

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	tlsConn := tls.Client(conn, &tls.Config{ServerName: s.cfg.Host})

	client, err := smtp.NewClient(tlsConn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(n.BusinessEmail); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(s.message(n))); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	logx.Info().Str("business_email", n.BusinessEmail).Msg("handoff email sent")
	return client.Quit()
}

func (s *SMTPNotifier) message(n Notification) string {
	subject := "SharpChat AI - Customer Support Request for " + n.BusinessName

	body := `<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 8px;">
      <h2 style="color: #2563eb;">New Customer Support Request</h2>
      <div style="background-color: #f3f4f6; padding: 15px; border-radius: 5px;">
        <h3 style="margin-top: 0;">Customer Information:</h3>
        <p><strong>Email:</strong> ` + n.UserEmail + `</p>
        <p><strong>Phone:</strong> ` + n.UserPhone + `</p>
      </div>
      <div style="margin: 20px 0;">
        <h3>Support Request:</h3>
        <p style="background-color: #fef3c7; padding: 15px; border-left: 4px solid #f59e0b;">` + n.MainIssue + `</p>
      </div>
      <div style="margin: 20px 0;">
        <h3>Conversation Summary:</h3>
        <div style="background-color: #f9fafb; padding: 15px; white-space: pre-wrap;">` + n.Summary + `</div>
      </div>
      <hr style="border: none; border-top: 1px solid #ddd;">
      <p style="color: #6b7280; font-size: 14px;">
        This email was sent via <strong>SharpChat AI</strong>.
        Please respond directly to the customer using the contact details above.
      </p>
    </div>
  </body>
</html>`

	headers := []string{
		"From: " + s.cfg.From,
		"To: " + n.BusinessEmail,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body + "\r\n"
}

var _ Notifier = (*SMTPNotifier)(nil)
