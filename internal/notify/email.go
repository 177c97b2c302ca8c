package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/complaint-tickets/internal/config"
	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// SMTPSPort is the implicit-TLS submission port.
const SMTPSPort = 465

// EmailNotifier sends alerts over SMTP with PLAIN auth. On port 465, or when
// SMTP_IMPLICIT_TLS is set, the connection is TLS from the first byte;
// otherwise STARTTLS is used when the server offers it.
type EmailNotifier struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	timeout     time.Duration
	implicitTLS bool
	tlsConfig   *tls.Config
}

// NewEmail builds an EmailNotifier from cfg.
func NewEmail(cfg config.NotificationConfig) *EmailNotifier {
	from := cfg.EmailFrom
	if from == "" {
		from = cfg.Username
	}
	return &EmailNotifier{
		host:        cfg.SMTPServer,
		port:        cfg.SMTPPort,
		username:    cfg.Username,
		password:    cfg.Password,
		from:        from,
		timeout:     cfg.Timeout(),
		implicitTLS: cfg.SMTPImplicitTLS || cfg.SMTPPort == SMTPSPort,
	}
}

// Channel implements Notifier.
func (e *EmailNotifier) Channel() string { return "email" }

// Notify implements Notifier.
func (e *EmailNotifier) Notify(ctx context.Context, ticket domain.Ticket, recipient string) (bool, string) {
	if e.host == "" || e.username == "" || e.password == "" {
		return false, "email settings not configured"
	}
	if strings.TrimSpace(recipient) == "" {
		return false, "no recipient"
	}
	if err := e.send(ctx, recipient, buildMessage(e.from, recipient, ticket)); err != nil {
		return false, err.Error()
	}
	return true, "email sent successfully"
}

func (e *EmailNotifier) send(ctx context.Context, recipient string, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	addr := net.JoinHostPort(e.host, strconv.Itoa(e.port))
	dialer := &net.Dialer{Timeout: e.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)

	if e.implicitTLS {
		tlsConn := tls.Client(conn, e.clientTLS())
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return fmt.Errorf("tls handshake with %s: %w", addr, err)
		}
		conn = tlsConn
	}

	client, err := smtp.NewClient(conn, e.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if !e.implicitTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(e.clientTLS()); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if err := client.Auth(smtp.PlainAuth("", e.username, e.password, e.host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(e.from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end data: %w", err)
	}
	return client.Quit()
}

func (e *EmailNotifier) clientTLS() *tls.Config {
	if e.tlsConfig != nil {
		return e.tlsConfig
	}
	return &tls.Config{ServerName: e.host}
}

func buildMessage(from, to string, ticket domain.Ticket) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", Subject(ticket))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(strings.ReplaceAll(Body(ticket), "\n", "\r\n"))
	return b.Bytes()
}
