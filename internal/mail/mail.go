package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fachschaft-protokolle/internal/config"
	"fachschaft-protokolle/internal/logging"
	"fmt"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"mime"
	"net"
	"net/http"
	netmail "net/mail"
	"net/smtp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("mail: backend not configured")

// Message is a plain text mail with one recipient.
type Message struct {
	Subject string
	Text    string
	From    string
	To      string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns the backend selected in the configuration.
func NewSender(c *config.Configuration, l logging.Logger) (Sender, error) {
	switch c.Mail.Backend {
	case "smtp":
		return &SMTPSender{
			Host:     c.Mail.SmtpHost,
			Port:     c.Mail.SmtpPort,
			Username: c.Mail.SmtpUsername,
			Password: c.Mail.SmtpPassword,
			TLS:      c.Mail.SmtpTls,
		}, nil
	case "sendgrid":
		return NewSendgridSender(c.Mail.SendgridApiKey), nil
	case "log", "":
		return &LogSender{Logger: l}, nil
	}
	return nil, fmt.Errorf("unknown mail backend %q", c.Mail.Backend)
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logging.Logger
}

// ensure LogSender implements Sender
var _ Sender = &LogSender{}

func (l *LogSender) Send(_ context.Context, msg Message) error {
	l.LogInfof(logging.GetLogTypeMail(), "mail from %s to %s: %s\n%s", msg.From, msg.To, msg.Subject, msg.Text)
	return nil
}

// SMTPSender delivers messages over SMTP, upgrading to TLS via STARTTLS if enabled.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

// ensure SMTPSender implements Sender
var _ Sender = &SMTPSender{}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(s.Host) == 0 {
		return ErrNotConfigured
	}
	from, err := netmail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	to, err := netmail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	d := net.Dialer{Timeout: 5 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(30 * time.Second))

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if s.TLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
				return err
			}
		}
	}
	if len(s.Username) > 0 {
		if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(from.Address); err != nil {
		return err
	}
	if err := c.Rcpt(to.Address); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(Compose(msg)); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// Compose renders msg as an RFC 5322 message with UTF-8 plain text body.
func Compose(msg Message) []byte {
	headers := map[string]string{
		"From":                      encodeAddress(msg.From),
		"To":                        encodeAddress(msg.To),
		"Subject":                   mime.BEncoding.Encode("UTF-8", msg.Subject),
		"MIME-Version":              "1.0",
		"Content-Type":              "text/plain; charset=UTF-8",
		"Content-Transfer-Encoding": "8bit",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k + ": " + headers[k] + "\r\n")
	}
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.Text, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String())
}

func encodeAddress(s string) string {
	a, err := netmail.ParseAddress(s)
	if err != nil {
		return s
	}
	return a.String()
}

// SendgridSender delivers messages through the SendGrid v3 API.
type SendgridSender struct {
	Key      string
	Host     string
	Endpoint string
}

// ensure SendgridSender implements Sender
var _ Sender = &SendgridSender{}

func NewSendgridSender(key string) *SendgridSender {
	return &SendgridSender{Key: key, Host: "https://api.sendgrid.com", Endpoint: "/v3/mail/send"}
}

func (s *SendgridSender) Send(_ context.Context, msg Message) error {
	if len(s.Key) == 0 {
		return ErrNotConfigured
	}
	from, err := netmail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}
	to, err := netmail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(to.Name, to.Address))

	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(from.Name, from.Address))
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))

	req := sendgrid.GetRequest(s.Key, s.Endpoint, s.Host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
