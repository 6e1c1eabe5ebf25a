package mailer

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/reportmill/internal/model"
)

// contentTypes is the fixed attachment extension table. Any other
// extension is a hard error, not a fallback.
var contentTypes = map[string]string{
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// Config carries the SMTP account and addressing for one send session.
type Config struct {
	Host     string
	Port     string
	Sender   string
	Password string
	To       []string
	Cc       []string
}

// NewConfigFromSettings maps persisted settings onto a mailer Config,
// splitting the comma-separated address lists.
func NewConfigFromSettings(s *model.Settings) *Config {
	return &Config{
		Host:     s.ServerName,
		Port:     s.ServerPort,
		Sender:   s.Sender,
		Password: s.Password,
		To:       splitAddresses(s.To),
		Cc:       splitAddresses(s.Cc),
	}
}

// Message is one outgoing report email: a subject and file attachments.
type Message struct {
	To      []string
	Cc      []string
	Subject string
	Files   []string
}

// Recipients returns the union of the To and Cc lists for the envelope.
func (m Message) Recipients() []string {
	return append(append([]string{}, m.To...), m.Cc...)
}

// Mailer sends report emails over SMTP with a mandatory STARTTLS upgrade.
type Mailer struct {
	cfg    *Config
	sendFn func(msg Message) error
}

func New(cfg *Config) *Mailer {
	m := &Mailer{cfg: cfg}
	m.sendFn = m.sendSMTP
	return m
}

// Reconfigure swaps in new settings, e.g. after the settings form is saved.
func (m *Mailer) Reconfigure(cfg *Config) {
	m.cfg = cfg
}

// SendReport attaches the given files and sends them to the configured
// recipients. Any failure surfaces as a single error; there is no retry
// and no partial-send state.
func (m *Mailer) SendReport(subject string, files []string) error {
	if m.cfg == nil {
		return fmt.Errorf("mailer: not configured")
	}
	return m.sendFn(Message{
		To:      m.cfg.To,
		Cc:      m.cfg.Cc,
		Subject: subject,
		Files:   files,
	})
}

func (m *Mailer) sendSMTP(msg Message) error {
	raw, err := m.formatMessage(msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	if err := client.Mail(m.cfg.Sender); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range msg.Recipients() {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return client.Quit()
}

// formatMessage builds the multipart MIME message: headers, then each file
// as a base64 part with its content type from the extension table.
func (m *Mailer) formatMessage(msg Message) ([]byte, error) {
	var parts bytes.Buffer
	writer := multipart.NewWriter(&parts)

	for _, file := range msg.Files {
		if err := attachFile(writer, file); err != nil {
			return nil, err
		}
	}
	writer.Close()

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", m.cfg.Sender))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	if len(msg.Cc) > 0 {
		buf.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(msg.Cc, ", ")))
	}
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.BEncoding.Encode("utf-8", msg.Subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n", writer.Boundary()))
	buf.WriteString("\r\n")
	buf.Write(parts.Bytes())
	return buf.Bytes(), nil
}

func attachFile(writer *multipart.Writer, path string) error {
	contentType, ok := contentTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("attachment %s: unknown extension %q", path, filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	header.Set("Content-Transfer-Encoding", "base64")
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	// 76-character lines per RFC 2045
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[i:end] + "\r\n")); err != nil {
			return err
		}
	}
	return nil
}

func splitAddresses(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
