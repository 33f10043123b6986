// Package mailer delivers run reports and failure notifications over SMTP.
package mailer

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/d9i2r2t1/hh-parser/internal/model"
)

// Config describes one SMTP delivery target.
type Config struct {
	Server   string
	Port     int
	Login    string
	Password string
	UseSSL   bool // implicit TLS (port 465 style) instead of plaintext SMTP
	From     string
	To       []string
	Subject  string
}

// Mailer sends mail through a single configured SMTP server.
type Mailer struct {
	cfg Config
}

// New returns a Mailer for the given target.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendReport mails the xlsx report with a short summary body.
func (m *Mailer) SendReport(run *model.Run, stats model.RunStats, reportPath string) error {
	subject := m.cfg.Subject
	if subject == "" {
		subject = fmt.Sprintf("hh.ru report: %s", run.SearchText)
	}
	body := fmt.Sprintf(
		"Во вложении отчет по вакансиям на hh.ru по запросу %q за %s.\n\n"+
			"Вакансий: %s, без зарплаты: %.2f%%, средняя зарплата: %s, медианная: %s.\n",
		run.SearchText, run.Date.Format("02.01.2006"),
		humanize.Comma(int64(stats.JobsCount)), stats.JobsWithoutSalaryPct,
		humanize.Comma(int64(stats.SalaryMean)), humanize.Comma(int64(stats.SalaryMedian)),
	)
	return m.send(subject, body, reportPath)
}

// SendFailure mails a failure notification with the error text and, when it
// exists, the run's log file attached.
func (m *Mailer) SendFailure(runErr error, logPath string) error {
	body := fmt.Sprintf("%s\n\n%v\n", time.Now().Format("02.01.2006 15:04:05"), runErr)
	attachment := ""
	if logPath != "" {
		if _, err := os.Stat(logPath); err == nil {
			attachment = logPath
		}
	}
	return m.send("EXCEPTION: hh-parser", body, attachment)
}

// send assembles a MIME message (multipart when an attachment is present)
// and delivers it to every configured recipient.
func (m *Mailer) send(subject, body, attachment string) error {
	msg, err := buildMessage(m.cfg.From, m.cfg.To, subject, body, attachment)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Server, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Login, m.cfg.Password, m.cfg.Server)

	log.Printf("[mailer] Sending %q to %s via %s", subject, strings.Join(m.cfg.To, ", "), addr)
	if m.cfg.UseSSL {
		err = sendOverTLS(addr, m.cfg.Server, auth, m.cfg.From, m.cfg.To, msg)
	} else {
		err = smtp.SendMail(addr, auth, m.cfg.From, m.cfg.To, msg)
	}
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}

// sendOverTLS speaks SMTP over an implicit TLS connection, which
// smtp.SendMail cannot do (it only upgrades via STARTTLS).
func sendOverTLS(addr, host string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMessage(from string, to []string, subject, body, attachment string) ([]byte, error) {
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if attachment == "" {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		msg.WriteString(body)
		return msg.Bytes(), nil
	}

	content, err := os.ReadFile(attachment)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	const boundary = "hh-parser-mail-boundary"
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	name := mime.QEncoding.Encode("utf-8", filepath.Base(attachment))
	msg.WriteString("Content-Type: application/octet-stream\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&msg, "Content-Disposition: attachment; filename=%q\r\n\r\n", name)

	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 76 {
		msg.WriteString(encoded[:76])
		msg.WriteString("\r\n")
		encoded = encoded[76:]
	}
	msg.WriteString(encoded)
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return msg.Bytes(), nil
}
