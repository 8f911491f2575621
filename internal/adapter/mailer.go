package adapter

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"quizzy-quest/internal/config"
	"quizzy-quest/internal/domain"
	"quizzy-quest/internal/logger"

	"go.uber.org/zap"
)

const recoverySubject = "Quizzy Quest password reset code"

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer delivers recovery codes over SMTP.
type SMTPMailer struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

// NewMailer returns an SMTPMailer, or a LogMailer when no SMTP host is configured.
func NewMailer(cfg config.MailConfig) domain.Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:     cfg.From,
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (m *SMTPMailer) SendRecoveryCode(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.sendMail(m.addr, m.auth, m.from, []string{to}, recoveryMessage(m.from, to, code)); err != nil {
		return fmt.Errorf("failed to send recovery code: %w", err)
	}
	return nil
}

func recoveryMessage(from, to, code string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + recoverySubject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString("Use this code to reset your password: " + code + "\r\n")
	return []byte(b.String())
}

// LogMailer writes recovery codes to the application log. Used in development.
type LogMailer struct{}

func (LogMailer) SendRecoveryCode(_ context.Context, to, code string) error {
	logger.Get().Info("Recovery code issued", zap.String("to", to), zap.String("code", code))
	return nil
}
