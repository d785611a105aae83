package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"plan-it/backend/config"
)

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New 按配置返回 SMTP 发送器；未配置 SMTP 时返回仅记录日志的实现
func New(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn("未配置 SMTP，邮件仅写入日志")
		return &LogMailer{logger: logger}
	}
	return &SMTPMailer{cfg: *cfg}
}

// SMTPMailer 基于 net/smtp 的发送器
type SMTPMailer struct {
	cfg  config.MailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Send 发送纯文本邮件
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("邮件头包含非法换行")
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	msg := "From: " + m.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n"

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
	}

	send := m.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// LogMailer 开发环境使用：只记录日志不发送
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer 创建 LogMailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send 将邮件内容写入日志
func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("模拟发送邮件",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
