package mailer

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"go.uber.org/zap"

	"plan-it/backend/config"
)

func TestNew_FallsBackToLogMailer(t *testing.T) {
	m := New(&config.MailConfig{}, zap.NewNop())
	if _, ok := m.(*LogMailer); !ok {
		t.Fatalf("未配置 SMTP 时应返回 LogMailer，实际 %T", m)
	}
	if err := m.Send(context.Background(), "a@b.com", "hi", "body"); err != nil {
		t.Errorf("LogMailer.Send 不应失败: %v", err)
	}
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string

	m := &SMTPMailer{
		cfg: config.MailConfig{SMTPHost: "smtp.test", SMTPPort: 2525, From: "no-reply@planit.local"},
		send: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
			return nil
		},
	}

	if err := m.Send(context.Background(), "jane@vitapstudent.ac.in", "验证邮箱", "link"); err != nil {
		t.Fatalf("Send 失败: %v", err)
	}
	if gotAddr != "smtp.test:2525" {
		t.Errorf("期望 addr=smtp.test:2525，实际=%s", gotAddr)
	}
	if gotFrom != "no-reply@planit.local" || len(gotTo) != 1 || gotTo[0] != "jane@vitapstudent.ac.in" {
		t.Errorf("发件人/收件人不符: from=%s to=%v", gotFrom, gotTo)
	}
	if !strings.Contains(gotMsg, "Subject: 验证邮箱\r\n") {
		t.Errorf("邮件头缺少主题: %q", gotMsg)
	}
}

func TestSMTPMailer_RejectsHeaderInjection(t *testing.T) {
	m := &SMTPMailer{
		cfg: config.MailConfig{SMTPHost: "smtp.test", SMTPPort: 25},
		send: func(string, smtp.Auth, string, []string, []byte) error {
			t.Fatal("不应调用发送")
			return nil
		},
	}
	if err := m.Send(context.Background(), "a@b.com\r\nBcc: x@y.com", "s", "b"); err == nil {
		t.Error("期望拒绝含换行的收件人")
	}
}
