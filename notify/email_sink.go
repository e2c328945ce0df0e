package notify

import (
	"context"
	"fmt"
)

// Mailer 发送提醒邮件，由 service.EmailService 实现
type Mailer interface {
	SendAlertEmail(toEmail, username, title, message string) error
}

// AddressResolver 根据用户名查找收件地址，返回空串表示未绑定邮箱
type AddressResolver func(ctx context.Context, username string) (string, error)

// EmailSink 邮件通知通道
// 用户未绑定邮箱时发往 fallback（运维邮箱），两者都为空则跳过
type EmailSink struct {
	mailer   Mailer
	resolve  AddressResolver
	fallback string
}

// NewEmailSink 创建邮件通道
func NewEmailSink(mailer Mailer, resolve AddressResolver, fallback string) *EmailSink {
	return &EmailSink{mailer: mailer, resolve: resolve, fallback: fallback}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Send(ctx context.Context, e Event) error {
	to := s.fallback
	if s.resolve != nil {
		addr, err := s.resolve(ctx, e.Username)
		if err != nil {
			return fmt.Errorf("查询收件地址失败: %w", err)
		}
		if addr != "" {
			to = addr
		}
	}
	if to == "" {
		return nil
	}
	return s.mailer.SendAlertEmail(to, e.Username, e.Title(), e.Message())
}
