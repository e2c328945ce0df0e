package notify

import (
	"context"
	"log"
)

// LogSink 写日志的通知通道，始终启用
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(_ context.Context, e Event) error {
	switch e.Kind {
	case KindNegativeBalance:
		log.Printf("[错误] %s", e.Message())
	case KindBudgetExceeded:
		log.Printf("[警告] %s", e.Message())
	default:
		log.Printf("[提醒] %s", e.Message())
	}
	return nil
}
