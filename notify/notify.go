// Package notify 预算与余额提醒。
//
// 所有通知都是"发出即忘"的：调用方不等待投递结果，投递失败只记录日志，
// 队列满时直接丢弃，不影响记账事务本身。
package notify

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Kind 通知类型
type Kind string

const (
	KindBudgetExceeded  Kind = "budget_exceeded"
	KindBudgetWarning   Kind = "budget_warning"
	KindNegativeBalance Kind = "negative_balance"
)

// Event 一条通知
type Event struct {
	Kind       Kind      `json:"kind"`
	Username   string    `json:"username"`
	Category   string    `json:"category,omitempty"`
	Spent      float64   `json:"spent,omitempty"`
	Percentage float64   `json:"percentage,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Title 通知标题
func (e Event) Title() string {
	switch e.Kind {
	case KindBudgetExceeded:
		return "预算超支提醒"
	case KindBudgetWarning:
		return "预算即将用尽"
	case KindNegativeBalance:
		return "余额为负提醒"
	default:
		return "账户提醒"
	}
}

// Message 面向用户的通知内容
func (e Event) Message() string {
	switch e.Kind {
	case KindBudgetExceeded:
		return fmt.Sprintf("%s：类别「%s」已超出预算，当前已支出 %.2f", e.Username, e.Category, e.Spent)
	case KindBudgetWarning:
		return fmt.Sprintf("%s：类别「%s」已使用 %.2f%% 的预算", e.Username, e.Category, e.Percentage)
	case KindNegativeBalance:
		return fmt.Sprintf("%s：钱包余额为负", e.Username)
	default:
		return fmt.Sprintf("%s：%s", e.Username, e.Kind)
	}
}

// ToJSON 序列化，供 Redis / AMQP 等通道使用
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON 反序列化
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Notifier 记账核心依赖的通知接口
type Notifier interface {
	BudgetExceeded(username, category string, spent float64)
	BudgetWarning(username, category string, percentage float64)
	NegativeBalance(username string)
}

// emitter 把三个通知方法统一成 Event
type emitter struct {
	emit func(Event)
	now  func() time.Time
}

func (m emitter) BudgetExceeded(username, category string, spent float64) {
	m.emit(Event{Kind: KindBudgetExceeded, Username: username, Category: category, Spent: spent, OccurredAt: m.now()})
}

func (m emitter) BudgetWarning(username, category string, percentage float64) {
	m.emit(Event{Kind: KindBudgetWarning, Username: username, Category: category, Percentage: percentage, OccurredAt: m.now()})
}

func (m emitter) NegativeBalance(username string) {
	m.emit(Event{Kind: KindNegativeBalance, Username: username, OccurredAt: m.now()})
}

// Nop 丢弃所有通知
type Nop struct{}

func (Nop) BudgetExceeded(string, string, float64) {}
func (Nop) BudgetWarning(string, string, float64)  {}
func (Nop) NegativeBalance(string)                 {}

// Recorder 在内存中记录通知，测试用
type Recorder struct {
	emitter
	mu     sync.Mutex
	events []Event
}

// NewRecorder 创建 Recorder
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.emitter = emitter{emit: r.record, now: time.Now}
	return r
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events 返回已记录通知的副本
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind 返回指定类型的通知
func (r *Recorder) OfKind(kind Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Reset 清空记录
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
