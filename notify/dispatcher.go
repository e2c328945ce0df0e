package notify

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sink 通知投递通道
type Sink interface {
	Name() string
	Send(ctx context.Context, e Event) error
}

// deliverTimeout 单条通知投递到所有通道的超时时间
const deliverTimeout = 10 * time.Second

// Dispatcher 异步通知分发器
// 入队不阻塞，后台协程把每条通知并发投递到全部通道
type Dispatcher struct {
	emitter
	queue   chan Event
	sinks   []Sink
	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
}

// NewDispatcher 创建并启动分发器
func NewDispatcher(queueSize int, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		queue: make(chan Event, queueSize),
		sinks: sinks,
		done:  make(chan struct{}),
	}
	d.emitter = emitter{emit: d.enqueue, now: time.Now}
	go d.run()
	return d
}

func (d *Dispatcher) enqueue(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return
	}
	select {
	case d.queue <- e:
	default:
		d.dropped.Add(1)
		log.Printf("通知队列已满，丢弃通知: %s %s", e.Kind, e.Username)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()

	var g errgroup.Group
	for _, s := range d.sinks {
		s := s
		g.Go(func() error {
			if err := s.Send(ctx, e); err != nil {
				log.Printf("通知投递失败 [%s] %s: %v", s.Name(), e.Kind, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Dropped 被丢弃的通知数量
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

// Close 停止接收新通知，并等待队列中的通知投递完毕
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
