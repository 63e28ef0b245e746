package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mohith182/turbine-ai/internal/metrics"
)

type DispatcherOptions struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
	Logger      *zap.Logger
}

// Dispatcher delivers messages from a bounded queue on background workers.
// Enqueue never blocks; failed sends are logged and handed to the console
// fallback, never retried.
type Dispatcher struct {
	senders  map[string]Sender
	fallback Sender
	queue    chan Message
	workers  int
	timeout  time.Duration
	log      *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Dispatcher{
		senders:  map[string]Sender{},
		fallback: ConsoleSender{Logger: opts.Logger},
		queue:    make(chan Message, opts.QueueSize),
		workers:  opts.Workers,
		timeout:  opts.SendTimeout,
		log:      opts.Logger,
	}
}

// Register binds a sender to a channel name. Call before Start.
func (d *Dispatcher) Register(channel string, s Sender) {
	if s == nil {
		return
	}
	d.senders[channel] = s
}

func (d *Dispatcher) Has(channel string) bool {
	_, ok := d.senders[channel]
	return ok
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for msg := range d.queue {
				metrics.DeliveryQueueDepth.Set(float64(len(d.queue)))
				d.deliver(msg)
			}
		}()
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

// Enqueue reports whether msg was accepted.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- msg:
		metrics.DeliveryQueueDepth.Set(float64(len(d.queue)))
		return true
	default:
		metrics.Deliveries.WithLabelValues(msg.Channel, "dropped").Inc()
		d.log.Warn("delivery queue full", zap.String("channel", msg.Channel), zap.String("event", msg.Event))
		return false
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	s, ok := d.senders[msg.Channel]
	if !ok {
		metrics.Deliveries.WithLabelValues(ChannelConsole, "ok").Inc()
		_ = d.fallback.Send(ctx, msg)
		return
	}
	if err := s.Send(ctx, msg); err != nil {
		metrics.Deliveries.WithLabelValues(msg.Channel, "error").Inc()
		d.log.Warn("delivery failed",
			zap.String("channel", msg.Channel),
			zap.String("to", msg.To),
			zap.String("event", msg.Event),
			zap.Error(err),
		)
		_ = d.fallback.Send(ctx, fallbackCopy(msg))
		return
	}
	metrics.Deliveries.WithLabelValues(msg.Channel, "ok").Inc()
}

func fallbackCopy(msg Message) Message {
	msg.Subject = "[FALLBACK] " + msg.Subject
	return msg
}

// NotifyCode queues the login code mail. Without an email channel the code
// goes to the operator log.
func (d *Dispatcher) NotifyCode(_ context.Context, identity, code string, ttl time.Duration) {
	msg, err := OTPMessage(identity, code, ttl)
	if err != nil {
		d.log.Error("render otp message", zap.Error(err))
		return
	}
	if !d.Has(ChannelEmail) {
		msg.Channel = ChannelConsole
		msg.Subject = "OTP for " + identity
	}
	if !d.Enqueue(msg) {
		_ = d.fallback.Send(context.Background(), fallbackCopy(msg))
	}
}

// Broadcast queues text on each named channel that has a sender and returns
// how many were accepted.
func (d *Dispatcher) Broadcast(channels []string, event, text string) int {
	n := 0
	for _, ch := range channels {
		if !d.Has(ch) {
			continue
		}
		if d.Enqueue(Message{Channel: ch, Event: event, Subject: event, Text: text}) {
			n++
		}
	}
	return n
}
