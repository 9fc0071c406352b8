package notification

import (
	"context"
	"sync"
	"time"

	"governance/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options sizes the dispatcher.
type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration // per message, resolve and all channels
}

type job struct {
	event       Event
	recipientID uuid.UUID
	payload     map[string]any
	queuedAt    time.Time
}

// Dispatcher is a Gateway backed by a bounded queue and a worker pool.
type Dispatcher struct {
	directory Directory
	channels  []Channel
	opts      Options
	log       *zap.Logger
	metrics   *metrics.Metrics

	queue chan job
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(directory Directory, channels []Channel, opts Options, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		directory: directory,
		channels:  channels,
		opts:      opts,
		log:       log.Named("notification"),
		metrics:   m,
		queue:     make(chan job, opts.QueueSize),
	}
}

// Start launches the workers. They exit when Close is called.
func (d *Dispatcher) Start() {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Send enqueues a notification. It never blocks; a full queue drops the
// message and reports ErrQueueFull.
func (d *Dispatcher) Send(_ context.Context, event Event, recipientID uuid.UUID, payload map[string]any) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- job{event: event, recipientID: recipientID, payload: payload, queuedAt: time.Now()}:
		return nil
	default:
		d.metrics.IncDropped()
		d.log.Warn("notification dropped, queue full",
			zap.String("event", string(event)),
			zap.Stringer("recipient_id", recipientID))
		return ErrQueueFull
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

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	defer cancel()

	recipient := Recipient{UserID: j.recipientID}
	if d.directory != nil {
		resolved, err := d.directory.Resolve(ctx, j.recipientID)
		if err != nil {
			d.log.Warn("recipient lookup failed, delivering by id only",
				zap.Stringer("recipient_id", j.recipientID), zap.Error(err))
		} else {
			recipient = resolved
		}
	}

	msg := Message{Event: j.event, Recipient: recipient, Payload: j.payload, SentAt: j.queuedAt}
	for _, ch := range d.channels {
		if err := ch.Deliver(ctx, msg); err != nil {
			d.metrics.IncNotification(ch.Name(), "failed")
			d.log.Error("notification delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("event", string(j.event)),
				zap.Stringer("recipient_id", j.recipientID),
				zap.Error(err))
			continue
		}
		d.metrics.IncNotification(ch.Name(), "sent")
	}
}

var _ Gateway = (*Dispatcher)(nil)
