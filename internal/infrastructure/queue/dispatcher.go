package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/pkg/metrics"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 256
	maxAttempts     = 3
	defaultBackoff  = time.Second
	shutdownTimeout = 10 * time.Second
)

var (
	ErrQueueFull = errors.New("mail queue full")
	ErrStopped   = errors.New("mail dispatcher stopped")
)

// MailDispatcher delivers mail asynchronously through a fixed set of workers.
// Messages are sharded by recipient so one user's mail is delivered in order.
type MailDispatcher struct {
	workers []chan ports.Mail
	sender  ports.Mailer
	backoff time.Duration
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

type Option func(*MailDispatcher)

// WithBackoff sets the base delay between delivery attempts. It doubles on each retry.
func WithBackoff(d time.Duration) Option {
	return func(m *MailDispatcher) { m.backoff = d }
}

// NewMailDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, sender ports.Mailer, log zerolog.Logger, opts ...Option) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers: make([]chan ports.Mail, numWorkers),
		sender:  sender,
		backoff: defaultBackoff,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Mail, channelBuffer)
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Start launches all worker goroutines. Workers keep ctx's values but not its
// cancellation: they run until Close has drained the queue.
func (d *MailDispatcher) Start(ctx context.Context) {
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(wctx, i, ch)
	}
}

// Send enqueues m on the worker owning its recipient without blocking.
func (d *MailDispatcher) Send(_ context.Context, m ports.Mail) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	idx := d.shardIndex(m.To)
	select {
	case d.workers[idx] <- m:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting mail and waits for workers to deliver what is queued.
// After shutdownTimeout pending deliveries are abandoned and the rest of the
// queue is dropped.
func (d *MailDispatcher) Close() {
	d.closeWithin(shutdownTimeout)
}

func (d *MailDispatcher) closeWithin(timeout time.Duration) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	cancel := d.cancel
	d.mu.Unlock()
	if cancel == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		d.log.Warn().Msg("mail dispatcher shutdown timed out, dropping queued mail")
		cancel()
		<-done
	}
	cancel()
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Mail) {
	defer d.wg.Done()
	depth := metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id))
	for m := range ch {
		depth.Dec()
		if ctx.Err() != nil {
			metrics.EmailsTotal.WithLabelValues(m.Template, "dropped").Inc()
			continue
		}
		d.deliver(ctx, id, m)
	}
}

func (d *MailDispatcher) deliver(ctx context.Context, worker int, m ports.Mail) {
	var err error
	wait := d.backoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = d.sender.Send(ctx, m); err == nil {
			metrics.EmailsTotal.WithLabelValues(m.Template, "sent").Inc()
			return
		}
		if attempt == maxAttempts {
			break
		}
		d.log.Warn().Err(err).
			Str("template", m.Template).
			Int("attempt", attempt).
			Int("worker_id", worker).
			Msg("email delivery failed, retrying")
		select {
		case <-ctx.Done():
			err = ctx.Err()
			attempt = maxAttempts
		case <-time.After(wait):
			wait *= 2
		}
	}
	metrics.EmailsTotal.WithLabelValues(m.Template, "failed").Inc()
	d.log.Error().Err(err).
		Str("template", m.Template).
		Int("worker_id", worker).
		Msg("email delivery abandoned")
}
