package queue

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/ports"
	"github.com/wamunyima3/CloudScribe/internal/pkg/metrics"
)

type recordingSender struct {
	mu    sync.Mutex
	fails int
	calls int
	got   []ports.Mail
	done  chan struct{}
	want  int
}

func newRecordingSender(want, fails int) *recordingSender {
	return &recordingSender{want: want, fails: fails, done: make(chan struct{})}
}

func (s *recordingSender) Send(_ context.Context, m ports.Mail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fails > 0 {
		s.fails--
		return errors.New("smtp down")
	}
	s.got = append(s.got, m)
	if len(s.got) == s.want {
		close(s.done)
	}
	return nil
}

func (s *recordingSender) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for deliveries")
	}
}

func TestMailDispatcher_PreservesPerRecipientOrder(t *testing.T) {
	sender := newRecordingSender(20, 0)
	d := NewMailDispatcher(4, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < 10; i++ {
		data := map[string]any{"n": i}
		if err := d.Send(ctx, ports.Mail{To: "a@x.io", Template: "t", Data: data}); err != nil {
			t.Fatalf("send: %v", err)
		}
		if err := d.Send(ctx, ports.Mail{To: "b@x.io", Template: "t", Data: data}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	sender.wait(t)

	next := map[string]int{}
	sender.mu.Lock()
	defer sender.mu.Unlock()
	for _, m := range sender.got {
		if n := m.Data["n"].(int); n != next[m.To] {
			t.Fatalf("out of order for %s: got %d want %d", m.To, n, next[m.To])
		}
		next[m.To]++
	}
}

func TestMailDispatcher_RetriesThenSucceeds(t *testing.T) {
	sender := newRecordingSender(1, 2)
	d := NewMailDispatcher(1, sender, zerolog.Nop(), WithBackoff(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	if err := d.Send(ctx, ports.Mail{To: "a@x.io", Template: "t"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	sender.wait(t)
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", sender.calls)
	}
}

func TestMailDispatcher_GivesUpAfterMaxAttempts(t *testing.T) {
	sender := newRecordingSender(1, 10)
	d := NewMailDispatcher(1, sender, zerolog.Nop(), WithBackoff(time.Millisecond))
	d.Start(context.Background())

	if err := d.Send(context.Background(), ports.Mail{To: "a@x.io", Template: "t"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	d.Close()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.calls != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, sender.calls)
	}
}

func TestMailDispatcher_QueueFull(t *testing.T) {
	d := NewMailDispatcher(1, newRecordingSender(0, 0), zerolog.Nop())
	// Workers are not started so the channel fills up.
	for i := 0; i < channelBuffer; i++ {
		if err := d.Send(context.Background(), ports.Mail{To: "a@x.io"}); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	if err := d.Send(context.Background(), ports.Mail{To: "a@x.io"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestMailDispatcher_SendAfterClose(t *testing.T) {
	d := NewMailDispatcher(2, newRecordingSender(0, 0), zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()
	if err := d.Send(context.Background(), ports.Mail{To: "a@x.io"}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewMailDispatcher(8, nil, zerolog.Nop())
	a, b := d.shardIndex("a@x.io"), d.shardIndex("a@x.io")
	if a != b || a < 0 || a >= 8 {
		t.Fatalf("unexpected shard %d %d", a, b)
	}
}

func queueDepth(t *testing.T, worker int) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(worker)).Write(&m); err != nil {
		t.Fatalf("read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMailDispatcher_CloseDrainsAfterStartContextCancelled(t *testing.T) {
	sender := newRecordingSender(3, 0)
	d := NewMailDispatcher(1, sender, zerolog.Nop())
	before := queueDepth(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)
	for i := 0; i < 3; i++ {
		if err := d.Send(context.Background(), ports.Mail{To: "a@x.io", Template: "t"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	d.Close()

	sender.mu.Lock()
	got := len(sender.got)
	sender.mu.Unlock()
	if got != 3 {
		t.Fatalf("expected queued mail delivered on close, got %d", got)
	}
	if after := queueDepth(t, 0); after != before {
		t.Fatalf("queue depth %v after close, want %v", after, before)
	}
}

type blockingSender struct {
	mu    sync.Mutex
	calls int
}

func (s *blockingSender) Send(ctx context.Context, _ ports.Mail) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func TestMailDispatcher_CloseTimeoutDropsRest(t *testing.T) {
	sender := &blockingSender{}
	d := NewMailDispatcher(1, sender, zerolog.Nop(), WithBackoff(time.Millisecond))
	before := queueDepth(t, 0)
	d.Start(context.Background())
	for i := 0; i < 5; i++ {
		if err := d.Send(context.Background(), ports.Mail{To: "a@x.io", Template: "t"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	start := time.Now()
	d.closeWithin(20 * time.Millisecond)
	if time.Since(start) > time.Second {
		t.Fatalf("close did not honour its timeout")
	}
	sender.mu.Lock()
	calls := sender.calls
	sender.mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected only the in-flight mail attempted, got %d calls", calls)
	}
	if after := queueDepth(t, 0); after != before {
		t.Fatalf("queue depth %v after close, want %v", after, before)
	}
}
