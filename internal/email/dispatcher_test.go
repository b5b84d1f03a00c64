package email_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mbevents/backend/internal/email"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingSender) Send(_ context.Context, to, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	sender := &recordingSender{}
	d := email.NewDispatcher(sender, slog.Default(), 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Enqueue(email.Message{To: "a@x.com", Subject: "welcome"})
	d.Enqueue(email.Message{To: "b@x.com", Subject: "welcome"})

	deadline := time.After(2 * time.Second)
	for sender.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("delivered %d messages, want 2", sender.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDispatcher_SendFailure_DoesNotBlockQueue(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp unavailable")}
	d := email.NewDispatcher(sender, slog.Default(), 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Enqueue(email.Message{To: "a@x.com"})

	// The failing send is logged and dropped; a later message still drains.
	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()
	d.Enqueue(email.Message{To: "b@x.com"})

	deadline := time.After(2 * time.Second)
	for sender.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("queue stalled after a send failure")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDispatcher_FullQueue_DropsInsteadOfBlocking(t *testing.T) {
	sender := &recordingSender{}
	d := email.NewDispatcher(sender, slog.Default(), 1)
	// Run is never started: the buffer holds one message, the rest must drop.

	done := make(chan struct{})
	go func() {
		d.Enqueue(email.Message{To: "a@x.com"})
		d.Enqueue(email.Message{To: "b@x.com"})
		d.Enqueue(email.Message{To: "c@x.com"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}
