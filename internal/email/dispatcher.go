package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/mbevents/backend/internal/metrics"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Enqueuer is what the usecases see: fire-and-forget, no error return.
type Enqueuer interface {
	Enqueue(msg Message)
}

// Dispatcher decouples email delivery from request handling. Usecases
// enqueue after their primary state transition commits; delivery failures
// are logged and counted, never surfaced to the caller.
type Dispatcher struct {
	sender      Sender
	logger      *slog.Logger
	queue       chan Message
	sendTimeout time.Duration
}

func NewDispatcher(sender Sender, logger *slog.Logger, buffer int) *Dispatcher {
	return &Dispatcher{
		sender:      sender,
		logger:      logger.With("component", "email_dispatcher"),
		queue:       make(chan Message, buffer),
		sendTimeout: 10 * time.Second,
	}
}

// Enqueue never blocks the request path. When the buffer is full the
// message is dropped with a warning.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		metrics.EmailsTotal.WithLabelValues("dropped").Inc()
		d.logger.Warn("mail queue full, dropping message", "to", msg.To, "subject", msg.Subject)
	}
}

// Run delivers queued messages until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info("email dispatcher started", "buffer", cap(d.queue))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("email dispatcher shut down", "pending", len(d.queue))
			return
		case msg := <-d.queue:
			d.deliver(msg)
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, msg.To, msg.Subject, msg.HTML); err != nil {
		metrics.EmailsTotal.WithLabelValues("failed").Inc()
		d.logger.Error("send email", "to", msg.To, "subject", msg.Subject, "error", err)
		return
	}
	metrics.EmailsTotal.WithLabelValues("sent").Inc()
}
