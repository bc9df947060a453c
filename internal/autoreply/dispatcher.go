package autoreply

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/observability/metrics"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/replies"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

const (
	defaultSendTimeout = 10 * time.Second
	logTextLimit       = 80
)

// DateLookupGroup is the group reported for replies produced by the DateResponder.
const DateLookupGroup = "availability_lookup"

// Config wires a Dispatcher.
type Config struct {
	Table       *replies.Table
	Sender      Sender
	SendTimeout time.Duration
	// InteractiveMenus attaches the matched group's buttons to the reply.
	InteractiveMenus bool
	// Dates, when set, answers date questions before the keyword table.
	Dates   DateResponder
	Metrics *metrics.WebhookMetrics
	Tracer  trace.Tracer
	Logger  *logging.Logger
}

// Dispatcher selects a keyword reply for each inbound message and sends it
// without blocking the caller. It holds no per-request state.
type Dispatcher struct {
	table       *replies.Table
	sender      Sender
	sendTimeout time.Duration
	interactive bool
	dates       DateResponder
	metrics     *metrics.WebhookMetrics
	tracer      trace.Tracer
	logger      *logging.Logger

	inflight sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Table and Sender are required.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Table == nil {
		panic("autoreply: reply table cannot be nil")
	}
	if cfg.Sender == nil {
		panic("autoreply: sender cannot be nil")
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("riverfront.internal.autoreply")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Dispatcher{
		table:       cfg.Table,
		sender:      cfg.Sender,
		sendTimeout: cfg.SendTimeout,
		interactive: cfg.InteractiveMenus,
		dates:       cfg.Dates,
		metrics:     cfg.Metrics,
		tracer:      cfg.Tracer,
		logger:      cfg.Logger,
	}
}

// Reply builds the outbound reply for msg. Without a DateResponder it has no
// side effects.
func (d *Dispatcher) Reply(msg InboundMessage) OutboundReply {
	if d.dates != nil {
		if body, ok := d.dates.Respond(msg.Text); ok {
			return OutboundReply{
				RecipientID: msg.SenderID,
				Body:        body,
				Group:       DateLookupGroup,
				InReplyTo:   msg.MessageID,
			}
		}
	}
	match := d.table.Select(msg.Text)
	reply := OutboundReply{
		RecipientID: msg.SenderID,
		Body:        match.Reply.Text,
		Group:       match.Group,
		InReplyTo:   msg.MessageID,
	}
	if d.interactive && len(match.Reply.Buttons) > 0 {
		reply.Buttons = append([]replies.Button(nil), match.Reply.Buttons...)
	}
	return reply
}

// Dispatch selects the reply for msg and starts sending it in the background.
// It returns immediately; the send is bounded by the configured timeout and
// its failure is logged, never returned to the caller.
func (d *Dispatcher) Dispatch(msg InboundMessage) *Delivery {
	reply := d.Reply(msg)
	d.metrics.ObserveReply(reply.Group)
	d.logger.Info("autoreply: reply selected",
		"sender_id", msg.SenderID,
		"message_id", msg.MessageID,
		"type", msg.Type,
		"text", truncate(msg.Text, logTextLimit),
		"group", reply.Group,
	)

	delivery := newDelivery(reply)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		delivery.finish(d.send(reply))
	}()
	return delivery
}

// DispatchAll dispatches every message independently.
func (d *Dispatcher) DispatchAll(msgs []InboundMessage) []*Delivery {
	deliveries := make([]*Delivery, 0, len(msgs))
	for _, msg := range msgs {
		deliveries = append(deliveries, d.Dispatch(msg))
	}
	return deliveries
}

// Wait blocks until all in-flight sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) send(reply OutboundReply) (err error) {
	// Detached from the inbound request, which is acknowledged before the send completes.
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	ctx, span := d.tracer.Start(ctx, "autoreply.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("riverfront.reply.group", reply.Group),
		attribute.Bool("riverfront.reply.interactive", len(reply.Buttons) > 0),
	)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("autoreply: sender panic: %v", r)
		}
		elapsed := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			d.metrics.ObserveOutbound("failed", elapsed.Seconds())
			d.logger.Error("autoreply: failed to send reply",
				"recipient_id", reply.RecipientID,
				"group", reply.Group,
				"duration_ms", elapsed.Milliseconds(),
				"error", err,
			)
			return
		}
		d.metrics.ObserveOutbound("sent", elapsed.Seconds())
		d.logger.Info("autoreply: reply sent",
			"recipient_id", reply.RecipientID,
			"group", reply.Group,
			"duration_ms", elapsed.Milliseconds(),
		)
	}()

	return d.sender.SendReply(ctx, reply)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
