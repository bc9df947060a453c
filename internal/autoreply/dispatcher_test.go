package autoreply

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/observability/metrics"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/replies"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

type stubSender struct {
	mu    sync.Mutex
	sent  []OutboundReply
	err   error
	block chan struct{}
}

func (s *stubSender) SendReply(ctx context.Context, reply OutboundReply) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, reply)
	return s.err
}

func (s *stubSender) replies() []OutboundReply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OutboundReply(nil), s.sent...)
}

func newTestDispatcher(t *testing.T, sender Sender, opts ...func(*Config)) *Dispatcher {
	t.Helper()
	cfg := Config{
		Table:       replies.DefaultTable(),
		Sender:      sender,
		SendTimeout: time.Second,
		Logger:      logging.New("error"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewDispatcher(cfg)
}

func waitAll(t *testing.T, deliveries ...*Delivery) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, d := range deliveries {
		select {
		case <-d.Done():
		case <-ctx.Done():
			t.Fatal("delivery did not finish in time")
		}
	}
}

func TestDispatchHiThereScenario(t *testing.T) {
	sender := &stubSender{}
	d := newTestDispatcher(t, sender)

	delivery := d.Dispatch(InboundMessage{SenderID: "15551234567", Text: "Hi there!", Type: "text"})
	require.NoError(t, delivery.Wait(context.Background()))

	sent := sender.replies()
	require.Len(t, sent, 1)
	assert.Equal(t, "15551234567", sent[0].RecipientID)
	assert.Equal(t, replies.WelcomeText, sent[0].Body)
	assert.Equal(t, "greeting", sent[0].Group)
	assert.Nil(t, sent[0].Buttons)
}

func TestReplySelection(t *testing.T) {
	d := newTestDispatcher(t, &stubSender{})

	tests := []struct {
		text string
		body string
	}{
		{"hello", replies.WelcomeText},
		{"what is the price?", replies.PricingText},
		{"any room available?", replies.AvailabilityText},
		{"¿que tal?", replies.HelpText},
		{"", replies.HelpText},
	}
	for _, tt := range tests {
		reply := d.Reply(InboundMessage{SenderID: "1", Text: tt.text})
		assert.Equal(t, tt.body, reply.Body, "text %q", tt.text)
		assert.Equal(t, "1", reply.RecipientID)
	}
}

func TestDispatchAllSendsOncePerMessage(t *testing.T) {
	sender := &stubSender{}
	d := newTestDispatcher(t, sender)

	deliveries := d.DispatchAll([]InboundMessage{
		{SenderID: "a", Text: "hi"},
		{SenderID: "b", Text: "price"},
		{SenderID: "c", Text: "room"},
	})
	require.Len(t, deliveries, 3)
	waitAll(t, deliveries...)

	byRecipient := map[string]string{}
	for _, r := range sender.replies() {
		byRecipient[r.RecipientID] = r.Body
	}
	assert.Equal(t, map[string]string{
		"a": replies.WelcomeText,
		"b": replies.PricingText,
		"c": replies.AvailabilityText,
	}, byRecipient)
}

func TestDispatchSameMessageTwiceSendsTwice(t *testing.T) {
	sender := &stubSender{}
	d := newTestDispatcher(t, sender)
	msg := InboundMessage{MessageID: "wamid.1", SenderID: "15551234567", Text: "cost?"}

	waitAll(t, d.Dispatch(msg), d.Dispatch(msg))

	sent := sender.replies()
	require.Len(t, sent, 2)
	assert.Equal(t, sent[0], sent[1])
}

func TestDispatchDoesNotBlockOnSend(t *testing.T) {
	sender := &stubSender{block: make(chan struct{})}
	d := newTestDispatcher(t, sender)

	returned := make(chan *Delivery, 1)
	go func() { returned <- d.Dispatch(InboundMessage{SenderID: "x", Text: "hi"}) }()

	var delivery *Delivery
	select {
	case delivery = <-returned:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on the sender")
	}
	select {
	case <-delivery.Done():
		t.Fatal("delivery finished before the sender was released")
	default:
	}
	assert.NoError(t, delivery.Err())

	close(sender.block)
	waitAll(t, delivery)
	assert.NoError(t, delivery.Err())
}

func TestDispatchSendFailureIsCaptured(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWebhookMetrics(reg)
	sendErr := errors.New("graph api: rate limited")
	sender := &stubSender{err: sendErr}
	d := newTestDispatcher(t, sender, func(c *Config) { c.Metrics = m })

	delivery := d.Dispatch(InboundMessage{SenderID: "x", Text: "hi"})
	err := delivery.Wait(context.Background())
	assert.ErrorIs(t, err, sendErr)
	assert.ErrorIs(t, delivery.Err(), sendErr)
}

func TestDispatchSendTimeout(t *testing.T) {
	sender := &stubSender{block: make(chan struct{})}
	defer close(sender.block)
	d := newTestDispatcher(t, sender, func(c *Config) { c.SendTimeout = 20 * time.Millisecond })

	delivery := d.Dispatch(InboundMessage{SenderID: "x", Text: "hi"})
	waitAll(t, delivery)
	assert.ErrorIs(t, delivery.Err(), context.DeadlineExceeded)
}

func TestDispatchRecoversSenderPanic(t *testing.T) {
	d := newTestDispatcher(t, SenderFunc(func(context.Context, OutboundReply) error {
		panic("boom")
	}))

	delivery := d.Dispatch(InboundMessage{SenderID: "x", Text: "hi"})
	waitAll(t, delivery)
	require.Error(t, delivery.Err())
	assert.Contains(t, delivery.Err().Error(), "boom")
}

func TestDeliveryWaitHonoursContext(t *testing.T) {
	sender := &stubSender{block: make(chan struct{})}
	defer close(sender.block)
	d := newTestDispatcher(t, sender)

	delivery := d.Dispatch(InboundMessage{SenderID: "x", Text: "hi"})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, delivery.Wait(ctx), context.DeadlineExceeded)
}

func TestDispatcherWaitDrainsInflight(t *testing.T) {
	sender := &stubSender{block: make(chan struct{})}
	d := newTestDispatcher(t, sender)
	d.Dispatch(InboundMessage{SenderID: "x", Text: "hi"})

	short, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(short), context.DeadlineExceeded)

	close(sender.block)
	ctx, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	assert.NoError(t, d.Wait(ctx))
	assert.Len(t, sender.replies(), 1)
}

func TestInteractiveMenusAttachButtons(t *testing.T) {
	table := replies.MustNewTable([]replies.Group{{
		Name:     "greeting",
		Keywords: []string{"hi"},
		Reply: replies.Reply{Text: "Welcome", Buttons: []replies.Button{
			{ID: "price", Title: "Rates"},
		}},
	}}, replies.Reply{Text: "help"})

	plain := newTestDispatcher(t, &stubSender{}, func(c *Config) { c.Table = table })
	assert.Nil(t, plain.Reply(InboundMessage{SenderID: "x", Text: "hi"}).Buttons)

	menus := newTestDispatcher(t, &stubSender{}, func(c *Config) {
		c.Table = table
		c.InteractiveMenus = true
	})
	reply := menus.Reply(InboundMessage{SenderID: "x", Text: "hi"})
	assert.Equal(t, "Welcome", reply.Body)
	assert.Equal(t, []replies.Button{{ID: "price", Title: "Rates"}}, reply.Buttons)
	assert.Nil(t, menus.Reply(InboundMessage{SenderID: "x", Text: "zzz"}).Buttons)
}

func TestNewDispatcherRequiresCollaborators(t *testing.T) {
	assert.Panics(t, func() { NewDispatcher(Config{Sender: &stubSender{}}) })
	assert.Panics(t, func() { NewDispatcher(Config{Table: replies.DefaultTable()}) })
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 2))
	assert.Equal(t, "🌿🌿…", truncate("🌿🌿🌿", 2))
}

type stubDates struct {
	answers map[string]string
	calls   int
}

func (s *stubDates) Respond(text string) (string, bool) {
	s.calls++
	body, ok := s.answers[text]
	return body, ok
}

func TestDateResponderAnswersFirst(t *testing.T) {
	dates := &stubDates{answers: map[string]string{"room on 14 feb?": "3 rooms free"}}
	sender := &stubSender{}
	d := newTestDispatcher(t, sender, func(c *Config) { c.Dates = dates })

	reply := d.Reply(InboundMessage{SenderID: "x", MessageID: "m1", Text: "room on 14 feb?"})
	assert.Equal(t, "3 rooms free", reply.Body)
	assert.Equal(t, DateLookupGroup, reply.Group)
	assert.Equal(t, "m1", reply.InReplyTo)

	reply = d.Reply(InboundMessage{SenderID: "x", Text: "any room available?"})
	assert.Equal(t, replies.AvailabilityText, reply.Body)
	assert.Equal(t, 2, dates.calls)

	require.NoError(t, d.Dispatch(InboundMessage{SenderID: "x", Text: "room on 14 feb?"}).Wait(context.Background()))
	require.Len(t, sender.replies(), 1)
	assert.Equal(t, "3 rooms free", sender.replies()[0].Body)
}

func TestWithoutDateResponderDatesUseTable(t *testing.T) {
	d := newTestDispatcher(t, &stubSender{})
	reply := d.Reply(InboundMessage{SenderID: "x", Text: "room on 14 feb?"})
	assert.Equal(t, replies.AvailabilityText, reply.Body)
	assert.Equal(t, "availability", reply.Group)
}
