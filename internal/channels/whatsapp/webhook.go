package whatsapp

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/autoreply"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/observability/metrics"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

var tracer = otel.Tracer("riverfront.internal.channels.whatsapp")

const (
	maxWebhookBody   = 1 << 20
	signatureHeader  = "X-Hub-Signature-256"
	signaturePrefix  = "sha256="
	subscribeMode    = "subscribe"
	statusOK         = "ok"
	statusIgnored    = "ignored"
	statusForbidden  = "forbidden"
	statusMalformed  = "malformed"
	statusBadSig     = "invalid_signature"
	statusReadFailed = "read_failed"
)

// VerificationChallenge holds the hub.* query parameters of a subscription check.
type VerificationChallenge struct {
	Mode      string
	Token     string
	Challenge string
}

// ChallengeFromQuery reads a VerificationChallenge from URL query values.
func ChallengeFromQuery(q url.Values) VerificationChallenge {
	return VerificationChallenge{
		Mode:      q.Get("hub.mode"),
		Token:     q.Get("hub.verify_token"),
		Challenge: q.Get("hub.challenge"),
	}
}

// WebhookHandler handles WhatsApp webhook verification and inbound deliveries.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	onMessage   func(msg autoreply.InboundMessage)
	metrics     *metrics.WebhookMetrics
	logger      *logging.Logger
}

// NewWebhookHandler creates a webhook handler. onMessage is called once per
// extracted message, after the delivery has been acknowledged. An empty
// appSecret disables signature verification.
func NewWebhookHandler(verifyToken, appSecret string, onMessage func(autoreply.InboundMessage), m *metrics.WebhookMetrics, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		onMessage:   onMessage,
		metrics:     m,
		logger:      logger,
	}
}

// Verify reports whether c is a valid subscription check and, if so, returns
// the challenge to echo back. An empty configured token never verifies.
func (h *WebhookHandler) Verify(c VerificationChallenge) (string, bool) {
	if c.Mode != subscribeMode || h.verifyToken == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(c.Token), []byte(h.verifyToken)) != 1 {
		return "", false
	}
	return c.Challenge, true
}

// HandleVerification handles the GET webhook verification challenge from Meta.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		h.metrics.ObserveWebhookLatency(metrics.KindVerification, time.Since(start).Seconds())
	}()

	c := ChallengeFromQuery(r.URL.Query())
	challenge, ok := h.Verify(c)
	if !ok {
		h.metrics.ObserveInbound(metrics.KindVerification, statusForbidden)
		h.logger.Warn("whatsapp: webhook verification failed",
			"mode", c.Mode,
			"token_present", c.Token != "",
		)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	h.metrics.ObserveInbound(metrics.KindVerification, statusOK)
	h.logger.Info("whatsapp: webhook verified")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, challenge)
}

// HandleInbound handles POST webhook deliveries. Meta retries anything that
// is not a 2xx, so every delivery is acknowledged with 200, including ones
// that cannot be read, fail the signature check or do not decode.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, span := tracer.Start(r.Context(), "whatsapp.webhook.inbound")
	defer span.End()
	defer func() {
		h.metrics.ObserveWebhookLatency(metrics.KindDelivery, time.Since(start).Seconds())
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.reject(w, statusReadFailed, "whatsapp: failed to read webhook body", err)
		return
	}

	if h.appSecret != "" && !VerifySignature(h.appSecret, body, r.Header.Get(signatureHeader)) {
		h.reject(w, statusBadSig, "whatsapp: invalid webhook signature", nil)
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.reject(w, statusMalformed, "whatsapp: malformed webhook payload", err)
		return
	}

	messages := ParseWebhookEvent(event)
	span.SetAttributes(
		attribute.String("whatsapp.object", event.Object),
		attribute.Int("whatsapp.messages", len(messages)),
	)
	if len(messages) == 0 {
		h.metrics.ObserveInbound(metrics.KindDelivery, statusIgnored)
	} else {
		h.metrics.ObserveInbound(metrics.KindDelivery, statusOK)
	}

	writeAck(w)

	if h.onMessage == nil {
		return
	}
	for _, msg := range messages {
		h.onMessage(msg)
	}
}

func (h *WebhookHandler) reject(w http.ResponseWriter, status, msg string, err error) {
	h.metrics.ObserveInbound(metrics.KindDelivery, status)
	if err != nil {
		h.logger.Warn(msg, "error", err)
	} else {
		h.logger.Warn(msg)
	}
	writeAck(w)
}

func writeAck(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ParsePayload decodes a raw webhook body and extracts its messages.
func ParsePayload(body []byte) ([]autoreply.InboundMessage, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("whatsapp: decode webhook payload: %w", err)
	}
	return ParseWebhookEvent(event), nil
}

// ParseWebhookEvent extracts the user messages of a delivery, in payload
// order. Status callbacks and messages without a sender are skipped.
func ParseWebhookEvent(event WebhookEvent) []autoreply.InboundMessage {
	var messages []autoreply.InboundMessage
	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			for _, m := range change.Value.Messages {
				if strings.TrimSpace(m.From) == "" {
					continue
				}
				messages = append(messages, autoreply.InboundMessage{
					MessageID:     m.ID,
					PhoneNumberID: change.Value.Metadata.PhoneNumberID,
					SenderID:      m.From,
					Type:          m.Type,
					Text:          messageText(m),
				})
			}
		}
	}
	return messages
}

// messageText returns the text to match against the reply table. Button taps
// match on their id, falling back to the visible title. Media and other
// message types have no text.
func messageText(m Message) string {
	switch {
	case m.Text != nil:
		return m.Text.Body
	case m.Interactive != nil:
		if c := m.Interactive.ButtonReply; c != nil {
			return firstNonEmpty(c.ID, c.Title)
		}
		if c := m.Interactive.ListReply; c != nil {
			return firstNonEmpty(c.ID, c.Title)
		}
	case m.Button != nil:
		return firstNonEmpty(m.Button.Payload, m.Button.Text)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// VerifySignature verifies the X-Hub-Signature-256 header against body.
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || len(signature) <= len(signaturePrefix) {
		return false
	}
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}
	return hmac.Equal([]byte(Sign(appSecret, body)), []byte(signature))
}

// Sign returns the X-Hub-Signature-256 value Meta would send for body.
func Sign(appSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}
