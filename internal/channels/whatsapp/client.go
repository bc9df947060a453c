package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultGraphAPIBase    = "https://graph.facebook.com"
	DefaultGraphAPIVersion = "v21.0"
	defaultHTTPTimeout     = 10 * time.Second

	// Limits of the reply-button interactive message.
	MaxButtons         = 3
	MaxButtonTitle     = 20
	MaxInteractiveBody = 1024
)

var (
	// ErrGraphAPI is returned when the Graph API rejects a send.
	ErrGraphAPI = errors.New("whatsapp: graph api error")
	// ErrInvalidMessage is returned when a message violates a provider limit.
	ErrInvalidMessage = errors.New("whatsapp: invalid message")
)

// Client sends messages through the WhatsApp Cloud API.
type Client struct {
	accessToken  string
	graphAPIBase string
	apiVersion   string
	httpClient   *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithGraphAPIBase overrides the Graph API base URL (useful for testing).
func WithGraphAPIBase(base string) ClientOption {
	return func(c *Client) {
		if base != "" {
			c.graphAPIBase = strings.TrimRight(base, "/")
		}
	}
}

// WithAPIVersion overrides the Graph API version path segment.
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new Cloud API client.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	c := &Client{
		accessToken:  accessToken,
		graphAPIBase: DefaultGraphAPIBase,
		apiVersion:   DefaultGraphAPIVersion,
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MessagesURL returns the send-message endpoint for a business phone number.
func (c *Client) MessagesURL(phoneNumberID string) string {
	return fmt.Sprintf("%s/%s/%s/messages", c.graphAPIBase, c.apiVersion, phoneNumberID)
}

// SendTextMessage sends a plain text message to the given recipient.
func (c *Client) SendTextMessage(ctx context.Context, phoneNumberID, to, body string) (*SendResponse, error) {
	req := SendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &SendText{Body: body},
	}
	return c.send(ctx, phoneNumberID, req)
}

// SendButtonMessage sends an interactive message with up to three reply buttons.
func (c *Client) SendButtonMessage(ctx context.Context, phoneNumberID, to, body string, buttons []Choice) (*SendResponse, error) {
	if err := ValidateButtonMessage(body, buttons); err != nil {
		return nil, err
	}
	action := SendAction{Buttons: make([]SendButton, 0, len(buttons))}
	for _, b := range buttons {
		action.Buttons = append(action.Buttons, SendButton{Type: "reply", Reply: b})
	}
	req := SendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &SendInteractive{
			Type:   "button",
			Body:   SendText{Body: body},
			Action: action,
		},
	}
	return c.send(ctx, phoneNumberID, req)
}

// ValidateButtonMessage checks body and buttons against the interactive limits.
func ValidateButtonMessage(body string, buttons []Choice) error {
	if len(buttons) == 0 || len(buttons) > MaxButtons {
		return fmt.Errorf("%w: %d buttons, want 1 to %d", ErrInvalidMessage, len(buttons), MaxButtons)
	}
	if body == "" || utf8.RuneCountInString(body) > MaxInteractiveBody {
		return fmt.Errorf("%w: body must be 1 to %d characters", ErrInvalidMessage, MaxInteractiveBody)
	}
	for _, b := range buttons {
		if b.ID == "" || b.Title == "" || utf8.RuneCountInString(b.Title) > MaxButtonTitle {
			return fmt.Errorf("%w: button %q needs an id and a title of at most %d characters", ErrInvalidMessage, b.ID, MaxButtonTitle)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, phoneNumberID string, req SendRequest) (*SendResponse, error) {
	if phoneNumberID == "" {
		return nil, fmt.Errorf("%w: phone number id is required", ErrInvalidMessage)
	}
	if req.To == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: marshal send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.MessagesURL(phoneNumberID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: read response: %w", err)
	}

	var sendResp SendResponse
	decodeErr := json.Unmarshal(respBody, &sendResp)

	if sendResp.Error != nil {
		return &sendResp, fmt.Errorf("%w: code %d: %s", ErrGraphAPI, sendResp.Error.Code, sendResp.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &sendResp, fmt.Errorf("%w: unexpected status %d: %s", ErrGraphAPI, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("whatsapp: unmarshal response: %w", decodeErr)
	}

	return &sendResp, nil
}
