package whatsapp

// WebhookEvent is the top-level structure Meta posts to the webhook.
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one WhatsApp Business Account entry in a delivery.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change carries the value of a subscribed field.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value holds the messages or status updates of a change.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata identifies the business phone number that received the event.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender profile attached to a delivery.
type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Message is a single user message.
type Message struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
	Button      *QuickReply  `json:"button,omitempty"`
}

// Text is the body of a text message.
type Text struct {
	Body string `json:"body"`
}

// Interactive is the payload of a tapped reply button or list row.
type Interactive struct {
	Type        string  `json:"type"`
	ButtonReply *Choice `json:"button_reply,omitempty"`
	ListReply   *Choice `json:"list_reply,omitempty"`
}

// Choice identifies the option the user picked.
type Choice struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// QuickReply is a template quick-reply button tap.
type QuickReply struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

// Status is a delivery/read receipt for a message the business sent.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	RecipientID string `json:"recipient_id"`
}

// SendRequest is the body of a Graph API send-message call.
type SendRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *SendText        `json:"text,omitempty"`
	Interactive      *SendInteractive `json:"interactive,omitempty"`
}

// SendText is the text part of an outbound message.
type SendText struct {
	Body string `json:"body"`
}

// SendInteractive is an outbound reply-button message.
type SendInteractive struct {
	Type   string     `json:"type"`
	Body   SendText   `json:"body"`
	Action SendAction `json:"action"`
}

// SendAction lists the reply buttons of an interactive message.
type SendAction struct {
	Buttons []SendButton `json:"buttons"`
}

// SendButton is one reply button.
type SendButton struct {
	Type  string `json:"type"`
	Reply Choice `json:"reply"`
}

// SendResponse is the Graph API response to a send-message call.
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts,omitempty"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages,omitempty"`
	Error *GraphError `json:"error,omitempty"`
}

// MessageID returns the id of the first accepted message, if any.
func (r *SendResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

// GraphError is an error object returned by the Graph API.
type GraphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}
