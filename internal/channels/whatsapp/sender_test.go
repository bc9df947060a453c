package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/autoreply"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/replies"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

func newCapturingServer(t *testing.T, got *[]SendRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*got = append(*got, req)
		acceptedResponse(w, "wamid.OUT")
	}))
	t.Cleanup(server.Close)
	return server
}

func TestReplySenderText(t *testing.T) {
	var got []SendRequest
	server := newCapturingServer(t, &got)
	sender := NewReplySender(NewClient("token", WithGraphAPIBase(server.URL)), "PNID", logging.New("error"))

	err := sender.SendReply(context.Background(), autoreply.OutboundReply{
		RecipientID: "15551234567",
		Body:        replies.WelcomeText,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "text", got[0].Type)
	assert.Equal(t, "15551234567", got[0].To)
	assert.Equal(t, replies.WelcomeText, got[0].Text.Body)
}

func TestReplySenderInteractive(t *testing.T) {
	var got []SendRequest
	server := newCapturingServer(t, &got)
	sender := NewReplySender(NewClient("token", WithGraphAPIBase(server.URL)), "PNID", nil)

	err := sender.SendReply(context.Background(), autoreply.OutboundReply{
		RecipientID: "1",
		Body:        "Welcome",
		Buttons:     []replies.Button{{ID: "room", Title: "Rooms"}},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "interactive", got[0].Type)
	assert.Equal(t, "Welcome", got[0].Interactive.Body.Body)
}

func TestReplySenderFallsBackToText(t *testing.T) {
	var got []SendRequest
	server := newCapturingServer(t, &got)
	sender := NewReplySender(NewClient("token", WithGraphAPIBase(server.URL)), "PNID", nil)

	long := strings.Repeat("a", MaxInteractiveBody+1)
	err := sender.SendReply(context.Background(), autoreply.OutboundReply{
		RecipientID: "1",
		Body:        long,
		Buttons:     []replies.Button{{ID: "room", Title: "Rooms"}},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "text", got[0].Type)
	assert.Equal(t, long, got[0].Text.Body)
}

func TestReplySenderPropagatesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"expired","code":190}}`))
	}))
	defer server.Close()
	sender := NewReplySender(NewClient("token", WithGraphAPIBase(server.URL)), "PNID", nil)

	err := sender.SendReply(context.Background(), autoreply.OutboundReply{RecipientID: "1", Body: "hi"})
	assert.ErrorIs(t, err, ErrGraphAPI)
}

func TestNewReplySenderRequiresClient(t *testing.T) {
	assert.Panics(t, func() { NewReplySender(nil, "PNID", nil) })
}
