package keepalive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

func TestPingerURL(t *testing.T) {
	assert.Equal(t, "https://bot.example.com/ping", NewPinger("https://bot.example.com/", nil).URL())
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PingPath, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"status":"alive"}`))
	}))
	defer server.Close()

	require.NoError(t, NewPinger(server.URL, logging.New("error")).Ping(context.Background()))
}

func TestPingUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	err := NewPinger(server.URL, logging.New("error")).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPingTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	p := NewPinger(server.URL, logging.New("error")).WithTimeout(20 * time.Millisecond)
	assert.ErrorIs(t, p.Ping(context.Background()), context.DeadlineExceeded)
}

func TestRunPingsUntilCancelled(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	p := NewPinger(server.URL, logging.New("error")).WithInterval(10 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return hits.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWithIgnoresNonPositive(t *testing.T) {
	p := NewPinger("http://x", nil).WithInterval(0).WithTimeout(-1).WithHTTPClient(nil)
	assert.Equal(t, 14*time.Minute, p.interval)
	assert.Equal(t, 10*time.Second, p.timeout)
	assert.NotNil(t, p.httpClient)
}
