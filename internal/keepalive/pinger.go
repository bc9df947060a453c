package keepalive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

// PingPath is the endpoint the pinger requests on the public base URL.
const PingPath = "/ping"

// Pinger periodically requests the service's own public ping endpoint so
// hosts that idle inactive instances keep it awake.
type Pinger struct {
	url        string
	interval   time.Duration
	timeout    time.Duration
	httpClient *http.Client
	logger     *logging.Logger
}

// NewPinger creates a pinger for baseURL with a 14 minute interval and a 10s timeout.
func NewPinger(baseURL string, logger *logging.Logger) *Pinger {
	if logger == nil {
		logger = logging.Default()
	}
	return &Pinger{
		url:        strings.TrimRight(baseURL, "/") + PingPath,
		interval:   14 * time.Minute,
		timeout:    10 * time.Second,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// WithInterval sets the time between pings. Non-positive values are ignored.
func (p *Pinger) WithInterval(d time.Duration) *Pinger {
	if d > 0 {
		p.interval = d
	}
	return p
}

// WithTimeout bounds each ping. Non-positive values are ignored.
func (p *Pinger) WithTimeout(d time.Duration) *Pinger {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// WithHTTPClient replaces the underlying HTTP client. Nil is ignored.
func (p *Pinger) WithHTTPClient(c *http.Client) *Pinger {
	if c != nil {
		p.httpClient = c
	}
	return p
}

// URL returns the pinged address.
func (p *Pinger) URL() string {
	return p.url
}

// Run pings on every tick until ctx is done. The first ping happens after one
// interval, once the server is listening.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.logger.Info("keepalive: started", "url", p.url, "interval", p.interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil {
				p.logger.Warn("keepalive: ping failed", "url", p.url, "error", err)
				continue
			}
			p.logger.Debug("keepalive: ping ok", "url", p.url)
		}
	}
}

// Ping performs a single request bounded by the configured timeout.
func (p *Pinger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("keepalive: create request: %w", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("keepalive: ping: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("keepalive: unexpected status %d", resp.StatusCode)
	}
	return nil
}
