package bootstrap

import (
	appconfig "github.com/wolfman30/riverfront-whatsapp-bot/internal/config"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/keepalive"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

// BuildKeepAlive returns a self pinger, or nil when disabled or when no
// public URL is known.
func BuildKeepAlive(cfg *appconfig.Config, logger *logging.Logger) *keepalive.Pinger {
	if cfg == nil || !cfg.KeepAliveEnabled {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PublicBaseURL == "" {
		logger.Info("keep-alive disabled; no public base url configured")
		return nil
	}
	return keepalive.NewPinger(cfg.PublicBaseURL, logger).WithInterval(cfg.KeepAliveInterval)
}
