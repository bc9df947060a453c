package bootstrap

import (
	"fmt"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/autoreply"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/channels/whatsapp"
	appconfig "github.com/wolfman30/riverfront-whatsapp-bot/internal/config"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/observability/metrics"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/replies"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

// WhatsApp groups the wired WhatsApp components.
type WhatsApp struct {
	Client     *whatsapp.Client
	Sender     *whatsapp.ReplySender
	Dispatcher *autoreply.Dispatcher
	Webhook    *whatsapp.WebhookHandler
}

// BuildWhatsApp wires the Cloud API client, the reply dispatcher and the
// webhook handler that feeds it.
func BuildWhatsApp(cfg *appconfig.Config, table *replies.Table, m *metrics.WebhookMetrics, logger *logging.Logger) (*WhatsApp, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if table == nil {
		return nil, fmt.Errorf("bootstrap: reply table is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	client := whatsapp.NewClient(cfg.WhatsAppAccessToken,
		whatsapp.WithGraphAPIBase(cfg.GraphAPIBase),
		whatsapp.WithAPIVersion(cfg.GraphAPIVersion),
	)
	sender := whatsapp.NewReplySender(client, cfg.WhatsAppPhoneNumberID, logger)
	dispatcherCfg := autoreply.Config{
		Table:            table,
		Sender:           sender,
		SendTimeout:      cfg.SendTimeout,
		InteractiveMenus: cfg.InteractiveMenus,
		Metrics:          m,
		Logger:           logger,
	}
	if checker := BuildAvailability(cfg, logger); checker != nil {
		dispatcherCfg.Dates = checker
	}
	dispatcher := autoreply.NewDispatcher(dispatcherCfg)
	webhook := whatsapp.NewWebhookHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, func(msg autoreply.InboundMessage) {
		dispatcher.Dispatch(msg)
	}, m, logger)

	if cfg.WhatsAppAppSecret == "" {
		logger.Warn("WHATSAPP_APP_SECRET not set; webhook signatures are not verified")
	}
	logger.Info("whatsapp channel configured",
		"graph_api_version", cfg.GraphAPIVersion,
		"phone_number_id", cfg.WhatsAppPhoneNumberID,
		"interactive_menus", cfg.InteractiveMenus,
	)

	return &WhatsApp{
		Client:     client,
		Sender:     sender,
		Dispatcher: dispatcher,
		Webhook:    webhook,
	}, nil
}
