package bootstrap

import (
	"fmt"
	"strings"

	appconfig "github.com/wolfman30/riverfront-whatsapp-bot/internal/config"
	"github.com/wolfman30/riverfront-whatsapp-bot/internal/replies"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

// BuildReplyTable returns the YAML catalog named by the config, or the
// built-in table when no catalog is configured.
func BuildReplyTable(cfg *appconfig.Config, logger *logging.Logger) (*replies.Table, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	path := strings.TrimSpace(cfg.ReplyCatalogPath)
	if path == "" {
		table := replies.DefaultTable()
		logger.Info("using built-in reply table", "groups", len(table.Groups()))
		return table, nil
	}

	table, err := replies.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load reply catalog: %w", err)
	}
	logger.Info("reply catalog loaded", "path", path, "groups", len(table.Groups()))
	return table, nil
}
