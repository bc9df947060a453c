package bootstrap

import (
	"os"
	"strings"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/availability"
	appconfig "github.com/wolfman30/riverfront-whatsapp-bot/internal/config"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

// BuildAvailability returns a booking-sheet checker, or nil when BOOKING_FILE
// is not set. A missing file is only warned about: the sheet is read on every
// lookup and may appear later.
func BuildAvailability(cfg *appconfig.Config, logger *logging.Logger) *availability.Checker {
	if cfg == nil {
		return nil
	}
	path := strings.TrimSpace(cfg.BookingFile)
	if path == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if _, err := os.Stat(path); err != nil {
		logger.Warn("booking file not readable; date lookups will report it", "path", path, "error", err)
	}
	logger.Info("date availability lookup enabled", "path", path)
	return availability.NewChecker(path, logger).WithContact(cfg.ReceptionContact)
}
