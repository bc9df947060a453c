package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFiles are the dotenv files Load reads, in priority order, when present.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds application configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	PublicBaseURL   string
	ShutdownTimeout time.Duration

	// WhatsApp Cloud API
	WhatsAppVerifyToken   string
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppAppSecret     string
	GraphAPIBase          string
	GraphAPIVersion       string
	SendTimeout           time.Duration

	// Replies
	ReplyCatalogPath string
	InteractiveMenus bool

	// Booking sheet for date availability answers
	BookingFile      string
	ReceptionContact string

	// Keep-alive self ping
	KeepAliveEnabled  bool
	KeepAliveInterval time.Duration
}

// Load reads configuration from environment variables, after loading any
// dotenv files that exist. Variables already set in the environment win.
func Load() *Config {
	loadEnvFiles(DefaultEnvFiles...)

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", getEnv("RENDER_EXTERNAL_URL", "")), "/"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", getEnv("VERIFY_TOKEN", "")),
		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", getEnv("ACCESS_TOKEN", "")),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", getEnv("PHONE_NUMBER_ID", "")),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		GraphAPIBase:          strings.TrimRight(getEnv("GRAPH_API_BASE", "https://graph.facebook.com"), "/"),
		GraphAPIVersion:       getEnv("GRAPH_API_VERSION", "v21.0"),
		SendTimeout:           getEnvAsDuration("SEND_TIMEOUT", 10*time.Second),

		ReplyCatalogPath: getEnv("REPLY_CATALOG_PATH", ""),
		InteractiveMenus: getEnvAsBool("INTERACTIVE_MENUS", false),

		BookingFile:      getEnv("BOOKING_FILE", ""),
		ReceptionContact: getEnv("RECEPTION_CONTACT", ""),

		KeepAliveEnabled:  getEnvAsBool("KEEPALIVE_ENABLED", true),
		KeepAliveInterval: getEnvAsDuration("KEEPALIVE_INTERVAL", 14*time.Minute),
	}
}

// Validate reports missing WhatsApp credentials. The server can still start
// without them; verification and sends fail until they are provided.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil config")
	}
	var missing []string
	if strings.TrimSpace(c.WhatsAppVerifyToken) == "" {
		missing = append(missing, "WHATSAPP_VERIFY_TOKEN")
	}
	if strings.TrimSpace(c.WhatsAppAccessToken) == "" {
		missing = append(missing, "WHATSAPP_ACCESS_TOKEN")
	}
	if strings.TrimSpace(c.WhatsAppPhoneNumberID) == "" {
		missing = append(missing, "WHATSAPP_PHONE_NUMBER_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing %s", strings.Join(missing, ", "))
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("config: SEND_TIMEOUT must be positive, got %s", c.SendTimeout)
	}
	return nil
}

func loadEnvFiles(files ...string) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return
	}
	// godotenv.Load never overrides variables that are already set.
	_ = godotenv.Load(existing...)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
