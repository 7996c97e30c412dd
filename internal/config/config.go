package config

import (
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const defaultPakasirBaseURL = "https://app.pakasir.com/api"

// Config carries all environment-level settings. It is built once in main
// and injected; nothing in the service reads the environment after startup.
type Config struct {
	TransactionsTable string
	PakasirBaseURL    string
	PakasirProject    string
	PakasirAPIKey     string

	// SelfWebhookURL is this service's own /webhook endpoint. It is the
	// default relay destination and the reference for loop prevention.
	SelfWebhookURL string

	// EventsQueueURL enables the lifecycle-event publisher when set.
	EventsQueueURL string

	// MetricsNamespace enables CloudWatch counters when set.
	MetricsNamespace string

	ProviderTimeout time.Duration
	RelayTimeout    time.Duration
}

// Load reads configuration from the environment. Provider credentials and
// the transactions table are mandatory; missing values are fatal at startup.
func Load() Config {
	cfg := Config{
		TransactionsTable: os.Getenv("TRANSACTIONS_TABLE"),
		PakasirBaseURL:    getenvDefault("PAKASIR_BASE_URL", defaultPakasirBaseURL),
		PakasirProject:    os.Getenv("PAKASIR_PROJECT_SLUG"),
		PakasirAPIKey:     os.Getenv("PAKASIR_API_KEY"),
		SelfWebhookURL:    os.Getenv("SELF_WEBHOOK_URL"),
		EventsQueueURL:    os.Getenv("PAYMENT_EVENTS_QUEUE_URL"),
		MetricsNamespace:  os.Getenv("METRICS_NAMESPACE"),
		ProviderTimeout:   getenvDuration("PROVIDER_TIMEOUT", 10*time.Second),
		RelayTimeout:      getenvDuration("RELAY_TIMEOUT", 8*time.Second),
	}

	if cfg.TransactionsTable == "" {
		log.Fatal("TRANSACTIONS_TABLE is required")
	}
	if cfg.PakasirProject == "" || cfg.PakasirAPIKey == "" {
		log.Fatal("PAKASIR_PROJECT_SLUG and PAKASIR_API_KEY are required")
	}

	return cfg
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}
