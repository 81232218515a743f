package config

import (
	"os"
	"strings"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders; nothing in the
// modules reads the environment at call time.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	// SessionTokenSecret signs/verifies HS256 session tokens issued by the
	// identity provider. SessionTokenIssuer is matched against the iss claim
	// when set.
	SessionTokenSecret string
	SessionTokenIssuer string

	EnableDeletionOutbox bool
	EnableOutboxRelay    bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "chama"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,

		SessionTokenSecret: os.Getenv("SESSION_TOKEN_SECRET"),
		SessionTokenIssuer: os.Getenv("SESSION_TOKEN_ISSUER"),

		EnableDeletionOutbox: envBool("ENABLE_DELETION_OUTBOX", true),
		EnableOutboxRelay:    envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
