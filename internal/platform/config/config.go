package config

import (
	"os"
	"time"
)

// Server captures process level configuration for the ledger node.
type Server struct {
	Addr          string
	AdminAddress  string
	JWTSigningKey string
	TokenTTL      time.Duration
	DatabaseURL   string
	KafkaBrokers  string
	AuditTopic    string
	Environment   string
	SeedDemo      bool
}

const defaultTokenTTL = 15 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("KYC_LEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// The administrator identity is fixed at startup and immutable afterwards.
	admin := os.Getenv("ADMIN_ADDRESS")
	if admin == "" {
		admin = "admin"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	tokenTTL := defaultTokenTTL
	if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
		if duration, err := time.ParseDuration(ttlStr); err == nil {
			tokenTTL = duration
		}
	}

	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "kyc.ledger.events"
	}

	env := os.Getenv("KYC_LEDGER_ENV")
	if env == "" {
		env = "dev"
	}

	return Server{
		Addr:          addr,
		AdminAddress:  admin,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      tokenTTL,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		AuditTopic:    topic,
		Environment:   env,
		SeedDemo:      os.Getenv("KYC_LEDGER_SEED_DEMO") == "true",
	}
}
