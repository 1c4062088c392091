package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Everything is sourced from
// the environment once at startup so main stays lean and services receive
// explicit values instead of reading ambient state.
type Server struct {
	Addr string

	// Env is "development" or "production". In production, internal fault
	// detail is suppressed from client responses.
	Env string

	// TenantsFile points at the JSON tenant registry. Empty means the
	// registry is seeded from TenantsJSON (useful for single-binary demos).
	TenantsFile string
	TenantsJSON string

	// LeadLog is the append-only JSONL intake log. Used when DatabaseURL
	// is empty.
	LeadLog     string
	DatabaseURL string

	RedisURL string

	KafkaBrokers []string
	KafkaTopic   string

	// TelegramAPIBase is overridable so tests can point the dispatcher at
	// a local stub.
	TelegramAPIBase string
	DispatchTimeout time.Duration

	JWTSigningKey string
	// OpsCredentialHash is the bcrypt hash of the ops bootstrap credential
	// used to mint analytics tokens.
	OpsCredentialHash string

	// IntakePerMinute limits intake submissions per client per minute.
	// Premium tenants get double the budget. Zero disables throttling.
	IntakePerMinute int
}

// Dev reports whether the process runs in development mode.
func (s Server) Dev() bool {
	return s.Env != "production"
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("LEADGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("LEADGATE_ENV")
	if env == "" {
		env = "development"
	}

	leadLog := os.Getenv("LEADGATE_LEAD_LOG")
	if leadLog == "" {
		leadLog = "logs/leads.jsonl"
	}

	apiBase := os.Getenv("LEADGATE_TELEGRAM_API")
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}

	timeout := 10 * time.Second
	if raw := os.Getenv("LEADGATE_DISPATCH_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			timeout = d
		}
	}

	jwtSigningKey := os.Getenv("LEADGATE_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	perMinute := 60
	if raw := os.Getenv("LEADGATE_INTAKE_PER_MINUTE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			perMinute = n
		}
	}

	var brokers []string
	if raw := os.Getenv("LEADGATE_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	topic := os.Getenv("LEADGATE_KAFKA_TOPIC")
	if topic == "" {
		topic = "leadgate.events"
	}

	return Server{
		Addr:              addr,
		Env:               env,
		TenantsFile:       os.Getenv("LEADGATE_TENANTS_FILE"),
		TenantsJSON:       os.Getenv("LEADGATE_TENANTS_JSON"),
		LeadLog:           leadLog,
		DatabaseURL:       os.Getenv("LEADGATE_DATABASE_URL"),
		RedisURL:          os.Getenv("LEADGATE_REDIS_URL"),
		KafkaBrokers:      brokers,
		KafkaTopic:        topic,
		TelegramAPIBase:   apiBase,
		DispatchTimeout:   timeout,
		JWTSigningKey:     jwtSigningKey,
		OpsCredentialHash: os.Getenv("LEADGATE_OPS_CREDENTIAL_HASH"),
		IntakePerMinute:   perMinute,
	}
}
