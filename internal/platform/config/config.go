package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	LLMBaseURL    string
	LLMAPIKey     string
	LedgerBaseURL string
	LedgerAPIKey  string

	ContestDurationHours float64
	MaxParticipants      int
	RewardPoints         int
	TickSeconds          int
	SimilarityThreshold  float64

	EnableStartupDriftCheck bool
	EnableScreening         bool
	EnableInsight           bool
	EnableSettlement        bool
}

func Load() (Config, error) {
	// Local runs pick up .env; absence is not an error.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "agon"
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

		LLMBaseURL:    os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		LedgerBaseURL: os.Getenv("LEDGER_BASE_URL"),
		LedgerAPIKey:  os.Getenv("LEDGER_API_KEY"),

		ContestDurationHours: envFloat("CONTEST_DURATION_HOURS", 24),
		MaxParticipants:      envInt("CONTEST_MAX_PARTICIPANTS", 100),
		RewardPoints:         envInt("CONTEST_REWARD_POINTS", 100),
		TickSeconds:          envInt("SCHEDULER_TICK_SECONDS", 60),
		SimilarityThreshold:  envFloat("TOPIC_SIMILARITY_THRESHOLD", 0.7),

		EnableStartupDriftCheck: envBool("ENABLE_STARTUP_DRIFT_CHECK", true),
		EnableScreening:         envBool("ENABLE_SUBMISSION_SCREENING", true),
		EnableInsight:           envBool("ENABLE_WINNER_INSIGHT", true),
		EnableSettlement:        envBool("ENABLE_LEDGER_SETTLEMENT", true),
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

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
