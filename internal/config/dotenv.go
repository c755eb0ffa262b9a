package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

const (
	ClassifierBackendHTTP   = "http"
	ClassifierBackendOpenAI = "openai"
)

type Config struct {
	Port                     string
	DatabaseURL              string
	VocabularyList           string
	WinDelayMillis           int
	DropStaleResults         bool
	ClassifierBackend        string
	ClassifierURL            string
	ClassifierTopK           int
	ClassifierTimeoutSeconds int
	ClassifierReadyPollMs    int
	OpenAIAPIKey             string
	OpenAIModel              string
	OpenAIBaseURL            string
	WSMessagesPerSecond      int
	WSBurst                  int
	SessionIdleMinutes       int
	LogLevel                 string
	LogFormat                string
}

func Default() Config {
	return Config{
		Port:                     "8080",
		VocabularyList:           "default",
		WinDelayMillis:           2000,
		ClassifierBackend:        ClassifierBackendHTTP,
		ClassifierURL:            "http://localhost:5000",
		ClassifierTopK:           5,
		ClassifierTimeoutSeconds: 10,
		ClassifierReadyPollMs:    1000,
		OpenAIModel:              "gpt-4o-mini",
		WSMessagesPerSecond:      240,
		WSBurst:                  480,
		SessionIdleMinutes:       10,
		LogLevel:                 "info",
		LogFormat:                "console",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := strings.TrimSpace(os.Getenv("VOCABULARY_LIST")); raw != "" {
		cfg.VocabularyList = raw
	}
	if raw := os.Getenv("WIN_DELAY_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WinDelayMillis = value
		}
	}
	if raw := os.Getenv("DROP_STALE_RESULTS"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.DropStaleResults = value
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(os.Getenv("CLASSIFIER_BACKEND"))); raw != "" {
		cfg.ClassifierBackend = raw
	}
	if raw := os.Getenv("CLASSIFIER_URL"); raw != "" {
		cfg.ClassifierURL = strings.TrimRight(raw, "/")
	}
	if raw := os.Getenv("CLASSIFIER_TOP_K"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ClassifierTopK = value
		}
	}
	if raw := os.Getenv("CLASSIFIER_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ClassifierTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("CLASSIFIER_READY_POLL_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ClassifierReadyPollMs = value
		}
	}
	if raw := os.Getenv("OPENAI_API_KEY"); raw != "" {
		cfg.OpenAIAPIKey = raw
	}
	if raw := os.Getenv("OPENAI_MODEL"); raw != "" {
		cfg.OpenAIModel = raw
	}
	if raw := os.Getenv("OPENAI_BASE_URL"); raw != "" {
		cfg.OpenAIBaseURL = raw
	}
	if raw := os.Getenv("WS_MESSAGES_PER_SECOND"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WSMessagesPerSecond = value
		}
	}
	if raw := os.Getenv("WS_BURST"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WSBurst = value
		}
	}
	if raw := os.Getenv("SESSION_IDLE_MINUTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SessionIdleMinutes = value
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = strings.ToLower(raw)
	}
	if raw := os.Getenv("LOG_FORMAT"); raw != "" {
		cfg.LogFormat = strings.ToLower(raw)
	}
	return cfg
}

func (c Config) WinDelay() time.Duration {
	return time.Duration(c.WinDelayMillis) * time.Millisecond
}

func (c Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.ClassifierTimeoutSeconds) * time.Second
}

func (c Config) ClassifierReadyPoll() time.Duration {
	return time.Duration(c.ClassifierReadyPollMs) * time.Millisecond
}

// SessionIdle is how long a session without sockets survives.
func (c Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}
