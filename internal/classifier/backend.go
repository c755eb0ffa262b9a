package classifier

import (
	"fmt"

	"sketch-guess/internal/config"
)

// NewBackend picks the backend named by cfg.ClassifierBackend. labels are
// offered to backends that accept category hints.
func NewBackend(cfg config.Config, labels []string) (Backend, error) {
	switch cfg.ClassifierBackend {
	case config.ClassifierBackendHTTP:
		return NewHTTPBackend(cfg.ClassifierURL, cfg.ClassifierTopK, cfg.ClassifierTimeout()), nil
	case config.ClassifierBackendOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the %s backend", cfg.ClassifierBackend)
		}
		return NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, labels, cfg.ClassifierTopK), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.ClassifierBackend)
	}
}
