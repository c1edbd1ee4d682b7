package advisor

import (
	"fmt"

	"hg-go/internal/config"
	"hg-go/internal/hg"
)

// NewAdvisorFromConfig creates an Advisor based on the configuration type.
// A missing credential is not an error: the app runs without AI features.
func NewAdvisorFromConfig(cfg config.AdvisorConfig, logger hg.Logger) (hg.Advisor, error) {
	switch cfg.Type {
	case "openai", "":
		key := cfg.APIKey()
		if key == "" {
			return Unavailable{}, nil
		}
		return NewOpenAIAdvisor(key, cfg.Model, cfg.BaseURL, logger), nil
	case "none":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown advisor type: %q", cfg.Type)
	}
}
