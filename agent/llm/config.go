package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/saveurlabs/saveur-agent/agent/contract"
	openrouterx "github.com/saveurlabs/saveur-agent/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	CoordinatorModel       string  `envconfig:"COORDINATOR_MODEL" split_words:"true"`
	MenuModel              string  `envconfig:"MENU_MODEL" split_words:"true"`
	LanguageModel          string  `envconfig:"LANGUAGE_MODEL" split_words:"true"`
	DietaryModel           string  `envconfig:"DIETARY_MODEL" split_words:"true"`
	ValidatorModel         string  `envconfig:"VALIDATOR_MODEL" split_words:"true"`
	FallbackModel          string  `envconfig:"FALLBACK_MODEL" split_words:"true"`
	CoordinatorTemperature float32 `envconfig:"COORDINATOR_TEMPERATURE" split_words:"true" default:"-1"`
	MenuTemperature        float32 `envconfig:"MENU_TEMPERATURE" split_words:"true" default:"-1"`
	LanguageTemperature    float32 `envconfig:"LANGUAGE_TEMPERATURE" split_words:"true" default:"-1"`
	DietaryTemperature     float32 `envconfig:"DIETARY_TEMPERATURE" split_words:"true" default:"-1"`
	ValidatorTemperature   float32 `envconfig:"VALIDATOR_TEMPERATURE" split_words:"true" default:"-1"`
	FallbackTemperature    float32 `envconfig:"FALLBACK_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model settings for one swarm agent. Unset
// overrides fall through to the shared defaults.
func (c Config) OpenRouterFor(name contractx.AgentName) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch name {
	case contractx.AgentOrderCoordinator:
		if v := strings.TrimSpace(c.CoordinatorModel); v != "" {
			modelName = v
		}
		if c.CoordinatorTemperature >= 0 {
			temp = c.CoordinatorTemperature
		}
	case contractx.AgentMenuSpecialist:
		if v := strings.TrimSpace(c.MenuModel); v != "" {
			modelName = v
		}
		if c.MenuTemperature >= 0 {
			temp = c.MenuTemperature
		}
	case contractx.AgentLanguageSpecialist:
		if v := strings.TrimSpace(c.LanguageModel); v != "" {
			modelName = v
		}
		if c.LanguageTemperature >= 0 {
			temp = c.LanguageTemperature
		}
	case contractx.AgentDietarySpecialist:
		if v := strings.TrimSpace(c.DietaryModel); v != "" {
			modelName = v
		}
		if c.DietaryTemperature >= 0 {
			temp = c.DietaryTemperature
		}
	case contractx.AgentOrderValidator:
		if v := strings.TrimSpace(c.ValidatorModel); v != "" {
			modelName = v
		}
		if c.ValidatorTemperature >= 0 {
			temp = c.ValidatorTemperature
		}
	}

	return c.openRouter(modelName, temp)
}

// OpenRouterFallback resolves the model settings for the single
// comprehensive agent.
func (c Config) OpenRouterFallback() openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature
	if v := strings.TrimSpace(c.FallbackModel); v != "" {
		modelName = v
	}
	if c.FallbackTemperature >= 0 {
		temp = c.FallbackTemperature
	}
	return c.openRouter(modelName, temp)
}

// OpenRouterDefault resolves the shared default model settings, used by the
// directly-callable specialist tools.
func (c Config) OpenRouterDefault() openrouterx.Config {
	return c.openRouter(strings.TrimSpace(c.Model), c.Temperature)
}

func (c Config) openRouter(modelName string, temp float32) openrouterx.Config {
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
