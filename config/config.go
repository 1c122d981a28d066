package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DefaultPrompt seeds the prompt field and the startup generation.
const DefaultPrompt = "Create a landing page for a fictional space exploration company called 'Stellar Ventures'. It should have a hero section with a call-to-action button, an 'Our Missions' section with three mission cards, and a simple footer. Use a dark, futuristic theme with blue and purple accents."

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string `mapstructure:"APP_ENV"`        // "production" switches gin and zap to release mode

	// AI Configuration
	APIKey    string `mapstructure:"API_KEY"`     // Provider credential; generation is disabled without it
	AIBaseURL string `mapstructure:"AI_BASE_URL"` // OpenAI-compatible endpoint
	AIModel   string `mapstructure:"AI_MODEL"`    // e.g., "gemini-2.5-flash"

	// Formatter Configuration
	PrettierPath  string        `mapstructure:"PRETTIER_PATH"`  // prettier executable, looked up on PATH
	FormatTimeout time.Duration `mapstructure:"FORMAT_TIMEOUT"` // per-invocation limit

	// Startup behaviour
	AutoGenerate  bool   `mapstructure:"AUTO_GENERATE"`  // generate once from DefaultPrompt at startup
	DefaultPrompt string `mapstructure:"DEFAULT_PROMPT"` // overrides the built-in demo prompt
}

// Warnings lists non-fatal configuration problems worth logging at startup.
func (c Config) Warnings() []string {
	var warnings []string
	if c.APIKey == "" {
		warnings = append(warnings, "API_KEY environment variable not set. AI features will not work.")
	}
	return warnings
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("API_KEY", "")
	v.SetDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("AI_MODEL", "gemini-2.5-flash")
	v.SetDefault("PRETTIER_PATH", "prettier")
	v.SetDefault("FORMAT_TIMEOUT", "10s")
	v.SetDefault("AUTO_GENERATE", true)
	v.SetDefault("DEFAULT_PROMPT", DefaultPrompt)
}

// LoadConfig reads configuration from file and environment variables.
// The returned notice describes where configuration came from.
func LoadConfig(path string) (config Config, notice string, err error) {
	v := viper.New()
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	setDefaults(v)
	v.AutomaticEnv() // Read environment variables that match keys

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("error reading config file: %w", err)
		}
		notice = "config file ('config.yaml') not found, relying solely on environment variables"
	} else {
		notice = "using configuration file: " + v.ConfigFileUsed()
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, "", fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if config.DefaultPrompt == "" {
		config.DefaultPrompt = DefaultPrompt
	}
	if config.FormatTimeout <= 0 {
		config.FormatTimeout = 10 * time.Second
	}

	return config, notice, nil
}
