package ai

import (
	"errors"
	"fmt"
)

// ConfigurationError is returned when generation is attempted without a
// provider credential. No network request is made.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("API key is not configured: set the %s environment variable and restart", e.Setting)
}

// InvalidResponseError means the provider replied but the reply does not match
// the files schema.
type InvalidResponseError struct {
	Reason string
	Err    error
}

func (e *InvalidResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response format from AI: %s: %v", e.Reason, e.Err)
	}
	return "invalid response format from AI: " + e.Reason
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// GenerationError wraps a transport or provider failure.
type GenerationError struct {
	Err error
}

const generationFailedMessage = "Failed to generate website from AI. Please check your prompt or API key."

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserMessage converts a generation-path error into the text shown in the
// error banner.
func UserMessage(err error) string {
	var cfgErr *ConfigurationError
	var invalidErr *InvalidResponseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return cfgErr.Error()
	case errors.As(err, &invalidErr):
		return "The AI returned a response in an unexpected format. Please try again."
	default:
		return generationFailedMessage
	}
}

// ResultLabel is the metrics label for a generation outcome.
func ResultLabel(err error) string {
	var cfgErr *ConfigurationError
	var invalidErr *InvalidResponseError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.As(err, &invalidErr):
		return "invalid_response"
	default:
		return "provider_error"
	}
}
