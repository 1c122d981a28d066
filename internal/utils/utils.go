package utils

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// IsTransient reports whether a provider error looks temporary (rate limits,
// 5xx, timeouts). Generation is never retried; the classification only feeds
// logs and metrics.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= 500 || reqErr.HTTPStatusCode == 429
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "connection reset by peer")
}

// DetermineFileType maps a file name to the display type shown in the file
// explorer.
func DetermineFileType(filename string) string {
	lowerFilename := strings.ToLower(filename)
	ext := filepath.Ext(lowerFilename)
	switch ext {
	case ".html", ".htm":
		return "HTML"
	case ".css":
		return "CSS"
	case ".js", ".mjs":
		return "JavaScript"
	case ".json":
		return "JSON"
	case ".md":
		return "Markdown"
	case ".txt":
		return "Text"
	case ".svg":
		return "SVG"
	case ".xml":
		return "XML"
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico":
		return "Image"
	default:
		return "Unknown"
	}
}
