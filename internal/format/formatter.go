// Package format reformats website source files on a best-effort basis.
//
// Formatting never fails its caller: an unknown extension, a missing backend
// or a backend error all return the input unchanged.
package format

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"codecanvas/internal/metrics"

	"go.uber.org/zap"
)

// Style selects the formatting rules for a file.
type Style string

const (
	StyleHTML  Style = "html"
	StyleCSS   Style = "css"
	StyleBabel Style = "babel"
)

// Options are the fixed formatting options applied to every file.
type Options struct {
	PrintWidth  int
	TabWidth    int
	UseTabs     bool
	Semi        bool
	SingleQuote bool
}

// DefaultOptions: 80 columns, 2-space indent, no tabs, semicolons, single quotes.
var DefaultOptions = Options{
	PrintWidth:  80,
	TabWidth:    2,
	UseTabs:     false,
	Semi:        true,
	SingleQuote: true,
}

// Backend is the external formatting capability.
type Backend interface {
	// Available reports whether the backend can be invoked at all.
	Available() bool
	Format(ctx context.Context, content string, style Style, opts Options) (string, error)
}

// FormattingError wraps a backend failure. It is logged and never returned to
// callers of Adapter.Format.
type FormattingError struct {
	File string
	Err  error
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("could not format %s: %v", e.File, e.Err)
}

func (e *FormattingError) Unwrap() error { return e.Err }

// StyleFor maps a file name to its formatting style by extension.
func StyleFor(name string) (Style, bool) {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	switch ext {
	case "html":
		return StyleHTML, true
	case "css":
		return StyleCSS, true
	case "js":
		return StyleBabel, true
	default:
		return "", false
	}
}

// Adapter applies a Backend to named files.
type Adapter struct {
	backend Backend
	opts    Options
	timeout time.Duration
	logger  *zap.Logger

	warnOnce sync.Once
}

// NewAdapter returns an Adapter. A nil backend behaves like an unavailable one.
func NewAdapter(backend Backend, timeout time.Duration, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		backend: backend,
		opts:    DefaultOptions,
		timeout: timeout,
		logger:  logger,
	}
}

// Available reports whether formatting can actually change anything.
func (a *Adapter) Available() bool {
	return a.backend != nil && a.backend.Available()
}

// Format returns content reformatted for the style implied by name, or the
// original content when that is not possible.
func (a *Adapter) Format(ctx context.Context, name, content string) string {
	style, ok := StyleFor(name)
	if !ok {
		metrics.FormatRuns.WithLabelValues("none", "skipped").Inc()
		return content
	}
	if !a.Available() {
		a.warnOnce.Do(func() {
			a.logger.Warn("formatter is not available, files will not be reformatted")
		})
		metrics.FormatRuns.WithLabelValues(string(style), "unavailable").Inc()
		return content
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	formatted, err := a.backend.Format(ctx, content, style, a.opts)
	if err != nil {
		ferr := &FormattingError{File: name, Err: err}
		a.logger.Warn("formatting failed, keeping original content", zap.Error(ferr),
			zap.Bool("timeout", errors.Is(err, context.DeadlineExceeded)))
		metrics.FormatRuns.WithLabelValues(string(style), "error").Inc()
		return content
	}

	if Equivalent(formatted, content) {
		metrics.FormatRuns.WithLabelValues(string(style), "unchanged").Inc()
	} else {
		metrics.FormatRuns.WithLabelValues(string(style), "changed").Inc()
	}
	return formatted
}

// Equivalent is the commit test for formatter output: contents that differ only
// in leading or trailing whitespace are the same.
func Equivalent(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}
