package format

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Prettier runs the prettier CLI, feeding content over stdin.
type Prettier struct {
	path string // resolved executable, empty when not found
}

// NewPrettier resolves the prettier executable. The returned backend reports
// itself unavailable when the binary cannot be found.
func NewPrettier(binary string) *Prettier {
	if binary == "" {
		binary = "prettier"
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return &Prettier{}
	}
	return &Prettier{path: resolved}
}

// Path returns the resolved executable.
func (p *Prettier) Path() string { return p.path }

func (p *Prettier) Available() bool { return p.path != "" }

// Args builds the prettier command line for a style and options.
func Args(style Style, opts Options) []string {
	args := []string{
		"--parser", string(style),
		"--print-width", strconv.Itoa(opts.PrintWidth),
		"--tab-width", strconv.Itoa(opts.TabWidth),
	}
	if opts.UseTabs {
		args = append(args, "--use-tabs")
	}
	if !opts.Semi {
		args = append(args, "--no-semi")
	}
	if opts.SingleQuote {
		args = append(args, "--single-quote")
	}
	return args
}

func (p *Prettier) Format(ctx context.Context, content string, style Style, opts Options) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("prettier executable not found")
	}

	cmd := exec.CommandContext(ctx, p.path, Args(style, opts)...)
	cmd.Stdin = strings.NewReader(content)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("prettier %s: %w", style, ctx.Err())
		}
		return "", fmt.Errorf("prettier %s failed: %w (stderr: %s)", style, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
