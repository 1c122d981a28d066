package project

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"codecanvas/internal/ai"
	"codecanvas/internal/metrics"
	"codecanvas/internal/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when a generation is already in flight.
	ErrBusy = errors.New("a generation is already in progress")
	// ErrBlankPrompt is returned for empty or whitespace-only prompts.
	ErrBlankPrompt = errors.New("prompt is empty")
)

// SiteGenerator produces website files from a prompt.
type SiteGenerator interface {
	GenerateSite(ctx context.Context, prompt string) ([]types.File, error)
}

// Formatter reformats a named file's content, returning it unchanged when it
// cannot.
type Formatter interface {
	Format(ctx context.Context, name, content string) string
}

// Status is the generation state shown by the UI.
type Status struct {
	Prompt     string
	Generating bool
	Error      string
	RequestID  string // last submitted generation
}

// Controller drives generation and formatting against a Store.
type Controller struct {
	store     *Store
	generator SiteGenerator
	formatter Formatter
	logger    *zap.Logger

	mu         sync.Mutex
	prompt     string
	generating bool
	errMsg     string
	requestID  string

	statusListeners []func(Status)
	wg              sync.WaitGroup
}

// NewController wires a controller and subscribes the reformat reaction to
// selection changes on the store.
func NewController(store *Store, generator SiteGenerator, formatter Formatter, initialPrompt string, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		store:     store,
		generator: generator,
		formatter: formatter,
		logger:    logger,
		prompt:    initialPrompt,
	}
	store.Subscribe(func(ch Change) {
		if ch.SelectionChanged {
			c.reformatActive()
		}
	})
	return c
}

// OnStatus registers fn to be called whenever the status changes.
// Must be called before the controller is used concurrently.
func (c *Controller) OnStatus(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusListeners = append(c.statusListeners, fn)
}

func (c *Controller) statusLocked() Status {
	return Status{Prompt: c.prompt, Generating: c.generating, Error: c.errMsg, RequestID: c.requestID}
}

// Status returns the current generation status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// publish must be called without mu held.
func (c *Controller) publish() {
	c.mu.Lock()
	st := c.statusLocked()
	listeners := append([]func(Status){}, c.statusListeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(st)
	}
}

// Prompt returns the current prompt text.
func (c *Controller) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

// SetPrompt replaces the prompt text. It does not trigger generation.
func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	c.prompt = prompt
	c.mu.Unlock()
	c.publish()
}

// DismissError clears the banner message.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
	c.publish()
}

// begin moves Idle -> Generating.
func (c *Controller) begin(prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrBlankPrompt
	}
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.generating = true
	c.prompt = prompt
	c.errMsg = ""
	c.requestID = uuid.NewString()
	id := c.requestID
	c.mu.Unlock()

	metrics.GeneratingActive.Set(1)
	c.publish()
	return id, nil
}

// finish moves Generating -> Idle, committing files or the failure.
func (c *Controller) finish(requestID string, files []types.File, err error) {
	metrics.Generations.WithLabelValues(ai.ResultLabel(err)).Inc()
	if err != nil {
		c.logger.Error("generation failed", zap.String("generation_id", requestID), zap.Error(err))
		c.store.ReplaceAll(nil)
	} else {
		metrics.GeneratedFiles.Observe(float64(len(files)))
		c.logger.Info("generation committed", zap.String("generation_id", requestID), zap.Int("files", len(files)))
		c.store.ReplaceAll(files)
	}

	c.mu.Lock()
	c.generating = false
	c.errMsg = ai.UserMessage(err)
	c.mu.Unlock()

	metrics.GeneratingActive.Set(0)
	c.publish()
}

// Generate runs a generation synchronously. On failure the project is
// cleared and the error banner set; the error is also returned.
func (c *Controller) Generate(ctx context.Context, prompt string) error {
	id, err := c.begin(prompt)
	if err != nil {
		return err
	}
	files, err := c.generator.GenerateSite(ctx, prompt)
	c.finish(id, files, err)
	return err
}

// Submit starts a generation in the background and returns its id.
func (c *Controller) Submit(ctx context.Context, prompt string) (string, error) {
	id, err := c.begin(prompt)
	if err != nil {
		return "", err
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		files, err := c.generator.GenerateSite(ctx, prompt)
		c.finish(id, files, err)
	}()
	return id, nil
}

// Wait blocks until background generations and formatting jobs are done.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// reformatActive formats the active file once, in the background.
func (c *Controller) reformatActive() {
	ticket, ok := c.store.ActiveTicket()
	if !ok || c.formatter == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.applyFormat(context.Background(), ticket)
	}()
}

func (c *Controller) applyFormat(ctx context.Context, ticket FormatTicket) bool {
	start := time.Now()
	formatted := c.formatter.Format(ctx, ticket.Name, ticket.Content)
	applied, stale := c.store.ApplyFormatted(ticket, formatted)
	if stale {
		metrics.FormatRuns.WithLabelValues("any", "stale").Inc()
		c.logger.Debug("discarded stale formatting result", zap.String("file", ticket.Name))
	}
	c.logger.Debug("format pass", zap.String("file", ticket.Name), zap.Bool("applied", applied), zap.Duration("took", time.Since(start)))
	return applied
}

// EditActive replaces the active file content as the user types.
func (c *Controller) EditActive(content string) bool {
	return c.store.SetActiveContent(content)
}

// FormatActive handles the editor losing focus: the blurred content is
// stored, then formatted and committed if it changed. It reports whether the
// formatter changed the content.
func (c *Controller) FormatActive(ctx context.Context, content string) bool {
	c.store.SetActiveContent(content)
	if c.formatter == nil {
		return false
	}
	ticket, ok := c.store.ActiveTicket()
	if !ok {
		return false
	}
	return c.applyFormat(ctx, ticket)
}

// Store exposes the underlying file store.
func (c *Controller) Store() *Store {
	return c.store
}
