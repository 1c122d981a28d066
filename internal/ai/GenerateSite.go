package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"codecanvas/internal/ai/prompts"
	"codecanvas/internal/metrics"
	"codecanvas/internal/types"
	"codecanvas/internal/utils"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

// filesSchema is the structured output contract: {files: [{name, content}]}.
var filesSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"files": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"name":    {Type: jsonschema.String, Description: "File name, e.g. index.html"},
					"content": {Type: jsonschema.String, Description: "Full file content"},
				},
				Required:             []string{"name", "content"},
				AdditionalProperties: false,
			},
		},
	},
	Required:             []string{"files"},
	AdditionalProperties: false,
}

// wireFile uses pointers so absent fields can be told apart from empty ones.
type wireFile struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
}

type wireResponse struct {
	Files *[]wireFile `json:"files"`
}

// GenerateSite sends the prompt to the provider and returns the generated
// files in response order. It never mutates shared state.
func (g *Generator) GenerateSite(ctx context.Context, userPrompt string) ([]types.File, error) {
	if !g.Configured() {
		return nil, &ConfigurationError{Setting: "API_KEY"}
	}

	requestID := uuid.NewString()
	logger := g.logger.With(zap.String("request_id", requestID), zap.String("model", g.model))
	logger.Info("generating site", zap.Int("prompt_len", len(userPrompt)))

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.GetSiteGenerationSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   prompts.SchemaName,
				Schema: &filesSchema,
				Strict: true,
			},
		},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	metrics.GenerationDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error("provider call failed", zap.Error(err), zap.Bool("transient", utils.IsTransient(err)))
		return nil, &GenerationError{Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		logger.Warn("provider returned empty response", zap.Any("usage", resp.Usage))
		return nil, &InvalidResponseError{Reason: "empty response"}
	}

	files, err := ParseFiles(resp.Choices[0].Message.Content)
	if err != nil {
		logger.Warn("provider response rejected", zap.Error(err))
		return nil, err
	}

	logger.Info("site generated", zap.Int("files", len(files)), zap.Duration("took", time.Since(start)))
	return files, nil
}

// ParseFiles decodes a provider reply into files, enforcing the schema:
// a files array whose entries all carry a non-empty, unique name and a
// content string. Markdown code fences around the JSON are tolerated.
func ParseFiles(raw string) ([]types.File, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed wireResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, &InvalidResponseError{Reason: "response is not a JSON object", Err: err}
	}
	if parsed.Files == nil {
		return nil, &InvalidResponseError{Reason: "missing files array"}
	}

	files := make([]types.File, 0, len(*parsed.Files))
	seen := make(map[string]struct{}, len(*parsed.Files))
	for i, f := range *parsed.Files {
		if f.Name == nil || f.Content == nil {
			return nil, &InvalidResponseError{Reason: "file entry missing name or content", Err: fmt.Errorf("entry %d", i)}
		}
		if *f.Name == "" {
			return nil, &InvalidResponseError{Reason: "file entry has an empty name", Err: fmt.Errorf("entry %d", i)}
		}
		if _, dup := seen[*f.Name]; dup {
			return nil, &InvalidResponseError{Reason: "duplicate file name " + *f.Name}
		}
		seen[*f.Name] = struct{}{}
		files = append(files, types.File{Name: *f.Name, Content: *f.Content})
	}
	return files, nil
}
