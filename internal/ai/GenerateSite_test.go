package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"codecanvas/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeProvider serves an OpenAI-compatible /chat/completions endpoint that
// replies with the given message content.
func fakeProvider(t *testing.T, status int, content string, calls *atomic.Int32, lastBody *[]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		if lastBody != nil {
			body, _ := io.ReadAll(r.Body)
			*lastBody = body
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

const simplePageReply = `{"files":[{"name":"index.html","content":"<html><head></head><body></body></html>"},{"name":"style.css","content":"body{color:red}"}]}`

func TestGenerateSiteSuccess(t *testing.T) {
	var body []byte
	srv := fakeProvider(t, http.StatusOK, simplePageReply, nil, &body)
	g := NewGenerator("key", srv.URL+"/v1", "test-model", zaptest.NewLogger(t))

	files, err := g.GenerateSite(context.Background(), "simple page")
	require.NoError(t, err)
	assert.Equal(t, []types.File{
		{Name: "index.html", Content: "<html><head></head><body></body></html>"},
		{Name: "style.css", Content: "body{color:red}"},
	}, files)

	var sent struct {
		Model          string `json:"model"`
		Messages       []struct{ Role, Content string }
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string          `json:"name"`
				Strict bool            `json:"strict"`
				Schema json.RawMessage `json:"schema"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, "test-model", sent.Model)
	require.Len(t, sent.Messages, 2)
	assert.Equal(t, "system", sent.Messages[0].Role)
	assert.Contains(t, sent.Messages[0].Content, "index.html")
	assert.Equal(t, "simple page", sent.Messages[1].Content)
	assert.Equal(t, "json_schema", sent.ResponseFormat.Type)
	assert.Equal(t, "website_files", sent.ResponseFormat.JSONSchema.Name)
	assert.True(t, sent.ResponseFormat.JSONSchema.Strict)
	assert.Contains(t, string(sent.ResponseFormat.JSONSchema.Schema), `"required":["files"]`)
}

func TestGenerateSiteWithoutCredential(t *testing.T) {
	var calls atomic.Int32
	srv := fakeProvider(t, http.StatusOK, simplePageReply, &calls, nil)
	g := NewGenerator("", srv.URL+"/v1", "", zaptest.NewLogger(t))

	_, err := g.GenerateSite(context.Background(), "simple page")

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "API_KEY", cfgErr.Setting)
	assert.Zero(t, calls.Load(), "no request may reach the provider")
}

func TestGenerateSiteProviderFailure(t *testing.T) {
	srv := fakeProvider(t, http.StatusInternalServerError, "", nil, nil)
	g := NewGenerator("key", srv.URL+"/v1", "", zaptest.NewLogger(t))

	_, err := g.GenerateSite(context.Background(), "simple page")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, generationFailedMessage, UserMessage(err))
}

func TestGenerateSiteNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	g := NewGenerator("key", url+"/v1", "", zaptest.NewLogger(t))

	_, err := g.GenerateSite(context.Background(), "simple page")

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestGenerateSiteEmptyReply(t *testing.T) {
	srv := fakeProvider(t, http.StatusOK, "", nil, nil)
	g := NewGenerator("key", srv.URL+"/v1", "", zaptest.NewLogger(t))

	_, err := g.GenerateSite(context.Background(), "simple page")

	var invalidErr *InvalidResponseError
	require.ErrorAs(t, err, &invalidErr)
}

func TestParseFiles(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []types.File
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"files":[{"name":"index.html","content":"<p>hi</p>"}]}`,
			want: []types.File{{Name: "index.html", Content: "<p>hi</p>"}},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"files\":[{\"name\":\"a.js\",\"content\":\"\"}]}\n```",
			want: []types.File{{Name: "a.js", Content: ""}},
		},
		{
			name: "empty files array",
			raw:  `{"files":[]}`,
			want: []types.File{},
		},
		{name: "missing files", raw: `{"result":[]}`, wantErr: true},
		{name: "null files", raw: `{"files":null}`, wantErr: true},
		{name: "bare array", raw: `[{"name":"a.js","content":""}]`, wantErr: true},
		{name: "not json", raw: `here is your website`, wantErr: true},
		{name: "missing content", raw: `{"files":[{"name":"a.js"}]}`, wantErr: true},
		{name: "missing name", raw: `{"files":[{"content":"x"}]}`, wantErr: true},
		{name: "empty name", raw: `{"files":[{"name":"","content":"x"}]}`, wantErr: true},
		{name: "duplicate name", raw: `{"files":[{"name":"a.js","content":""},{"name":"a.js","content":""}]}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFiles(tt.raw)
			if tt.wantErr {
				var invalidErr *InvalidResponseError
				require.ErrorAs(t, err, &invalidErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserMessageAndResultLabel(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		label   string
		message string
	}{
		{"nil", nil, "success", ""},
		{"config", &ConfigurationError{Setting: "API_KEY"}, "config_error", "API key is not configured: set the API_KEY environment variable and restart"},
		{"invalid", &InvalidResponseError{Reason: "missing files array"}, "invalid_response", "The AI returned a response in an unexpected format. Please try again."},
		{"provider", &GenerationError{Err: errors.New("boom")}, "provider_error", generationFailedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.label, ResultLabel(tt.err))
			assert.Equal(t, tt.message, UserMessage(tt.err))
		})
	}
}
