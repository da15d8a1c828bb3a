package imagegen_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"imagegen-backend/internal/core"
	"imagegen-backend/internal/core/imagegen"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type mockImageAPI struct {
	mu       sync.Mutex
	requests []generateRequest
	status   int
	body     string
}

func (m *mockImageAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(m.status)
	_, _ = w.Write([]byte(m.body))
}

func newGenerator(t *testing.T, api *mockImageAPI) *imagegen.OpenAI {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("/images/generations", api)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return imagegen.NewOpenAI("test-key", option.WithBaseURL(srv.URL+"/"))
}

func TestGenerateSendsSingleImageRequest(t *testing.T) {
	api := &mockImageAPI{status: http.StatusOK, body: `{"created": 1, "data": [{"url": "http://x/img.png"}]}`}
	gen := newGenerator(t, api)

	sub, err := core.NewSubmission("red circle logo", "1024x1024", "standard")
	require.NoError(t, err)

	result := gen.Generate(context.Background(), sub)
	require.True(t, result.Ok(), "unexpected failure: %v", result.Reason())
	assert.Equal(t, "http://x/img.png", result.Location())

	require.Len(t, api.requests, 1)
	assert.Equal(t, generateRequest{
		Model:          "dall-e-3",
		Prompt:         "red circle logo",
		Size:           "1024x1024",
		Quality:        "standard",
		N:              1,
		ResponseFormat: "url",
	}, api.requests[0])
}

func TestGeneratePassesSizeAndQuality(t *testing.T) {
	api := &mockImageAPI{status: http.StatusOK, body: `{"created": 1, "data": [{"url": "http://x/wide.png"}]}`}
	gen := newGenerator(t, api)

	sub, err := core.NewSubmission("a tiger", "1792x1024", "hd")
	require.NoError(t, err)

	result := gen.Generate(context.Background(), sub)
	require.True(t, result.Ok())

	require.Len(t, api.requests, 1)
	assert.Equal(t, "1792x1024", api.requests[0].Size)
	assert.Equal(t, "hd", api.requests[0].Quality)
	assert.Equal(t, 1, api.requests[0].N)
}

func TestGenerateFailureIsNotRetried(t *testing.T) {
	api := &mockImageAPI{status: http.StatusInternalServerError, body: `{"error": {"message": "server exploded", "type": "server_error"}}`}
	gen := newGenerator(t, api)

	sub, err := core.NewSubmission("red circle logo", "", "")
	require.NoError(t, err)

	result := gen.Generate(context.Background(), sub)
	assert.False(t, result.Ok())
	assert.Error(t, result.Reason())
	assert.Empty(t, result.Location())
	assert.Len(t, api.requests, 1)
}

func TestGenerateEmptyResponse(t *testing.T) {
	api := &mockImageAPI{status: http.StatusOK, body: `{"created": 1, "data": []}`}
	gen := newGenerator(t, api)

	sub, err := core.NewSubmission("red circle logo", "", "")
	require.NoError(t, err)

	result := gen.Generate(context.Background(), sub)
	assert.False(t, result.Ok())
	assert.Len(t, api.requests, 1)
}
