package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coderag/internal/domain"
	"github.com/kailas-cloud/coderag/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

type embeddingItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingServer answers /embeddings with the given items and token count,
// and records the decoded request.
func embeddingServer(t *testing.T, items []embeddingItem, tokens int, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization = %q", auth)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "nomic-embed-text",
			"data":   items,
			"usage":  map[string]int{"prompt_tokens": tokens, "total_tokens": tokens},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEmbedder(baseURL string, dims int) *Embedder {
	return NewEmbedder(&Config{
		APIKey:     "sk-test",
		BaseURL:    baseURL,
		Model:      "nomic-embed-text",
		Dimensions: dims,
		Provider:   "ollama",
		Logger:     zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	var req map[string]any
	srv := embeddingServer(t, []embeddingItem{
		{Object: "embedding", Embedding: []float32{0.5, -0.5, 0.25}},
	}, 7, &req)

	res, err := newTestEmbedder(srv.URL, 3).Embed(context.Background(), "func main() {}")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(res.Embedding) != 3 || res.Embedding[1] != -0.5 {
		t.Errorf("embedding = %v", res.Embedding)
	}
	if res.PromptTokens != 7 || res.TotalTokens != 7 {
		t.Errorf("usage = %d/%d, want 7/7", res.PromptTokens, res.TotalTokens)
	}
	if req["model"] != "nomic-embed-text" {
		t.Errorf("request model = %v", req["model"])
	}
	if req["dimensions"] != float64(3) {
		t.Errorf("request dimensions = %v", req["dimensions"])
	}
}

func TestEmbedder_OmitsZeroDimensions(t *testing.T) {
	var req map[string]any
	srv := embeddingServer(t, []embeddingItem{{Embedding: []float32{1}}}, 1, &req)

	if _, err := newTestEmbedder(srv.URL, 0).Embed(context.Background(), "x"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if _, ok := req["dimensions"]; ok {
		t.Errorf("dimensions sent when unset: %v", req["dimensions"])
	}
}

func TestEmbedder_BatchEmbed_OrdersByIndex(t *testing.T) {
	srv := embeddingServer(t, []embeddingItem{
		{Embedding: []float32{3}, Index: 2},
		{Embedding: []float32{1}, Index: 0},
		{Embedding: []float32{2}, Index: 1},
	}, 12, nil)

	res, err := newTestEmbedder(srv.URL, 1).BatchEmbed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	for i, vec := range res.Embeddings {
		if vec[0] != float32(i+1) {
			t.Errorf("embeddings[%d] = %v", i, vec)
		}
	}
	if res.TotalTokens != 12 {
		t.Errorf("TotalTokens = %d, want 12", res.TotalTokens)
	}
}

func TestEmbedder_BatchEmbed_EmptyInputSkipsCall(t *testing.T) {
	res, err := newTestEmbedder("http://127.0.0.1:1", 0).BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("BatchEmbed: %v", err)
	}
	if res.Embeddings != nil {
		t.Errorf("embeddings = %v, want nil", res.Embeddings)
	}
}

func TestEmbedder_BatchEmbed_CountMismatch(t *testing.T) {
	srv := embeddingServer(t, []embeddingItem{{Embedding: []float32{1}}}, 1, nil)

	_, err := newTestEmbedder(srv.URL, 1).BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestEmbedder_ProviderErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		contains string
	}{
		{"openai style", http.StatusTooManyRequests,
			`{"error":{"message":"rate limit exceeded","type":"rate_limit_error"}}`, "rate limit exceeded"},
		{"detail body", http.StatusUnprocessableEntity, `{"detail":"model not loaded"}`, "model not loaded"},
		{"plain body", http.StatusBadGateway, `upstream gone`, "upstream gone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestEmbedder(srv.URL, 0).Embed(context.Background(), "x")
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Fatalf("err = %v, want ErrEmbeddingProviderError", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("err = %q, want it to mention %q", err, tt.contains)
			}
		})
	}
}
